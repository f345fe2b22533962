// pairlink-verifier generates a PairLink pairing verifier record.
//
// It draws a random password and salt (or accepts them on the command
// line), stretches them into the pairing scalars, and prints the verifier
// record. The password is printed exactly once so it can be delivered to
// the user; it is not stored anywhere.
//
// Usage:
//
//	pairlink-verifier [options]
//
// Options:
//
//	-password        Pairing password (default: generate)
//	-password-len    Generated password length (default: 8)
//	-salt            Salt (default: generate)
//	-salt-len        Generated salt length (default: 16)
//	-strategy        Verifier strategy: keypair or scalarmult (default: scalarmult)
//	-cpu-cost        scrypt N, power of two (default: 32768)
//	-block-size      scrypt r (default: 8)
//	-parallelism     scrypt p (default: 1)
//	-output-len      stretched output length in bytes, even (default: 64)
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/pion/logging"

	"github.com/pairlink-protocol/pairlink-go/pkg/pairing"
)

func main() {
	var (
		passwordFlag = flag.String("password", "", "pairing password (empty: generate)")
		passwordLen  = flag.Int("password-len", 8, "generated password length")
		saltFlag     = flag.String("salt", "", "salt (empty: generate)")
		saltLen      = flag.Int("salt-len", 16, "generated salt length")
		strategyFlag = flag.String("strategy", "scalarmult", "verifier strategy: keypair or scalarmult")
		cpuCost      = flag.Int("cpu-cost", pairing.DefaultCostParams.CPUCost, "scrypt N (power of two)")
		blockSize    = flag.Int("block-size", pairing.DefaultCostParams.BlockSize, "scrypt r")
		parallelism  = flag.Int("parallelism", pairing.DefaultCostParams.Parallelism, "scrypt p")
		outputLen    = flag.Int("output-len", pairing.DefaultCostParams.OutputLen, "stretched output length (even)")
	)
	flag.Parse()

	log := logging.NewDefaultLoggerFactory().NewLogger("pairlink-verifier")

	var strategy pairing.Strategy
	switch *strategyFlag {
	case "keypair":
		strategy = pairing.StrategyKeyPair
	case "scalarmult":
		strategy = pairing.StrategyScalarMult
	default:
		fmt.Fprintf(os.Stderr, "unknown strategy %q\n", *strategyFlag)
		os.Exit(2)
	}

	password := []byte(*passwordFlag)
	if len(password) == 0 {
		var err error
		password, err = pairing.GeneratePassword(*passwordLen)
		if err != nil {
			log.Errorf("generate password: %v", err)
			os.Exit(1)
		}
	}
	defer pairing.Wipe(password)

	salt := []byte(*saltFlag)
	if len(salt) == 0 {
		var err error
		salt, err = pairing.GenerateSalt(*saltLen)
		if err != nil {
			log.Errorf("generate salt: %v", err)
			os.Exit(1)
		}
	}

	params := pairing.CostParams{
		CPUCost:     *cpuCost,
		BlockSize:   *blockSize,
		Parallelism: *parallelism,
		OutputLen:   *outputLen,
	}

	log.Debugf("stretching password (N=%d r=%d p=%d len=%d)",
		params.CPUCost, params.BlockSize, params.Parallelism, params.OutputLen)

	w0, w1, err := pairing.DeriveScalars(password, salt, params)
	if err != nil {
		log.Errorf("derive scalars: %v", err)
		os.Exit(1)
	}
	defer pairing.WipeScalar(w0)
	defer pairing.WipeScalar(w1)

	verifier, err := pairing.BuildVerifier(w0, w1, salt, strategy)
	if err != nil {
		log.Errorf("build verifier: %v", err)
		os.Exit(1)
	}

	record, err := verifier.MarshalRecord()
	if err != nil {
		log.Errorf("encode record: %v", err)
		os.Exit(1)
	}

	// The password goes to the user; w0 stays with the record holder.
	fmt.Printf("password: %s\n", password)
	fmt.Printf("salt:     %s\n", salt)
	fmt.Printf("strategy: %s\n", strategy)
	fmt.Printf("w0:       %s\n", verifier.W0)
	fmt.Printf("L:        %s\n", verifier.L)
	fmt.Printf("record:   %s\n", hex.EncodeToString(record))
}
