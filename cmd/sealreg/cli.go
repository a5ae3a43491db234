package main

import (
	"fmt"
	"os"
	"path/filepath"
)

func run(args []string) int {
	if len(args) < 2 {
		usage(args)
		return 1
	}

	switch args[1] {
	case "sign":
		return runSign(args[2:])
	case "verify":
		return runVerify(args[2:])
	case "serve":
		return runServe(args[2:])
	}

	usage(args)
	return 1
}

func usage(args []string) {
	name := "sealreg"
	if len(args) > 0 && args[0] != "" {
		name = filepath.Base(args[0])
	}
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "  %s sign --dataset-id <id> --name <name> --media-type <type> --size-bytes <n> --content-hash <hex> --blob-ref <ref> --policy-ref <ref> --timestamp-ms <ms> --submitted-by <principal> (--key-hex <hex>|--key-base64 <b64>) [--out <file>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s verify --in <attestation.json> (--pubkey-hex <hex>|--pubkey-base64 <b64>)\n", name)
	fmt.Fprintf(os.Stderr, "  %s serve\n", name)
}
