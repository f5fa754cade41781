// Command cbrng-keygen mints a PRF key or engine base counter with its
// reserved bits pre-cleared and prints it hex- or base64-encoded.
package main

import (
	"flag"
	"fmt"
	"os"

	"pkt.systems/cbrng/keyspace"
	"pkt.systems/cbrng/wordutil"
)

func main() {
	var (
		variant     = flag.String("variant", "threefry4x64", "prf variant: threefry4x64, threefry2x64, threefry4x32, threefry2x32, philox4x64, philox2x64, philox4x32 or philox2x32")
		format      = flag.String("format", "hex", "output format: hex or base64")
		counterBits = flag.Int("counter-bits", 0, "if > 0, mint a base counter reserving this many top bits instead of a key")
	)
	flag.Parse()

	if err := run(*variant, *format, *counterBits); err != nil {
		fmt.Fprintf(os.Stderr, "cbrng-keygen: %v\n", err)
		os.Exit(1)
	}
}

func run(variant, format string, counterBits int) error {
	prfName, width, n, err := parseVariant(variant)
	if err != nil {
		return err
	}
	switch width {
	case 32:
		return mint[uint32](prfName, n, format, counterBits)
	case 64:
		return mint[uint64](prfName, n, format, counterBits)
	default:
		return fmt.Errorf("unsupported width %d", width)
	}
}

// parseVariant splits a variant name of the form "<prf><n>x<width>" (e.g.
// "threefry4x64") into its PRF name, word width, and element count.
func parseVariant(variant string) (prfName string, width, n int, err error) {
	switch variant {
	case "threefry4x64":
		return "threefry", 64, 4, nil
	case "threefry2x64":
		return "threefry", 64, 2, nil
	case "threefry4x32":
		return "threefry", 32, 4, nil
	case "threefry2x32":
		return "threefry", 32, 2, nil
	case "philox4x64":
		return "philox", 64, 4, nil
	case "philox2x64":
		return "philox", 64, 2, nil
	case "philox4x32":
		return "philox", 32, 4, nil
	case "philox2x32":
		return "philox", 32, 2, nil
	default:
		return "", 0, 0, fmt.Errorf("unsupported variant %q", variant)
	}
}

func mint[W wordutil.Word](prfName string, n int, format string, counterBits int) error {
	var words []W
	var err error
	if counterBits > 0 {
		words, err = keyspace.GenerateBaseCounter[W](n, counterBits)
	} else {
		keyLen, kerr := keyLength(prfName, n)
		if kerr != nil {
			return kerr
		}
		words, err = keyspace.Generate[W](keyLen, wordutil.CeilLog2(n*wordutil.BitsOf[W]()))
	}
	if err != nil {
		return err
	}
	out, err := encode(format, words)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

// keyLength returns the key word count for the requested PRF variant: N for
// threefry, N/2 for philox.
func keyLength(prfName string, n int) (int, error) {
	switch prfName {
	case "threefry":
		return n, nil
	case "philox":
		return n / 2, nil
	default:
		return 0, fmt.Errorf("unsupported prf %q", prfName)
	}
}

func encode[W wordutil.Word](format string, words []W) (string, error) {
	switch format {
	case "hex":
		return keyspace.EncodeHex(words), nil
	case "base64":
		return keyspace.EncodeBase64(words), nil
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}
}
