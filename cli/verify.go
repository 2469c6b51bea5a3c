package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aamirmursleen/Auradoc-sub003/hashing"
	"github.com/aamirmursleen/Auradoc-sub003/verify"
)

func HashCommand(args []string) {
	hashFlags := flag.NewFlagSet("hash", flag.ContinueOnError)
	hashFlags.SetOutput(stderr)

	mimeType := hashFlags.String("mime", "", "MIME type of the file (detected when empty)")
	asJSON := hashFlags.Bool("json", false, "Print the full fingerprint as JSON")

	hashFlags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s hash [options] <file>\n\n", progName())
		fmt.Fprintln(stderr, "Fingerprint a file for later tamper checks")
		fmt.Fprintln(stderr, "\nOptions:")
		hashFlags.PrintDefaults()
	}

	if err := hashFlags.Parse(args); err != nil {
		osExit(2)
		return
	}
	if hashFlags.NArg() != 1 {
		hashFlags.Usage()
		osExit(1)
		return
	}

	res, err := hashFile(hashFlags.Arg(0), *mimeType)
	if err != nil {
		fail("failed to hash file", err)
		return
	}

	if *asJSON {
		printJSON(res)
		return
	}
	fmt.Fprintf(stdout, "%s  %s\n", res.RawDataHash, hashFlags.Arg(0))
}

func CompareCommand(args []string) {
	compareFlags := flag.NewFlagSet("compare", flag.ContinueOnError)
	compareFlags.SetOutput(stderr)
	compareFlags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s compare <original.json> <uploaded.json>\n\n", progName())
		fmt.Fprintln(stderr, "Compare two fingerprints produced by 'hash -json'. Exits 1 when tampered.")
	}

	if err := compareFlags.Parse(args); err != nil {
		osExit(2)
		return
	}
	if compareFlags.NArg() != 2 {
		compareFlags.Usage()
		osExit(1)
		return
	}

	original, err := readHashResult(compareFlags.Arg(0))
	if err != nil {
		fail("failed to read original fingerprint", err)
		return
	}
	uploaded, err := readHashResult(compareFlags.Arg(1))
	if err != nil {
		fail("failed to read uploaded fingerprint", err)
		return
	}

	report(verify.CompareHashes(original, uploaded))
}

func VerifyCommand(args []string) {
	verifyFlags := flag.NewFlagSet("verify", flag.ContinueOnError)
	verifyFlags.SetOutput(stderr)

	mimeType := verifyFlags.String("mime", "", "MIME type of the file (detected when empty)")

	verifyFlags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s verify [options] <original.json> <file>\n\n", progName())
		fmt.Fprintln(stderr, "Check a file against a stored fingerprint. Exits 1 when tampered.")
		fmt.Fprintln(stderr, "\nOptions:")
		verifyFlags.PrintDefaults()
		fmt.Fprintln(stderr, "\nExamples:")
		fmt.Fprintf(stderr, "  %s hash -json contract.pdf > contract.json\n", progName())
		fmt.Fprintf(stderr, "  %s verify contract.json downloaded.pdf\n", progName())
	}

	if err := verifyFlags.Parse(args); err != nil {
		osExit(2)
		return
	}
	if verifyFlags.NArg() != 2 {
		verifyFlags.Usage()
		osExit(1)
		return
	}

	original, err := readHashResult(verifyFlags.Arg(0))
	if err != nil {
		fail("failed to read original fingerprint", err)
		return
	}
	uploaded, err := hashFile(verifyFlags.Arg(1), *mimeType)
	if err != nil {
		fail("failed to hash file", err)
		return
	}

	report(verify.CompareHashes(original, uploaded))
}

func hashFile(path, mimeType string) (hashing.HashResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return hashing.HashResult{}, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return hashing.HashResult{}, err
	}

	if mimeType == "" {
		head := make([]byte, 512)
		n, _ := f.ReadAt(head, 0)
		mimeType = detectMime(path, head[:n])
	}

	return hashing.ComputeHashReader(f, filepath.Base(path), mimeType, info.ModTime().UnixMilli())
}

func readHashResult(path string) (hashing.HashResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return hashing.HashResult{}, err
	}
	defer func() { _ = f.Close() }()
	return verify.ReadHashResult(f)
}

func report(res verify.ComparisonResult) {
	printJSON(res)
	if res.IsTampered {
		osExit(1)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fail("failed to encode output", err)
	}
}
