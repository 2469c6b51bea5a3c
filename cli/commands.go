package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/aamirmursleen/Auradoc-sub003/config"
	"github.com/aamirmursleen/Auradoc-sub003/hashing"
	"github.com/aamirmursleen/Auradoc-sub003/internal/logger"
)

var (
	// Version is set at build time.
	Version = "dev"

	osExit           = os.Exit
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func Usage() {
	fmt.Fprintf(stderr, "Usage: %s [-config file] <command> [options] <args>\n\n", progName())
	fmt.Fprintln(stderr, "Commands:")
	fmt.Fprintln(stderr, "  composite  Draw signer field values onto a PDF")
	fmt.Fprintln(stderr, "  hash       Fingerprint a file")
	fmt.Fprintln(stderr, "  compare    Compare two stored fingerprints")
	fmt.Fprintln(stderr, "  verify     Check a file against a stored fingerprint")
	fmt.Fprintln(stderr, "  inspect    List the pages, fonts and images of a PDF")
	fmt.Fprintln(stderr, "  version    Print the version")
	fmt.Fprintln(stderr, "")
	fmt.Fprintf(stderr, "Use '%s <command> -h' for command-specific help\n", progName())
	osExit(1)
}

// Main parses global flags from args (including the program name) and runs
// the selected command.
func Main(args []string) {
	global := flag.NewFlagSet("auradoc", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "TOML or YAML config file (default "+config.DefaultLocation+" when present)")
	global.Usage = Usage

	if err := global.Parse(args[1:]); err != nil {
		osExit(2)
		return
	}
	if global.NArg() < 1 {
		Usage()
		return
	}

	rest := global.Args()[1:]
	switch cmd := global.Arg(0); cmd {
	case "composite":
		runComposite(*configPath, rest)
	case "hash":
		HashCommand(rest)
	case "compare":
		CompareCommand(rest)
	case "verify":
		VerifyCommand(rest)
	case "inspect":
		InspectCommand(rest)
	case "version":
		fmt.Fprintln(stdout, Version)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", cmd)
		Usage()
	}
}

func runComposite(configPath string, args []string) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fail("failed to load config", err)
		return
	}
	log, closer, err := logger.New(cfg.Logging)
	if err != nil {
		fail("failed to set up logging", err)
		return
	}
	defer func() { _ = closer.Close() }()

	CompositeCommand(cfg, log, args)
}

// loadConfig reads path, or the default location when path is empty and
// that file exists, or falls back to built-in defaults.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		if _, err := os.Stat(config.DefaultLocation); errors.Is(err, fs.ErrNotExist) {
			return config.Defaults(), nil
		}
		path = config.DefaultLocation
	}
	return config.Load(path)
}

// detectMime guesses a media type from the file name, then from content.
func detectMime(name string, head []byte) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".pdf" {
		return hashing.PDFMimeType
	}
	if t := mime.TypeByExtension(ext); t != "" {
		mt, _, err := mime.ParseMediaType(t)
		if err == nil {
			return mt
		}
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(head))
	return mt
}

func progName() string {
	if len(os.Args) > 0 {
		return filepath.Base(os.Args[0])
	}
	return "auradoc"
}

func fail(msg string, err error) {
	fmt.Fprintf(stderr, "%s: %v\n", msg, err)
	osExit(1)
}
