package cli

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	fidelity "github.com/aamirmursleen/Auradoc-sub003"
	"github.com/aamirmursleen/Auradoc-sub003/config"
	"github.com/aamirmursleen/Auradoc-sub003/fields"
)

func CompositeCommand(cfg config.Config, log *slog.Logger, args []string) {
	compositeFlags := flag.NewFlagSet("composite", flag.ContinueOnError)
	compositeFlags.SetOutput(stderr)

	fieldsPath := compositeFlags.String("fields", "", "JSON file with the field records")
	signers := compositeFlags.String("signers", "", "Comma separated ids of signers that have completed (default all)")
	signatureImage := compositeFlags.String("signature-image", "", "Image or data URL file used by signature fields without a value")

	compositeFlags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s composite -fields fields.json [options] <input.pdf> <output.pdf>\n\n", progName())
		fmt.Fprintln(stderr, "Draw signer field values onto a PDF as an incremental update")
		fmt.Fprintln(stderr, "\nOptions:")
		compositeFlags.PrintDefaults()
		fmt.Fprintln(stderr, "\nExamples:")
		fmt.Fprintf(stderr, "  %s composite -fields fields.json input.pdf signed.pdf\n", progName())
		fmt.Fprintf(stderr, "  %s composite -fields fields.json -signers alice,bob -signature-image sig.png input.pdf signed.pdf\n", progName())
	}

	if err := compositeFlags.Parse(args); err != nil {
		osExit(2)
		return
	}
	if compositeFlags.NArg() != 2 || *fieldsPath == "" {
		compositeFlags.Usage()
		osExit(1)
		return
	}
	input, output := compositeFlags.Arg(0), compositeFlags.Arg(1)

	src, err := os.ReadFile(input)
	if err != nil {
		fail("failed to read input", err)
		return
	}

	fs, err := readFields(*fieldsPath)
	var derr *fields.DecodeError
	switch {
	case errors.As(err, &derr):
		for _, rerr := range derr.Records {
			log.Warn("ignoring field record", "index", rerr.Index, "field", rerr.ID, "err", rerr.Err)
		}
	case err != nil:
		fail("failed to read fields", err)
		return
	}

	opts := []fidelity.Option{
		fidelity.WithLogger(log),
		fidelity.WithConfig(cfg.Engine),
	}
	if *signers != "" {
		opts = append(opts, fidelity.WithCompletedSigners(splitList(*signers)...))
	}
	if *signatureImage != "" {
		url, err := readDataURL(*signatureImage)
		if err != nil {
			fail("failed to read signature image", err)
			return
		}
		opts = append(opts, fidelity.WithSignatureImage(url))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out, report, err := fidelity.Composite(ctx, src, fs, opts...)
	if err != nil {
		fail("failed to composite", err)
		return
	}
	if err := os.WriteFile(output, out, 0o644); err != nil {
		fail("failed to write output", err)
		return
	}

	fmt.Fprintf(stdout, "%s: %d rendered, %d placeholder, %d skipped, %d failed\n", output,
		report.Count(fidelity.StatusRendered),
		report.Count(fidelity.StatusPlaceholder),
		report.Count(fidelity.StatusSkipped),
		report.Count(fidelity.StatusFailed),
	)
}

func readFields(path string) ([]fields.Field, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return fields.Decode(f)
}

// readDataURL returns the file's content as a data URL. Files that already
// hold a data URL are used as is.
func readDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if text := strings.TrimSpace(string(data)); fields.IsDataURL(text) {
		return text, nil
	}
	mt := detectMime(path, data)
	if !strings.HasPrefix(mt, "image/") {
		return "", fmt.Errorf("%s is not an image (%s)", path, mt)
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
