package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/aamirmursleen/Auradoc-sub003/compose"
	inspect "github.com/aamirmursleen/Auradoc-sub003/internal/pdf"
)

func InspectCommand(args []string) {
	inspectFlags := flag.NewFlagSet("inspect", flag.ContinueOnError)
	inspectFlags.SetOutput(stderr)

	asJSON := inspectFlags.Bool("json", false, "Print the page summary as JSON")

	inspectFlags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s inspect [options] <file.pdf>\n\n", progName())
		fmt.Fprintln(stderr, "List the pages of a PDF with their boxes, fonts and images")
		fmt.Fprintln(stderr, "\nOptions:")
		inspectFlags.PrintDefaults()
	}

	if err := inspectFlags.Parse(args); err != nil {
		osExit(2)
		return
	}
	if inspectFlags.NArg() != 1 {
		inspectFlags.Usage()
		osExit(1)
		return
	}

	data, err := os.ReadFile(inspectFlags.Arg(0))
	if err != nil {
		fail("failed to read input", err)
		return
	}
	src, err := compose.Load(data, compose.LoadOptions{Repair: true})
	if err != nil {
		fail("failed to load document", err)
		return
	}
	pages, err := inspect.Inspect(src.Reader)
	if err != nil {
		fail("failed to inspect document", err)
		return
	}

	if *asJSON {
		printJSON(pages)
		return
	}
	for _, p := range pages {
		fmt.Fprintf(stdout, "page %d  [%g %g %g %g]  %d stream(s)\n",
			p.Number, p.MediaBox[0], p.MediaBox[1], p.MediaBox[2], p.MediaBox[3], p.Streams)
		if len(p.Fonts) > 0 {
			fmt.Fprintf(stdout, "  fonts:    %s\n", resourceList(p.Fonts))
		}
		if len(p.XObjects) > 0 {
			fmt.Fprintf(stdout, "  xobjects: %s\n", resourceList(p.XObjects))
		}
	}
}

func resourceList(rs []inspect.Resource) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		kind := r.BaseFont
		if kind == "" {
			kind = r.Subtype
		}
		parts[i] = fmt.Sprintf("/%s=%s(%d)", r.Name, kind, r.ID)
	}
	return strings.Join(parts, " ")
}
