package main

import (
	"os"

	"github.com/aamirmursleen/Auradoc-sub003/cli"
)

func main() {
	cli.Main(os.Args)
}
