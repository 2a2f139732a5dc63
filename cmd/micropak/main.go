// Command micropak packs a directory or S3 prefix into a pak archive.
package main

import (
	"fmt"
	"os"

	"github.com/eunmann/micropak/internal/cli"
)

func main() {
	if err := cli.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
