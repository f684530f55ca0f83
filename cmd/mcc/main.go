// Command mcc is the compiler driver's thin entrypoint: parse
// argv into a Config and hand it to internal/driver, matching
// std/compiler/main.go's shape of a tiny main wrapping the real work.
package main

import (
	"fmt"
	"os"

	"github.com/kakitgogogo/mcc/internal/config"
	"github.com/kakitgogogo/mcc/internal/driver"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "mcc: %v\n", err)
		fmt.Fprintf(os.Stderr, "usage: %s [-Idir] [-Dname[=def]] [-Uname] [-o file] [-S|-c|-E] file.c ...\n", os.Args[0])
		os.Exit(1)
	}
	os.Exit(driver.Run(cfg))
}
