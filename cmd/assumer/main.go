package main

import (
	"os"

	"github.com/majorcontext/assumer/cmd/assumer/cli"
)

func main() {
	os.Exit(cli.Execute())
}
