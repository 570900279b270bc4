package main

import (
	"os"

	"github.com/p-salazarhamm/SCGid/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
