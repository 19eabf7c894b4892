package main

import (
	"os"

	"github.com/slatehq/slate/internal/cli/commands"
)

func main() {
	os.Exit(commands.Execute())
}
