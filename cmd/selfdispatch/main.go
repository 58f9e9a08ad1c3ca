package main

import (
	"os"

	"github.com/mmeshcher/selfdispatch-system/cmd/selfdispatch/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
