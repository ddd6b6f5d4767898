package main

import (
	"os"

	"github.com/Lumos-Labs-HQ/dbfill/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
