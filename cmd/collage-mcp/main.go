package main

import (
	"os"

	"github.com/ironsheep/collage-mcp/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
