package main

import (
	"os"

	"github.com/edipo-dados/quant-stock-rank-sub001/cmd/rank/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
