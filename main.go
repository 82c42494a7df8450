package main

import (
	"os"

	"github.com/Membrive92/TrackingFinance/internal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}