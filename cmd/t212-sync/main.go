// Package main is the entry point for the t212-sync CLI.
package main

import (
	"os"

	"github.com/shunichi-ikebuchi/t212-ynab-sync/cmd/t212-sync/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
