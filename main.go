package main

import (
	"log"
	"os"

	"github.com/parishlib/libris/cmd"
	"github.com/parishlib/libris/internal/conf"
	"github.com/parishlib/libris/internal/logging"
)

func main() {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		log.Fatalf("Error loading settings: %v", err)
	}

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
