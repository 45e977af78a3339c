package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/dpplink/dpplink/config"
	"github.com/dpplink/dpplink/internal/delivery/cli"
	"github.com/dpplink/dpplink/internal/infrastructure/excel"
	"github.com/dpplink/dpplink/internal/usecase"
)

const version = "1.0.0"

func main() {
	// Local overrides live in .env; a missing file is fine
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	aliases, err := config.LoadAliases(cfg.Centric.AliasesFile)
	if err != nil {
		log.Fatalf("Failed to load aliases from %s: %v", cfg.Centric.AliasesFile, err)
	}

	// Initialize infrastructure dependencies
	reader := excel.NewReader()
	writer := excel.NewWriter()

	// Initialize usecase layer
	join := usecase.NewJoinService()
	batch := usecase.NewBatchService(reader, writer, join)
	changelist := usecase.NewChangelistService(reader)

	// Wire the command tree
	handler := cli.NewHandler(cfg, aliases, batch, changelist, writer)
	root := cli.NewRootCommand(handler, version)

	if err := root.Execute(); err != nil {
		log.Printf("ERROR %v", err)
		os.Exit(1)
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime)
	log.SetOutput(os.Stderr)
}
