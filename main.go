package main

import (
	"log"

	"github.com/joho/godotenv"

	"churnscope/adapters/ingest"
	"churnscope/internal/config"
	"churnscope/internal/session"
	"churnscope/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	sess := session.New(cfg.Charts.HistogramBins)

	// Optionally preload a dataset so the dashboard is live without an
	// interactive upload.
	if cfg.Data.File != "" {
		if err := preloadDataset(sess, cfg.Data.File); err != nil {
			log.Fatalf("Failed to preload dataset from %s: %v", cfg.Data.File, err)
		}
		log.Printf("Preloaded dataset from %s", cfg.Data.File)
	}

	server := ui.NewServer(sess, cfg.Server.MaxUploadMB)
	log.Fatal(server.Start(":" + cfg.Server.Port))
}

func preloadDataset(sess *session.Session, path string) error {
	table, err := ingest.NewDataReader(path).ReadFile(path)
	if err != nil {
		return err
	}
	d, err := ingest.NewSchemaValidator().Validate(table, path)
	if err != nil {
		return err
	}
	sess.Load(d)
	return nil
}
