package main

import (
	"log"

	"github.com/joho/godotenv"

	"churnscope/internal/config"
	"churnscope/internal/session"
	"churnscope/ui"
)

// Headless JSON API entrypoint, for clients that bring their own
// presentation layer.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	sess := session.New(cfg.Charts.HistogramBins)
	app := ui.NewApp(sess, cfg.Server.MaxUploadMB)
	log.Fatal(app.Start(":" + cfg.Server.APIPort))
}
