package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"quotewall/models"
	"quotewall/web"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

func main() {
	logger.SetLogLevel("info")

	dbPath := os.Getenv("QUOTEWALL_DB_PATH")
	if dbPath == "" {
		dbPath = "./data/quotewall.ddb"
	}
	if err := ensureDataDir(dbPath); err != nil {
		log.Fatal("Failed to create data directory:", err)
	}
	if err := models.InitDB(dbPath); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer models.CloseDB()

	store, err := models.InitStore()
	if err != nil {
		log.Fatal("Failed to initialize quote store:", err)
	}

	cfg, err := models.LoadSyncConfig()
	if err != nil {
		log.Fatal("Invalid sync configuration:", err)
	}

	// The sync client is created even when disabled so the UI toggle can
	// switch it on without a restart.
	syncClient, err := models.NewSyncClient(cfg, store, models.GetConflicts())
	if err != nil {
		log.Fatal("Failed to create sync client:", err)
	}
	syncClient.Start(context.Background())
	defer syncClient.Stop()

	srv := web.NewServer()
	logger.Info("Starting QuoteWall on port 8000")
	log.Fatal(web.Run(srv))
}

// ensureDataDir creates the directory holding the database file so a
// fresh checkout can start without manual setup.
func ensureDataDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return serr.Wrap(err, "failed to create data directory", "dir", dir)
	}
	return nil
}
