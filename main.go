// @title MindaGrow API
// @version 1.0
// @description REST backend of the MindaGrow gamified learning platform.

// @contact.name MindaGrow Team
// @contact.email dev@mindagrow.id

// @license.name MIT

// @host localhost:5000
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"
	"mindagrow_backend/internal/app"
	"mindagrow_backend/internal/config"
	"mindagrow_backend/pkg/logger"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and seed data, then exit")
	migrate := flag.Bool("migrate", false, "run database migrations on startup even in release mode")
	configDir := flag.String("config", "configs", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *migrateOnly {
		application.Close()
		log.Println("Database migration completed, exiting")
		return
	}

	application.Run()
}
