// Migrates the schema, inserts seed rows and creates the first admin account.
//
// Usage: ADMIN_EMAIL=admin@sekolah.id ADMIN_PASSWORD=secret go run scripts/bootstrap.go

package main

import (
	"log"
	"mindagrow_backend/internal/config"
	"mindagrow_backend/internal/repository"
	"mindagrow_backend/internal/service"
	"mindagrow_backend/pkg/database"
	"mindagrow_backend/pkg/logger"
	"os"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database, false)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin account")
		return
	}
	name := os.Getenv("ADMIN_NAME")
	if name == "" {
		name = "Administrator"
	}

	gamification := service.NewGamificationService(repository.NewGamificationRepository(db), nil)
	auth := service.NewAuthService(
		db,
		repository.NewUserRepository(db),
		repository.NewProfileRepository(db),
		repository.NewSessionRepository(db),
		gamification,
		service.NewAuditService(repository.NewAuditRepository(db)),
		cfg,
	)

	user, created, err := auth.EnsureAdmin(name, email, password)
	if err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}
	if created {
		log.Printf("Admin account created (id %d)", user.ID)
	} else {
		log.Printf("Admin account %s already exists", email)
	}
}
