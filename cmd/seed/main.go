package main

import (
	"context"
	"os"

	"userauth/internal/auth"
	"userauth/internal/config"
	"userauth/internal/db"
	"userauth/internal/logging"
	"userauth/internal/model"
	"userauth/internal/repository"
	"userauth/internal/service"
)

// Seed creates the admin named by ADMIN_EMAIL, or promotes that user if it
// already exists. Registration never grants admin on its own, so the first
// admin comes from here.
func main() {
	cfg := config.Load()
	log := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	if cfg.AdminEmail == "" {
		log.Error(ctx, "ADMIN_EMAIL is required")
		os.Exit(1)
	}
	if cfg.AdminPassword != "" && !auth.IsStrongPassword(cfg.AdminPassword) {
		log.Error(ctx, "ADMIN_PASSWORD is not strong enough")
		os.Exit(1)
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Error(ctx, "connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gormDB, false); err != nil {
		log.Error(ctx, "run migrations", "error", err)
		os.Exit(1)
	}

	users := service.NewUserService(repository.NewUserRepository(gormDB), auth.NewPasswordHasher(cfg.BcryptCost))
	admin, created, err := users.EnsureAdmin(ctx, service.CreateUserInput{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Phone:    cfg.AdminPhone,
		Address:  model.Address{Country: "-", City: "-", Street: "-", Building: 1},
	})
	if err != nil {
		log.Error(ctx, "seed admin", "error", err)
		os.Exit(1)
	}

	if created {
		log.Info(ctx, "admin created", "user_id", admin.ID, "email", admin.Email)
		return
	}
	log.Info(ctx, "admin ensured", "user_id", admin.ID, "email", admin.Email)
}
