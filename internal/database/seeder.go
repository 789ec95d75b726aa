package database

import (
	"context"
	"strings"
	"time"

	"lab-inventory-api-server/config"
	"lab-inventory-api-server/internal/auth"
	"lab-inventory-api-server/internal/models"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SeedAdmin makes sure at least one admin account exists so the console is
// reachable on a fresh database.
func SeedAdmin(db *mongo.Database, cfg config.AdminConfig) error {
	userCollection := db.Collection("users")

	count, err := userCollection.CountDocuments(context.Background(), bson.M{"role": models.RoleAdmin})
	if err != nil {
		return err
	}
	if count > 0 {
		log.Debug().Msg("admin account already exists, seeding skipped")
		return nil
	}

	log.Info().Str("email", cfg.Email).Msg("no admin account found, seeding")
	hashedPassword, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:  strings.Split(cfg.Email, "@")[0],
		Email:     cfg.Email,
		Password:  hashedPassword,
		Role:      models.RoleAdmin,
		Name:      "Lab Admin",
		CreatedAt: time.Now(),
	}
	if _, err := userCollection.InsertOne(context.Background(), admin); err != nil {
		return err
	}
	log.Info().Msg("admin account seeded")
	return nil
}
