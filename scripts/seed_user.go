package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/superleader/internal/config"
	"github.com/khoahotran/superleader/internal/domain/network"
	"github.com/khoahotran/superleader/pkg/auth"
)

var reservedGroupNames = map[network.Tier]string{
	network.TierInner5:       "Inner 5",
	network.TierCentral50:    "Central 50",
	network.TierStrategic100: "Strategic 100",
}

func main() {
	fmt.Println("seeding development user...")

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	email := os.Getenv("SEED_EMAIL")
	if email == "" {
		email = "dev@superleader.local"
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatalf("cannot connect DB: %v", err)
	}
	defer pool.Close()

	var userID uuid.UUID
	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO users (id, email)
			VALUES ($1, $2)
			ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
			RETURNING id
		`, uuid.New(), email).Scan(&userID)
		if err != nil {
			return fmt.Errorf("upsert user: %w", err)
		}

		for _, tier := range network.ReservedTiers {
			_, err := tx.Exec(ctx, `
				INSERT INTO groups (user_id, name, slug)
				VALUES ($1, $2, $3)
				ON CONFLICT (user_id, slug) DO NOTHING
			`, userID, reservedGroupNames[tier], string(tier))
			if err != nil {
				return fmt.Errorf("create group %s: %w", tier, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("cannot seed user: %v", err)
	}

	token, err := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan).GenerateToken(userID)
	if err != nil {
		log.Fatalf("cannot issue token: %v", err)
	}

	fmt.Printf("seeded user '%s' (%s) with reserved groups\n", email, userID)
	fmt.Printf("Authorization: Bearer %s\n", token)
}
