package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/angelmondragon/storefront/pkg/db/models"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/types"
)

//go:embed products.json
var productsJSON []byte

type seedProduct struct {
	Title       string       `json:"title"`
	PriceCents  int          `json:"priceCents"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Image       string       `json:"image"`
	Tags        []string     `json:"tags"`
	Rating      types.Rating `json:"rating"`
}

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	truncate := flag.Bool("truncate", false, "delete existing products before seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	var seed []seedProduct
	if err := json.Unmarshal(productsJSON, &seed); err != nil {
		logg.Error(ctx, "failed to parse bundled catalog", err)
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	inserted := 0
	err = dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if *truncate {
			if err := tx.Where("1 = 1").Delete(&models.Product{}).Error; err != nil {
				return fmt.Errorf("truncating products: %w", err)
			}
		}
		for _, p := range seed {
			// Re-running the seed must not duplicate the catalog.
			var existing int64
			if err := tx.Model(&models.Product{}).Where("title = ?", p.Title).Count(&existing).Error; err != nil {
				return fmt.Errorf("checking %q: %w", p.Title, err)
			}
			if existing > 0 {
				continue
			}

			record := models.Product{
				Title:       p.Title,
				PriceCents:  p.PriceCents,
				Description: p.Description,
				Category:    p.Category,
				Image:       p.Image,
				Tags:        p.Tags,
				Rating:      p.Rating,
			}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("seeding %q: %w", p.Title, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		logg.Error(ctx, "seed failed", err)
		os.Exit(1)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"inserted": inserted,
		"total":    len(seed),
	}), "catalog seeded")
}
