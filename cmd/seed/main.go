package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/DurgaPrasad-54/helpline104-feedback/internal/config"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/database"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/migration"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/repository"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/seeder"
	"github.com/DurgaPrasad-54/helpline104-feedback/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Command line flags
var (
	seedFile = flag.String("file", "seeds/categories.yaml", "Category seed file (YAML)")
	dryRun   = flag.Bool("dry-run", false, "Parse and print the categories without storing them")
	verbose  = flag.Bool("verbose", false, "Enable verbose logging")
	migrate  = flag.Bool("migrate", true, "Run migrations before seeding")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	logger.WithField("file", *seedFile).Info("Starting feedback category seeder...")

	file, err := seeder.LoadFile(*seedFile)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load seed file")
	}

	categories, err := seeder.NewCategoryProcessor().Process(file, logger)
	if err != nil {
		logger.WithError(err).Fatal("Invalid seed file")
	}

	if *dryRun {
		for _, c := range categories {
			logger.WithFields(logrus.Fields{
				"service_line": c.ServiceLine,
				"slug":         c.Slug,
				"names":        c.Names,
				"active":       c.IsActive,
				"sort_order":   c.SortOrder,
			}).Info("Would store category")
		}
		logger.WithField("categories", len(categories)).Info("Dry run completed")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.ValidateServer(); err != nil {
		logger.WithError(err).Fatal("Database configuration validation failed")
	}

	dbManager, err := database.NewManager(&database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    cfg.LogLevel,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	if *migrate {
		if err := migration.NewRunner(dbManager, logger).RunMigrations(cfg.Migrations.Dir); err != nil {
			logger.WithError(err).Fatal("Migrations failed")
		}
	}

	repoManager := repository.NewRepositoryManager(dbManager.DB)
	s := seeder.NewSeeder(repoManager.Category, database.NewCache(dbManager.Redis, logger), logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	stored, err := s.Seed(ctx, categories)
	if err != nil {
		logger.WithError(err).WithField("stored", stored).Fatal("Category seeding failed")
	}

	logger.WithField("categories", stored).Info("Category seeding completed successfully!")
}
