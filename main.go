package main

import (
	"context"
	"log"

	"gonuclear/adapters/alerce"
	"gonuclear/adapters/postgres"
	"gonuclear/adapters/tns"
	"gonuclear/app"
	"gonuclear/internal/config"
	"gonuclear/internal/errors"
	"gonuclear/internal/migration"
	"gonuclear/ports"
	"gonuclear/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase connects to PostgreSQL and brings the schema up to date.
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(context.Background(), db); err != nil {
		return nil, errors.Wrap(err, "database migration failed")
	}

	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initDatabase(appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// IAU name resolution needs TNS credentials; without them the server
	// still handles ZTF names and raw coordinates.
	var resolver ports.NameResolver
	if appConfig.TNS.APIKey != "" {
		resolver = tns.New(appConfig.TNS)
	} else {
		log.Println("TNS credentials not configured; IAU name resolution disabled")
	}

	source := alerce.New(appConfig.Catalog.AlerceBaseURL)
	verdicts := postgres.NewVerdictRepository(db)

	classifier := app.NewClassifyService(resolver, source, verdicts,
		appConfig.Catalog.ConeRadiusArcsec)

	server := ui.NewServer(classifier, verdicts, source)
	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
