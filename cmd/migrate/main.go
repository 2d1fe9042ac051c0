// Command migrate applies or rolls back the SQL migrations without starting
// the API server.
package main

import (
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"paisatrack/internal/database"
	"paisatrack/internal/logger"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	if err := run(direction); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func run(direction string) error {
	cfg, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	mig, err := migrate.New("file://migrations", cfg.URL())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		if srcErr, dbErr := mig.Close(); srcErr != nil || dbErr != nil {
			logger.Get().Warnf("migrate close errors: %v %v", srcErr, dbErr)
		}
	}()

	switch direction {
	case "up":
		err = mig.Up()
	case "down":
		err = mig.Steps(-1)
	default:
		return fmt.Errorf("unknown direction %q (want up or down)", direction)
	}

	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration %s failed: %w", direction, err)
	}

	logger.Get().Infof("Migration %s completed", direction)
	return nil
}
