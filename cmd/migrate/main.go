package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/yungbote/projectdesk-backend/internal/data/db"
	"github.com/yungbote/projectdesk-backend/internal/platform/envutil"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

func main() {
	var seed bool
	var list bool
	flag.BoolVar(&seed, "seed", false, "also load sample data into empty tables")
	flag.BoolVar(&list, "list", false, "print migration steps and exit")
	flag.Parse()

	if list {
		for _, s := range db.Steps() {
			fmt.Println(s.ID)
		}
		return
	}

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	theDB, err := db.Open(db.ConfigFromEnv(log), log)
	if err != nil {
		log.Error("Database connection failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close(theDB) }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	opts := db.MigrateOptions{SeedSampleData: seed || envutil.Bool("SEED_SAMPLE_DATA", false, log)}
	if err := db.Migrate(ctx, theDB, log, opts); err != nil {
		log.Error("Migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("Migrations complete", "seed", opts.SeedSampleData)
}
