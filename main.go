package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"flashplan/config"
	"flashplan/database"
	"flashplan/datastore"
	"flashplan/seed"
	"flashplan/server"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/umakantv/go-utils/db/migrations"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

func main() {
	commandFlag := flag.String("command", "start", "Command to run: start | seed | create-migration")
	envFlag := flag.String("env", ".env", "Optional .env file loaded before reading the environment")
	nameFlag := flag.String("name", "", "Migration name (alphanum+underscore only)")
	dirFlag := flag.String("dir", "./database/migrations", "Target directory for the new .sql file")
	flag.Parse()

	if *commandFlag == "" {
		fmt.Println("Usage: go run main.go --command <command-name> [... other options]")
		os.Exit(1)
	}

	switch *commandFlag {
	case "start":
		server.StartServer(*envFlag)
	case "seed":
		runSeed(*envFlag)
	case "create-migration":
		migrations.CreateMigration(nameFlag, dirFlag)
	default:
		fmt.Printf("Unknown command %q\n", *commandFlag)
		os.Exit(1)
	}
}

func runSeed(envFile string) {
	server.InitLogger()

	cfg, err := config.Load(envFile)
	if err != nil {
		logger.Error("Invalid configuration", zap.Error(err))
		os.Exit(1)
	}

	dbConn := database.InitializeDatabase(cfg)
	defer dbConn.Close()

	n, err := seed.Plans(context.Background(), datastore.NewPlanRepository(dbConn))
	if err != nil {
		logger.Error("Seeding failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Seed complete", zap.Int("plans", n))
}
