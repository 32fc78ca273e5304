package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/kevin07696/payway-gateway/internal/config"
	"github.com/kevin07696/payway-gateway/internal/db/migrations"
)

const migrationsDir = "internal/db/migrations"

var (
	flags = flag.NewFlagSet("migrate", flag.ExitOnError)
	dir   = flags.String("dir", migrationsDir, "directory for new migration files (create only)")
)

func main() {
	flags.Usage = usage
	_ = flags.Parse(os.Args[1:])

	args := flags.Args()
	if len(args) < 1 {
		flags.Usage()
		return
	}
	command := args[0]

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if command == "create" {
		if err := goose.Run(command, nil, *dir, args[1:]...); err != nil {
			logger.Fatal("goose create failed", zap.Error(err))
		}
		return
	}

	dbCfg := config.LoadDatabaseFromEnv()
	db, err := sql.Open("pgx", dbCfg.ConnectionString())
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("failed to connect to database",
			zap.String("host", dbCfg.Host),
			zap.String("database", dbCfg.Database),
			zap.Error(err),
		)
	}

	if err := migrations.Setup(); err != nil {
		logger.Fatal("failed to configure goose", zap.Error(err))
	}

	if err := goose.RunContext(context.Background(), command, db, ".", args[1:]...); err != nil {
		logger.Fatal("goose command failed", zap.String("command", command), zap.Error(err))
	}
}

func usage() {
	fmt.Print(`Usage: migrate COMMAND

Commands:
    up                   Migrate the DB to the most recent version available
    up-by-one            Migrate the DB up by 1
    up-to VERSION        Migrate the DB to a specific VERSION
    down                 Roll back the version by 1
    down-to VERSION      Roll back to a specific VERSION
    redo                 Re-run the latest migration
    reset                Roll back all migrations
    status               Dump the migration status for the current DB
    version              Print the current version of the database
    create NAME [sql|go] Creates new migration file with the current timestamp

Connection settings come from DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_SSL_MODE.
`)
}
