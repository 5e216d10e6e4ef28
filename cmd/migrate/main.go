// Command migrate applies and scaffolds the postgres schema migrations.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/qms/backend/internal/infrastructure/config"
	"github.com/qms/backend/internal/infrastructure/logger"
	"github.com/qms/backend/internal/infrastructure/migration"
	"github.com/qms/backend/migrations"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

func main() {
	var dir, logLevel string
	flag.StringVar(&dir, "dir", "", "read migrations from this directory instead of the embedded set")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	if err := run(args, dir, log); err != nil {
		log.Error("Migration command failed", zap.String("command", args[0]), zap.Error(err))
		_ = logger.Sync(log)
		os.Exit(1)
	}
}

func run(args []string, dir string, log *zap.Logger) error {
	command := args[0]

	switch command {
	case "create":
		if len(args) < 2 {
			return fmt.Errorf("usage: migrate create <name> [description]")
		}
		target := dir
		if target == "" {
			target = defaultMigrationsDir
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		mf, err := migration.CreateMigration(target, args[1], description)
		if err != nil {
			return err
		}
		log.Info("Migration created",
			zap.Uint("version", mf.Version),
			zap.String("up", mf.UpPath),
			zap.String("down", mf.DownPath),
		)
		return nil

	case "list":
		var source fs.FS = migrations.FS
		if dir != "" {
			source = os.DirFS(dir)
		}
		entries, err := migration.ListMigrations(source)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("  %06d  %s\n", e.Version, e.Name)
		}
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("migrations target postgres; %s schemas are created by auto-migrate", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	var opts []migration.Option
	if dir != "" {
		opts = append(opts, migration.FromDir(dir))
	}
	m, err := migration.New(db, log, opts...)
	if err != nil {
		return err
	}
	defer m.Close()

	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "step":
		n, err := intArg(args, "step <n>")
		if err != nil {
			return err
		}
		return m.Steps(n)
	case "goto":
		n, err := intArg(args, "goto <version>")
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("version must not be negative")
		}
		return m.GoTo(uint(n))
	case "force":
		n, err := intArg(args, "force <version>")
		if err != nil {
			return err
		}
		return m.Force(n)
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func intArg(args []string, usage string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("usage: migrate %s", usage)
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", args[1])
	}
	return n, nil
}

func printUsage() {
	fmt.Fprint(os.Stderr, `QMS schema migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                       apply all pending migrations
  down                     roll back all migrations
  step <n>                 apply n migrations, negative n rolls back
  goto <version>           migrate to a specific version
  version                  print the current version
  force <version>          mark a version as applied (dirty state recovery)
  create <name> [desc]     scaffold the next migration pair
  list                     list known migrations

Flags:
  -dir <path>              use migrations from a directory
  -log-level <level>       debug, info, warn or error

Connection settings come from the QMS_DATABASE_* environment variables
or the config file.
`)
}
