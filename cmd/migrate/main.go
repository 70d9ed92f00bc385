package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/citysim/histmap/internal/adapters/postgres"
	"github.com/citysim/histmap/internal/pkg/config"
	"github.com/citysim/histmap/internal/pkg/logging"
)

const usage = "usage: migrate <up|down> [migrations_dir]"

// Tables owned by the schema, children first.
var schemaTables = []string{"geoobjectsimulation", "geoobject", "simulation", "mode", "city"}

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}
	dir := "migrations"
	if len(os.Args) > 2 {
		dir = os.Args[2]
	}

	cfg, err := config.Load("citysim-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Telemetry.ServiceName)

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN(), 1)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		err = applyMigrations(ctx, db, dir)
	case "down":
		err = dropSchema(ctx, db)
	default:
		log.Fatal(usage)
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

// migrationFiles lists the .sql files of dir in lexical order.
func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no migrations in %s", dir)
	}
	return files, nil
}

func applyMigrations(ctx context.Context, db *postgres.DB, dir string) error {
	files, err := migrationFiles(dir)
	if err != nil {
		return err
	}
	for _, f := range files {
		sql, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		if _, err := db.Pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
		slog.Info("migration applied", "file", filepath.Base(f))
	}
	slog.Info("schema up to date", "migrations", len(files))
	return nil
}

func dropSchema(ctx context.Context, db *postgres.DB) error {
	stmt := "DROP TABLE IF EXISTS " + strings.Join(schemaTables, ", ")
	if _, err := db.Pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	slog.Info("schema dropped", "tables", schemaTables)
	return nil
}
