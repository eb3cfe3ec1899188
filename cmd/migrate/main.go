package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/dropDatabas3/accountsd/internal/config"
	migrations "github.com/dropDatabas3/accountsd/migrations/postgres"
)

func main() {
	var (
		configPath = flag.String("config", os.Getenv("CONFIG_PATH"), "Ruta al YAML de configuración (opcional)")
		dsn        = flag.String("dsn", "", "DSN de Postgres; por defecto profiles.postgres.dsn")
	)
	flag.Parse()
	_ = godotenv.Load()

	// Posicionales: [up|down] [steps]
	action := "up"
	steps := 0
	args := flag.Args()
	if len(args) >= 1 && args[0] != "" {
		action = strings.ToLower(args[0])
	}
	if len(args) >= 2 {
		if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
			steps = n
		}
	}

	if *dsn == "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("config load: %v", err)
		}
		*dsn = cfg.Profiles.Postgres.DSN
	}
	if *dsn == "" {
		log.Fatal("missing DSN (--dsn, PROFILES_PG_DSN or DATABASE_URL)")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, *dsn)
	if err != nil {
		log.Fatalf("pgxpool: %v", err)
	}
	defer pool.Close()

	var files []string
	switch action {
	case "up":
		files, err = listSQL(migrations.FS, "_up.sql")
	case "down":
		files, err = listSQL(migrations.FS, "_down.sql")
		reverseInPlace(files)
	default:
		log.Fatalf("unknown action %q. Use: up | down [steps]", action)
	}
	if err != nil {
		log.Fatalf("list %s: %v", action, err)
	}
	if steps > 0 && steps < len(files) {
		files = files[:steps]
	}
	if len(files) == 0 {
		log.Printf("No %s migrations found. Nothing to do.", action)
		return
	}

	log.Printf("Applying %d %s migration(s)...", len(files), action)
	for _, f := range files {
		if err := execSQLFile(ctx, pool, migrations.FS, f); err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}
	}
	log.Printf("%s migrations completed.", action)
}

// listSQL retorna los archivos con el sufijo dado en orden ascendente.
func listSQL(fsys fs.FS, suffix string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(strings.ToLower(e.Name()), suffix) {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

func reverseInPlace(ss []string) {
	for i, j := 0, len(ss)-1; i < j; i, j = i+1, j-1 {
		ss[i], ss[j] = ss[j], ss[i]
	}
}

func execSQLFile(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, name string) error {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	start := time.Now()
	if _, err := pool.Exec(ctx, string(b)); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	log.Printf("OK %s (%s)", name, time.Since(start).Truncate(time.Millisecond))
	return nil
}
