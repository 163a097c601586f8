//cmd/seeder/main.go
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/unclebandit/mailing-backend/internal/config"
	"github.com/unclebandit/mailing-backend/internal/db"
)

func main() {
	dir := flag.String("dir", "seed", "directory with the SQL files")
	schemaOnly := flag.Bool("schema-only", false, "create tables without sample data")
	manager := flag.String("manager", "", "create or promote a manager with this email")
	flag.Parse()

	cfg, err := config.LoadDataBase()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer conn.Close()

	files := []string{"schema.sql"}
	if !*schemaOnly {
		files = append(files, "users.sql", "recipients.sql", "campaigns.sql")
	}

	for _, name := range files {
		path := filepath.Join(*dir, name)
		content, err := os.ReadFile(path)
		if err != nil {
			log.Fatal().Err(err).Str("file", path).Msg("failed to read seed file")
		}
		if _, err := conn.ExecContext(ctx, string(content)); err != nil {
			log.Fatal().Err(err).Str("file", path).Msg("failed to execute seed file")
		}
		fmt.Printf("Seeded: %s\n", path)
	}

	if *manager != "" {
		if err := upsertManager(ctx, conn, *manager); err != nil {
			log.Fatal().Err(err).Msg("failed to create manager")
		}
		fmt.Printf("Manager ready: %s\n", *manager)
	}

	fmt.Println("Database seeding completed successfully!")
}

func upsertManager(ctx context.Context, conn *sql.DB, email string) error {
	_, err := conn.ExecContext(ctx, `
        INSERT INTO users (email, is_active, is_manager)
        VALUES ($1, TRUE, TRUE)
        ON CONFLICT (email) DO UPDATE SET is_active = TRUE, is_manager = TRUE
    `, email)
	return err
}
