package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/linemk/wolt-backend/internal/config"
	"github.com/pkg/errors"
)

// migrateDSN добавляет к DSN имя таблицы с версиями миграций
func migrateDSN(dbCfg config.DatabaseConfig, migrationsTable string) (string, error) {
	u, err := url.Parse(dbCfg.DSN())
	if err != nil {
		return "", errors.Wrap(err, "failed to parse dsn")
	}
	q := u.Query()
	q.Set("x-migrations-table", migrationsTable)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func main() {
	var migrationsPathFlag, migrationsTable string
	var down bool
	// флаги объявляем до MustLoad, он сам вызывает flag.Parse
	flag.StringVar(&migrationsPathFlag, "migrations-path", "", "path to migration files")
	flag.StringVar(&migrationsTable, "migrations-table", "migrations", "name of migrations table")
	flag.BoolVar(&down, "down", false, "roll back all migrations")

	cfg := config.MustLoad()

	migrationsPath := cfg.Migrations.Path
	if migrationsPathFlag != "" {
		migrationsPath = migrationsPathFlag
	}

	dsn, err := migrateDSN(cfg.Database, migrationsTable)
	if err != nil {
		log.Fatal(err)
	}

	// Создаем объект мигратора
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to create migrate instance"))
	}

	apply := m.Up
	if down {
		apply = m.Down
	}
	if err := apply(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("No migrations to apply")
		} else {
			log.Fatal(errors.Wrap(err, "migration failed"))
		}
	} else {
		log.Println("Migrations applied successfully")
	}

	if err := printTables(cfg.Database.DSN()); err != nil {
		log.Fatal(err)
	}
}

func printTables(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		ORDER BY table_name
	`)
	if err != nil {
		return errors.Wrap(err, "failed to query tables")
	}
	defer rows.Close()

	fmt.Println("Current tables in the database:")
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return errors.Wrap(err, "failed to scan row")
		}
		fmt.Println(" -", tableName)
	}
	return errors.Wrap(rows.Err(), "error reading rows")
}
