// Package db is the relational store for the artist graph: artists, albums,
// songs, genres, the pivots between them, and a per-run sync log.
package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB represents our database connection.
type DB struct{ *gorm.DB }

//go:embed migrations
var migrations embed.FS

// Config selects the database driver and connection string.
type Config struct {
	Driver string
	DSN    string
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open returns a connection to a migrated database, creating it and running
// migrations if necessary.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	var (
		dialector gorm.Dialector
		dialect   database.Dialect
	)
	switch cfg.Driver {
	case DriverSQLite, "":
		dialector = sqlite.Open(cfg.DSN)
		dialect = database.DialectSQLite3
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
		dialect = database.DialectPostgres
	default:
		return nil, fmt.Errorf("unsupported database driver '%s'", cfg.Driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("error opening db at '%s': %w", cfg.DSN, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting connection pool: %w", err)
	}
	if dialect == database.DialectSQLite3 {
		// one writer, and every in-memory connection would be its own db
		sqlDB.SetMaxOpenConns(1)
		if err := gdb.Exec("pragma foreign_keys = on").Error; err != nil {
			return nil, fmt.Errorf("error enabling foreign keys: %w", err)
		}
	}

	dir := "migrations/" + cfg.Driver
	if cfg.Driver == "" {
		dir = "migrations/" + DriverSQLite
	}
	fsys, err := fs.Sub(migrations, dir)
	if err != nil {
		return nil, fmt.Errorf("error loading migrations: %w", err)
	}
	provider, err := goose.NewProvider(dialect, sqlDB, fsys)
	if err != nil {
		return nil, fmt.Errorf("error preparing migrations: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("error migrating db at '%s': %w", cfg.DSN, err)
	}
	for _, result := range results {
		log.Debug().Str("migration", result.Source.Path).Dur("took", result.Duration).Msg("applied migration")
	}

	return &DB{gdb}, nil
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Capabilities says which optional relationship tables exist. It is resolved
// once at startup and handed to the fetcher.
type Capabilities struct {
	RelatedPivot  bool
	AlbumPivot    bool
	TopTrackPivot bool
	ArtistGenre   bool
}

// Capabilities inspects the schema.
func (db *DB) Capabilities() Capabilities {
	m := db.Migrator()
	return Capabilities{
		RelatedPivot:  m.HasTable("artist_related"),
		AlbumPivot:    m.HasTable("album_artist"),
		TopTrackPivot: m.HasTable("artist_top_tracks"),
		ArtistGenre:   m.HasTable("artist_genre") && m.HasTable("genres"),
	}
}

// ErrNotFound is returned by lookups of a single row that doesn't exist.
var ErrNotFound = errors.New("not found")
