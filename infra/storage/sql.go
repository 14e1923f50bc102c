package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/kilianp07/tariffopt/core/model"
	"github.com/kilianp07/tariffopt/core/store"
)

const (
	defaultMaxOpenConns = 10
	defaultPingTimeout  = 5 * time.Second
)

const schema = `CREATE TABLE IF NOT EXISTS advisor_records (
        key TEXT PRIMARY KEY,
        body TEXT NOT NULL
    );`

// SQLStore persists records as JSON documents in a key/body table. It works
// with the SQLite and PostgreSQL drivers.
type SQLStore struct {
	db     *sql.DB
	load   string
	upsert string
}

// NewSQLiteStore opens or creates the SQLite database at path.
func NewSQLiteStore(path string) (*SQLStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite: path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers.
	db.SetMaxOpenConns(1)
	return newSQLStore(db, "?")
}

// NewPostgresStore connects through the pgx stdlib driver and ensures schema.
func NewPostgresStore(dsn string) (*SQLStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres: empty DSN")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetConnMaxLifetime(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), defaultPingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return newSQLStore(db, "$")
}

func newSQLStore(db *sql.DB, placeholder string) (*SQLStore, error) {
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	p1, p2 := "?", "?"
	if placeholder == "$" {
		p1, p2 = "$1", "$2"
	}
	return &SQLStore{
		db:   db,
		load: "SELECT body FROM advisor_records WHERE key = " + p1,
		upsert: "INSERT INTO advisor_records (key, body) VALUES (" + p1 + ", " + p2 + ")" +
			" ON CONFLICT(key) DO UPDATE SET body = excluded.body",
	}, nil
}

func (s *SQLStore) LoadTariff(ctx context.Context) (model.TariffTable, error) {
	b, err := s.get(ctx, store.KeyTariff)
	if err != nil {
		return model.TariffTable{}, err
	}
	return decodeTariff(b)
}

func (s *SQLStore) SaveTariff(ctx context.Context, t model.TariffTable) error {
	b, err := encodeTariff(t, false)
	if err != nil {
		return err
	}
	return s.put(ctx, store.KeyTariff, b)
}

func (s *SQLStore) LoadAppliances(ctx context.Context) ([]model.Appliance, error) {
	b, err := s.get(ctx, store.KeyAppliances)
	if err != nil {
		return nil, err
	}
	return decodeAppliances(b)
}

func (s *SQLStore) SaveAppliances(ctx context.Context, apps []model.Appliance) error {
	b, err := encodeAppliances(apps, false)
	if err != nil {
		return err
	}
	return s.put(ctx, store.KeyAppliances, b)
}

// Close closes the underlying database.
func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) get(ctx context.Context, key string) ([]byte, error) {
	var body string
	err := s.db.QueryRowContext(ctx, s.load, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", key, err)
	}
	return []byte(body), nil
}

func (s *SQLStore) put(ctx context.Context, key string, body []byte) error {
	if _, err := s.db.ExecContext(ctx, s.upsert, key, string(body)); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}
