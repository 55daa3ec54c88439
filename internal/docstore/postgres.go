package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"almostArchiveAPI/internal/logger"
)

const documentsSchema = `
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		data JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (collection, id)
	)
`

// PostgresStore keeps every collection in one JSONB table.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dbURL string) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, documentsSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}

	logger.Log.Info("postgres_store_ready", zap.Int32("max_conns", poolConfig.MaxConns))
	return &PostgresStore{db: pool}, nil
}

func (s *PostgresStore) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	id := uuid.NewString()
	query := `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)`
	if _, err := s.db.Exec(ctx, query, collection, id, string(raw)); err != nil {
		return "", fmt.Errorf("failed to create %s document: %w", collection, err)
	}
	return id, nil
}

func (s *PostgresStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	query := `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data
	`
	if _, err := s.db.Exec(ctx, query, collection, id, string(raw)); err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	var data map[string]any
	err := s.db.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return data, nil
}

func (s *PostgresStore) List(ctx context.Context, collection string, where ...Predicate) ([]Document, error) {
	filter, err := json.Marshal(containment(where))
	if err != nil {
		return nil, fmt.Errorf("failed to encode filter: %w", err)
	}

	query := `
		SELECT id, data
		FROM documents
		WHERE collection = $1 AND data @> $2::jsonb
		ORDER BY created_at, id
	`
	rows, err := s.db.Query(ctx, query, collection, string(filter))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Data); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func (s *PostgresStore) Increment(ctx context.Context, collection, id, fieldPath string, delta int) error {
	// A single UPDATE keeps concurrent increments from losing writes.
	query := `
		UPDATE documents
		SET data = jsonb_set(
			data,
			$3::text[],
			to_jsonb(COALESCE((data #>> $3::text[])::numeric, 0) + $4),
			true
		)
		WHERE collection = $1 AND id = $2
	`
	tag, err := s.db.Exec(ctx, query, collection, id, strings.Split(fieldPath, "."), delta)
	if err != nil {
		return fmt.Errorf("failed to increment %s on %s/%s: %w", fieldPath, collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

// containment turns equality predicates into the nested JSON object used
// with the @> operator.
func containment(where []Predicate) map[string]any {
	root := map[string]any{}
	for _, p := range where {
		segs := strings.Split(p.Field, ".")
		cur := root
		for _, seg := range segs[:len(segs)-1] {
			next, ok := cur[seg].(map[string]any)
			if !ok {
				next = map[string]any{}
				cur[seg] = next
			}
			cur = next
		}
		cur[segs[len(segs)-1]] = p.Value
	}
	return root
}
