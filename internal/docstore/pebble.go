package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"almostArchiveAPI/internal/logger"
)

// PebbleStore is an embedded single-node backend for local development.
// Keys are "<collection>/<id>"; ids are UUIDv7 so a prefix scan returns
// documents in creation order.
type PebbleStore struct {
	db *pebble.DB
	// mu serializes read-modify-write increments.
	mu sync.Mutex
}

func NewPebbleStore(path string) (*PebbleStore, error) {
	logger.Log.Info("opening_pebble_db", zap.String("path", path))
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", path, err)
	}
	return &PebbleStore{db: db}, nil
}

func docKey(collection, id string) []byte {
	return []byte(collection + "/" + id)
}

func (s *PebbleStore) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to mint document id: %w", err)
	}
	if err := s.Set(ctx, collection, id.String(), data); err != nil {
		return "", err
	}
	return id.String(), nil
}

func (s *PebbleStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := s.db.Set(docKey(collection, id), raw, pebble.Sync); err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *PebbleStore) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	v, closer, err := s.db.Get(docKey(collection, id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	defer closer.Close()

	var data map[string]any
	if err := json.Unmarshal(v, &data); err != nil {
		return nil, fmt.Errorf("corrupt document %s/%s: %w", collection, id, err)
	}
	return data, nil
}

func (s *PebbleStore) List(ctx context.Context, collection string, where ...Predicate) ([]Document, error) {
	prefix := []byte(collection + "/")
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: prefix})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []Document
	for iter.First(); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var data map[string]any
		if err := json.Unmarshal(iter.Value(), &data); err != nil {
			logger.Log.Warn("pebble_skip_corrupt_document", zap.ByteString("key", iter.Key()), zap.Error(err))
			continue
		}
		if !Matches(data, where) {
			continue
		}
		id := string(bytes.TrimPrefix(iter.Key(), prefix))
		out = append(out, Document{ID: id, Data: data})
	}
	return out, nil
}

func (s *PebbleStore) Increment(ctx context.Context, collection, id, fieldPath string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	addAt(data, fieldPath, delta)
	return s.Set(ctx, collection, id, data)
}

func (s *PebbleStore) Close() error {
	if err := s.db.Close(); err != nil {
		return err
	}
	logger.Log.Info("pebble_closed")
	return nil
}
