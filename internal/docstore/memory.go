package docstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps documents in process. Listing returns documents in
// insertion order.
type MemoryStore struct {
	mu    sync.Mutex
	order map[string][]string
	docs  map[string]map[string]map[string]any
	// FailWith, when set, is returned by every operation.
	FailWith error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		order: make(map[string][]string),
		docs:  make(map[string]map[string]map[string]any),
	}
}

func (s *MemoryStore) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	doc, err := Normalize(data)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.docs[collection]
	if !ok {
		coll = make(map[string]map[string]any)
		s.docs[collection] = coll
	}
	if _, exists := coll[id]; !exists {
		s.order[collection] = append(s.order[collection], id)
	}
	coll[id] = doc
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return Normalize(doc)
}

func (s *MemoryStore) List(ctx context.Context, collection string, where ...Predicate) ([]Document, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Document
	for _, id := range s.order[collection] {
		doc := s.docs[collection][id]
		if !Matches(doc, where) {
			continue
		}
		cp, err := Normalize(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, Document{ID: id, Data: cp})
	}
	return out, nil
}

func (s *MemoryStore) Increment(ctx context.Context, collection, id, fieldPath string, delta int) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[collection][id]
	if !ok {
		return ErrNotFound
	}
	addAt(doc, fieldPath, delta)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
