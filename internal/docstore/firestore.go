package docstore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"almostArchiveAPI/internal/logger"
)

type FirestoreConfig struct {
	ProjectID string
	// CredentialsJSON is a base64 encoded service account key. It wins over
	// CredentialsFile when both are set.
	CredentialsJSON string
	CredentialsFile string
}

type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore initializes a Firebase app and opens its Firestore
// client. Without explicit credentials the application default
// credentials are used.
func NewFirestoreStore(ctx context.Context, cfg FirestoreConfig) (*FirestoreStore, error) {
	var opts []option.ClientOption

	switch {
	case cfg.CredentialsJSON != "":
		decoded, err := base64.StdEncoding.DecodeString(cfg.CredentialsJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 firebase credentials: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(decoded))
		logger.Log.Info("firestore_credentials_from_env")
	case cfg.CredentialsFile != "":
		if _, err := os.Stat(cfg.CredentialsFile); err != nil {
			return nil, fmt.Errorf("firebase credentials file %s: %w", cfg.CredentialsFile, err)
		}
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		logger.Log.Info("firestore_credentials_from_file", zap.String("path", cfg.CredentialsFile))
	default:
		logger.Log.Info("firestore_default_credentials")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firestore client: %w", err)
	}

	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	ref := s.client.Collection(collection).NewDoc()
	if _, err := ref.Create(ctx, nativeTimes(data)); err != nil {
		return "", fmt.Errorf("failed to create %s document: %w", collection, err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, nativeTimes(data)); err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return snap.Data(), nil
}

func (s *FirestoreStore) List(ctx context.Context, collection string, where ...Predicate) ([]Document, error) {
	q := s.client.Collection(collection).Query
	for _, p := range where {
		q = q.Where(p.Field, "==", p.Value)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []Document
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", collection, err)
		}
		out = append(out, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return out, nil
}

func (s *FirestoreStore) Increment(ctx context.Context, collection, id, fieldPath string, delta int) error {
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath(strings.Split(fieldPath, ".")), Value: firestore.Increment(delta)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to increment %s on %s/%s: %w", fieldPath, collection, id, err)
	}
	return nil
}

// timeFields hold timestamps. Firestore stores them as native timestamps so
// that ordering and range queries on them work like on the web client's data.
var timeFields = map[string]bool{
	"dateSubmitted": true,
	"createdAt":     true,
	"updatedAt":     true,
	"timestamp":     true,
	"lastUpdated":   true,
}

// nativeTimes returns a copy of data with the RFC 3339 strings under
// timeFields, at any depth, replaced by time.Time. Unparsable strings are
// kept as they are.
func nativeTimes(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		switch val := v.(type) {
		case string:
			if timeFields[k] {
				if t, err := time.Parse(time.RFC3339Nano, val); err == nil {
					out[k] = t.UTC()
					continue
				}
			}
		case map[string]any:
			out[k] = nativeTimes(val)
			continue
		}
		out[k] = v
	}
	return out
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
