// Package remote stores a per-user copy of entries off the device.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/ncheta/ncheta/internal/entry"
)

// Store is a per-user remote collection of entries.
type Store interface {
	// Upsert writes e under the user's collection, replacing an entry with the same id.
	Upsert(ctx context.Context, userKey string, e entry.Entry) error
	// List returns every entry stored for the user, newest first.
	List(ctx context.Context, userKey string) ([]entry.Entry, error)
}

// blobBackend is the minimal object storage surface an ObjectStore needs.
type blobBackend interface {
	put(ctx context.Context, key string, data []byte) error
	get(ctx context.Context, key string) ([]byte, error)
	keys(ctx context.Context, prefix string) ([]string, error)
	close() error
}

// ObjectStore keeps one JSON object per entry under
// <prefix>/users/<userKey>/entries/<entryID>.json.
type ObjectStore struct {
	backend blobBackend
	prefix  string
}

var _ Store = (*ObjectStore)(nil)

func newObjectStore(backend blobBackend, prefix string) *ObjectStore {
	return &ObjectStore{
		backend: backend,
		prefix:  strings.Trim(prefix, "/"),
	}
}

func (s *ObjectStore) userPrefix(userKey string) string {
	return path.Join(s.prefix, "users", url.PathEscape(userKey), "entries") + "/"
}

func (s *ObjectStore) objectKey(userKey, entryID string) string {
	return s.userPrefix(userKey) + url.PathEscape(entryID) + ".json"
}

func (s *ObjectStore) Upsert(ctx context.Context, userKey string, e entry.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("json.Marshal(entry %s) > %w", e.ID, err)
	}
	key := s.objectKey(userKey, e.ID)
	if err := s.backend.put(ctx, key, data); err != nil {
		return fmt.Errorf("put(%s) > %w", key, err)
	}
	return nil
}

func (s *ObjectStore) List(ctx context.Context, userKey string) ([]entry.Entry, error) {
	prefix := s.userPrefix(userKey)
	keys, err := s.backend.keys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("keys(%s) > %w", prefix, err)
	}

	entries := make([]entry.Entry, 0, len(keys))
	for _, key := range keys {
		if !strings.HasSuffix(key, ".json") {
			continue
		}
		data, err := s.backend.get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("get(%s) > %w", key, err)
		}
		var e entry.Entry
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("json.Unmarshal(%s) > %w", key, err)
		}
		entries = append(entries, e)
	}
	sortNewestFirst(entries)
	return entries, nil
}

// Close releases the backend client.
func (s *ObjectStore) Close() error {
	return s.backend.close()
}

func sortNewestFirst(entries []entry.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CreatedAt != entries[j].CreatedAt {
			return entries[i].CreatedAt > entries[j].CreatedAt
		}
		return entries[i].ID < entries[j].ID
	})
}
