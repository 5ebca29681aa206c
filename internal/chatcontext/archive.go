package chatcontext

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoSnapshot — в хранилище ещё нет снапшота
var ErrNoSnapshot = errors.New("snapshot not found")

// BlobStore — низкоуровневое объектное хранилище (S3)
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// Archiver сохраняет и поднимает MemoryStore между рестартами.
type Archiver struct {
	blobs BlobStore
	key   string
}

func NewArchiver(blobs BlobStore, key string) *Archiver {
	if key == "" {
		key = "chat-context/snapshot.json"
	}
	return &Archiver{blobs: blobs, key: key}
}

func (a *Archiver) Save(ctx context.Context, store *MemoryStore) (int, error) {
	snap := store.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		return 0, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := a.blobs.Put(ctx, a.key, data, "application/json"); err != nil {
		return 0, fmt.Errorf("upload snapshot: %w", err)
	}
	return len(snap.Users), nil
}

// Load восстанавливает стор, отсутствие снапшота не ошибка.
func (a *Archiver) Load(ctx context.Context, store *MemoryStore) (int, error) {
	data, err := a.blobs.Get(ctx, a.key)
	if errors.Is(err, ErrNoSnapshot) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("download snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return 0, fmt.Errorf("decode snapshot: %w", err)
	}
	store.Restore(snap)
	return len(snap.Users), nil
}
