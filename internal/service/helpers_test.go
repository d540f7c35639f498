package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gestaozabele/fireguard/internal/cache"
	"github.com/gestaozabele/fireguard/internal/fleet"
	"github.com/gestaozabele/fireguard/internal/persist"
	"github.com/gestaozabele/fireguard/internal/storage"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string][]byte{}}
}

func (s *memoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return value, nil
}

func (s *memoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// stubRemote aceita tudo e devolve coleções vazias; probeErr controla a sondagem.
type stubRemote struct {
	probeErr error
}

func (r *stubRemote) Probe(ctx context.Context) error { return r.probeErr }
func (r *stubRemote) ListUsers(ctx context.Context) ([]fleet.StoredUser, error) {
	return nil, errors.New("users unavailable")
}
func (r *stubRemote) UpsertUser(ctx context.Context, user fleet.StoredUser) error { return nil }
func (r *stubRemote) DeleteUser(ctx context.Context, id string) error             { return nil }
func (r *stubRemote) GetSystemConfig(ctx context.Context) (fleet.SystemConfig, error) {
	return fleet.SystemConfig{}, fleet.ErrNotFound
}
func (r *stubRemote) UpsertSystemConfig(ctx context.Context, cfg fleet.SystemConfig) error {
	return nil
}
func (r *stubRemote) ListExtinguisherTypes(ctx context.Context) ([]fleet.ExtinguisherType, error) {
	return []fleet.ExtinguisherType{}, nil
}
func (r *stubRemote) ReplaceExtinguisherTypes(ctx context.Context, types []fleet.ExtinguisherType) error {
	return nil
}
func (r *stubRemote) ListChecklistItems(ctx context.Context) ([]fleet.ChecklistItem, error) {
	return []fleet.ChecklistItem{}, nil
}
func (r *stubRemote) ReplaceChecklistItems(ctx context.Context, items []fleet.ChecklistItem) error {
	return nil
}
func (r *stubRemote) ListExtinguishers(ctx context.Context) ([]fleet.Extinguisher, error) {
	return []fleet.Extinguisher{}, nil
}
func (r *stubRemote) UpsertExtinguisher(ctx context.Context, ext fleet.Extinguisher) error {
	return nil
}
func (r *stubRemote) SetLastInspection(ctx context.Context, extinguisherID, inspectionID string) error {
	return nil
}
func (r *stubRemote) ListInspections(ctx context.Context) ([]fleet.Inspection, error) {
	return []fleet.Inspection{}, nil
}
func (r *stubRemote) InsertInspection(ctx context.Context, ins fleet.Inspection) error { return nil }

type stubUploader struct {
	err  error
	keys []string
}

func (u *stubUploader) Upload(ctx context.Context, obj storage.Object) (*storage.Stored, error) {
	if u.err != nil {
		return nil, u.err
	}
	u.keys = append(u.keys, obj.Key)
	return &storage.Stored{URL: "https://cdn.example.com/" + obj.Key}, nil
}

// newLocalHandle cria uma fachada somente local já semeada.
func newLocalHandle(t *testing.T) *persist.Handle {
	t.Helper()
	facade := persist.New(newMemoryStore(), nil, zerolog.Nop())
	if err := facade.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return persist.NewHandle(facade, nil)
}

func fixedNow() time.Time {
	return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
}

const pngDataURL = "data:image/png;base64,iVBORw0KGgo="
