package persist

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gestaozabele/fireguard/internal/cache"
	"github.com/gestaozabele/fireguard/internal/fleet"
)

var errUnreachable = errors.New("connection refused")

type memoryStore struct {
	mu    sync.Mutex
	data  map[string][]byte
	reads map[string]int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string][]byte{}, reads: map[string]int{}}
}

func (s *memoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads[key]++
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

func (s *memoryStore) readCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads[key]
}

type stubRemote struct {
	err error

	users         []fleet.StoredUser
	config        *fleet.SystemConfig
	types         []fleet.ExtinguisherType
	checklist     []fleet.ChecklistItem
	extinguishers []fleet.Extinguisher
	inspections   []fleet.Inspection

	deleted        []string
	lastInspection map[string]string
}

func (r *stubRemote) Probe(ctx context.Context) error { return r.err }

func (r *stubRemote) ListUsers(ctx context.Context) ([]fleet.StoredUser, error) {
	if r.err != nil {
		return nil, r.err
	}
	return append([]fleet.StoredUser{}, r.users...), nil
}

func (r *stubRemote) UpsertUser(ctx context.Context, user fleet.StoredUser) error {
	if r.err != nil {
		return r.err
	}
	for i := range r.users {
		if r.users[i].ID == user.ID {
			r.users[i] = user
			return nil
		}
	}
	r.users = append(r.users, user)
	return nil
}

func (r *stubRemote) DeleteUser(ctx context.Context, id string) error {
	if r.err != nil {
		return r.err
	}
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubRemote) GetSystemConfig(ctx context.Context) (fleet.SystemConfig, error) {
	if r.err != nil {
		return fleet.SystemConfig{}, r.err
	}
	if r.config == nil {
		return fleet.SystemConfig{}, fleet.ErrNotFound
	}
	return *r.config, nil
}

func (r *stubRemote) UpsertSystemConfig(ctx context.Context, cfg fleet.SystemConfig) error {
	if r.err != nil {
		return r.err
	}
	r.config = &cfg
	return nil
}

func (r *stubRemote) ListExtinguisherTypes(ctx context.Context) ([]fleet.ExtinguisherType, error) {
	if r.err != nil {
		return nil, r.err
	}
	return append([]fleet.ExtinguisherType{}, r.types...), nil
}

func (r *stubRemote) ReplaceExtinguisherTypes(ctx context.Context, types []fleet.ExtinguisherType) error {
	if r.err != nil {
		return r.err
	}
	r.types = append([]fleet.ExtinguisherType{}, types...)
	return nil
}

func (r *stubRemote) ListChecklistItems(ctx context.Context) ([]fleet.ChecklistItem, error) {
	if r.err != nil {
		return nil, r.err
	}
	return append([]fleet.ChecklistItem{}, r.checklist...), nil
}

func (r *stubRemote) ReplaceChecklistItems(ctx context.Context, items []fleet.ChecklistItem) error {
	if r.err != nil {
		return r.err
	}
	r.checklist = append([]fleet.ChecklistItem{}, items...)
	return nil
}

func (r *stubRemote) ListExtinguishers(ctx context.Context) ([]fleet.Extinguisher, error) {
	if r.err != nil {
		return nil, r.err
	}
	return append([]fleet.Extinguisher{}, r.extinguishers...), nil
}

func (r *stubRemote) UpsertExtinguisher(ctx context.Context, ext fleet.Extinguisher) error {
	if r.err != nil {
		return r.err
	}
	for i := range r.extinguishers {
		if r.extinguishers[i].ID == ext.ID {
			r.extinguishers[i] = ext
			return nil
		}
	}
	r.extinguishers = append(r.extinguishers, ext)
	return nil
}

func (r *stubRemote) SetLastInspection(ctx context.Context, extinguisherID, inspectionID string) error {
	if r.err != nil {
		return r.err
	}
	if r.lastInspection == nil {
		r.lastInspection = map[string]string{}
	}
	r.lastInspection[extinguisherID] = inspectionID
	return nil
}

func (r *stubRemote) ListInspections(ctx context.Context) ([]fleet.Inspection, error) {
	if r.err != nil {
		return nil, r.err
	}
	return append([]fleet.Inspection{}, r.inspections...), nil
}

func (r *stubRemote) InsertInspection(ctx context.Context, ins fleet.Inspection) error {
	if r.err != nil {
		return r.err
	}
	r.inspections = append(r.inspections, ins)
	return nil
}

func newTestFacade(local cache.Store, remote Remote) *Facade {
	return New(local, remote, zerolog.Nop())
}

func TestReadsPreferRemote(t *testing.T) {
	ctx := context.Background()
	local := newMemoryStore()
	if err := cache.SetJSON(ctx, local, cache.KeyExtinguisherTypes, []fleet.ExtinguisherType{{ID: "9", Name: "Local"}}); err != nil {
		t.Fatalf("seed local: %v", err)
	}
	remote := &stubRemote{types: []fleet.ExtinguisherType{{ID: "1", Name: "Remoto"}}}

	f := newTestFacade(local, remote)
	types := f.GetExtinguisherTypes(ctx)

	if len(types) != 1 || types[0].Name != "Remoto" {
		t.Fatalf("expected remote types, got %+v", types)
	}
	if n := local.readCount(cache.KeyExtinguisherTypes); n != 0 {
		t.Fatalf("expected no local read, got %d", n)
	}
}

func TestReadsFallBackToLocalSnapshot(t *testing.T) {
	ctx := context.Background()
	local := newMemoryStore()
	snapshot := []fleet.Extinguisher{{ID: "e1", Code: "EXT-001", ExpiryDate: "2027-01-01"}}
	if err := cache.SetJSON(ctx, local, cache.KeyExtinguishers, snapshot); err != nil {
		t.Fatalf("seed local: %v", err)
	}

	f := newTestFacade(local, &stubRemote{err: errUnreachable})
	exts := f.GetExtinguishers(ctx)

	if len(exts) != 1 || exts[0].Code != "EXT-001" {
		t.Fatalf("expected local snapshot, got %+v", exts)
	}
}

func TestReadWithoutAnySourceIsEmpty(t *testing.T) {
	f := newTestFacade(newMemoryStore(), nil)

	inspections := f.GetInspections(context.Background())
	if inspections == nil || len(inspections) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", inspections)
	}
	if cfg := f.GetSystemConfig(context.Background()); cfg.AppName != fleet.DefaultAppName {
		t.Fatalf("expected default config, got %+v", cfg)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newTestFacade(newMemoryStore(), nil)

	if got := f.GetExtinguisherTypes(ctx); len(got) != 0 {
		t.Fatalf("expected empty types before seed, got %+v", got)
	}

	for i := 0; i < 2; i++ {
		if err := f.Seed(ctx); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	types := f.GetExtinguisherTypes(ctx)
	if len(types) != 4 || types[0].ID != "1" || types[0].Name != "Pó Químico Seco" {
		t.Fatalf("unexpected types: %+v", types)
	}
	if items := f.GetChecklistItems(ctx); len(items) != 6 {
		t.Fatalf("expected 6 checklist items, got %d", len(items))
	}
	if users := f.GetUsers(ctx); len(users) != 2 {
		t.Fatalf("expected 2 default users, got %d", len(users))
	}
}

func TestSeedNeverWritesUsersRemotely(t *testing.T) {
	ctx := context.Background()
	remote := &stubRemote{}
	local := newMemoryStore()
	f := newTestFacade(local, remote)

	if err := f.Seed(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if len(remote.types) != 4 || len(remote.checklist) != 6 {
		t.Fatalf("expected catalog seeded remotely, got %d types %d items", len(remote.types), len(remote.checklist))
	}
	if len(remote.users) != 0 {
		t.Fatalf("expected no remote users, got %+v", remote.users)
	}
}

func TestDefaultUsersSeededWhenRemoteUnreachable(t *testing.T) {
	ctx := context.Background()
	remote := &stubRemote{err: errUnreachable}
	local := newMemoryStore()
	f := newTestFacade(local, remote)

	if err := f.Seed(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var users []fleet.StoredUser
	if found, err := cache.GetJSON(ctx, local, cache.KeyUsers, &users); err != nil || !found || len(users) != 2 {
		t.Fatalf("expected local default users, found=%v err=%v users=%+v", found, err, users)
	}
	if len(remote.users) != 0 {
		t.Fatalf("expected no remote users, got %+v", remote.users)
	}
}

func TestGetUsersKeepsLocalSnapshotWhenRemoteIsEmpty(t *testing.T) {
	ctx := context.Background()
	local := newMemoryStore()
	snapshot := []fleet.StoredUser{{User: fleet.User{ID: "u9", Name: "Maria", Username: "maria", Role: fleet.RoleAdmin}, Password: "x"}}
	if err := cache.SetJSON(ctx, local, cache.KeyUsers, snapshot); err != nil {
		t.Fatalf("seed local: %v", err)
	}

	f := newTestFacade(local, &stubRemote{})
	if users := f.GetUsers(ctx); len(users) != 0 {
		t.Fatalf("expected the empty remote list, got %+v", users)
	}

	var stored []fleet.StoredUser
	if _, err := cache.GetJSON(ctx, local, cache.KeyUsers, &stored); err != nil {
		t.Fatalf("read local: %v", err)
	}
	if len(stored) != 1 || stored[0].Username != "maria" {
		t.Fatalf("local snapshot must stay untouched, got %+v", stored)
	}
}

func TestSaveUserReplacesByID(t *testing.T) {
	ctx := context.Background()
	remote := &stubRemote{}
	f := newTestFacade(newMemoryStore(), remote)

	user := fleet.StoredUser{User: fleet.User{ID: "u1", Name: "Ana", Username: "ana", Role: fleet.RoleBrigadista}, Password: "x"}
	if err := f.SaveUser(ctx, user); err != nil {
		t.Fatalf("save: %v", err)
	}
	user.Name = "Ana Souza"
	if err := f.SaveUser(ctx, user); err != nil {
		t.Fatalf("save again: %v", err)
	}

	users := f.GetUsers(ctx)
	if len(users) != 1 || users[0].Name != "Ana Souza" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestSaveInspectionAppendsAndMarksExtinguisher(t *testing.T) {
	ctx := context.Background()
	remote := &stubRemote{}
	local := newMemoryStore()
	f := newTestFacade(local, remote)

	ext := fleet.Extinguisher{ID: "e1", Code: "EXT-001", ManufactureDate: "2024-01-01", ExpiryDate: "2029-01-01", Status: fleet.StatusActive}
	if err := f.SaveExtinguisher(ctx, ext); err != nil {
		t.Fatalf("save extinguisher: %v", err)
	}

	ins := fleet.Inspection{ID: "i1", ExtinguisherID: "e1", Date: "2026-10-17T10:00:00Z", Inspector: "Brigadista Alpha", Status: fleet.InspectionOK}
	if err := f.SaveInspection(ctx, ins); err != nil {
		t.Fatalf("save inspection: %v", err)
	}

	if len(remote.inspections) != 1 || remote.lastInspection["e1"] != "i1" {
		t.Fatalf("unexpected remote state: %+v %+v", remote.inspections, remote.lastInspection)
	}

	var exts []fleet.Extinguisher
	if _, err := cache.GetJSON(ctx, local, cache.KeyExtinguishers, &exts); err != nil {
		t.Fatalf("read local: %v", err)
	}
	if len(exts) != 1 || exts[0].LastInspectionID != "i1" {
		t.Fatalf("expected local snapshot to point at i1, got %+v", exts)
	}
	if got := f.GetInspections(ctx); len(got) != 1 || got[0].Responses == nil {
		t.Fatalf("unexpected inspections: %+v", got)
	}
}

func TestRemoteWriteFailureKeepsLocalAndRecordsDivergence(t *testing.T) {
	ctx := context.Background()
	remote := &stubRemote{err: errUnreachable}
	local := newMemoryStore()
	f := newTestFacade(local, remote)

	ext := fleet.Extinguisher{ID: "e1", Code: "EXT-001", ManufactureDate: "2024-01-01", ExpiryDate: "2029-01-01", Status: fleet.StatusActive}
	if err := f.SaveExtinguisher(ctx, ext); err != nil {
		t.Fatalf("save should succeed locally: %v", err)
	}
	if err := f.SaveExtinguisher(ctx, ext); err != nil {
		t.Fatalf("save again: %v", err)
	}

	if got := f.GetExtinguishers(ctx); len(got) != 1 {
		t.Fatalf("expected local extinguisher, got %+v", got)
	}

	pending := f.PendingSync(ctx)
	if len(pending) != 1 {
		t.Fatalf("expected one deduplicated divergence, got %+v", pending)
	}
	if pending[0].Entity != EntityExtinguishers || pending[0].Operation != OpUpsert || pending[0].RecordID != "e1" {
		t.Fatalf("unexpected divergence: %+v", pending[0])
	}

	remote.err = nil
	report, err := f.Resync(ctx)
	if err != nil {
		t.Fatalf("resync: %v", err)
	}
	if report.Resolved != 1 || len(report.Remaining) != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(remote.extinguishers) != 1 || remote.extinguishers[0].Code != "EXT-001" {
		t.Fatalf("expected extinguisher pushed, got %+v", remote.extinguishers)
	}
	if pending := f.PendingSync(ctx); len(pending) != 0 {
		t.Fatalf("expected ledger cleared, got %+v", pending)
	}
}

func TestFailedInspectionInsertIsReplayedInOrder(t *testing.T) {
	ctx := context.Background()
	remote := &stubRemote{err: errUnreachable}
	f := newTestFacade(newMemoryStore(), remote)

	if err := f.SaveExtinguisher(ctx, fleet.Extinguisher{ID: "e1", Code: "EXT-001", ManufactureDate: "2024-01-01", ExpiryDate: "2029-01-01"}); err != nil {
		t.Fatalf("save extinguisher: %v", err)
	}
	if err := f.SaveInspection(ctx, fleet.Inspection{ID: "i1", ExtinguisherID: "e1", Date: "2026-10-17T10:00:00Z", Status: fleet.InspectionOK}); err != nil {
		t.Fatalf("save inspection: %v", err)
	}

	if pending := f.PendingSync(ctx); len(pending) != 3 {
		t.Fatalf("expected 3 pending entries, got %+v", pending)
	}

	remote.err = nil
	report, err := f.Resync(ctx)
	if err != nil {
		t.Fatalf("resync: %v", err)
	}
	if report.Resolved != 3 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(remote.inspections) != 1 || remote.lastInspection["e1"] != "i1" {
		t.Fatalf("unexpected remote state: %+v %+v", remote.inspections, remote.lastInspection)
	}
}

func TestDeleteSupersedesPendingUpsert(t *testing.T) {
	ctx := context.Background()
	remote := &stubRemote{err: errUnreachable}
	f := newTestFacade(newMemoryStore(), remote)

	user := fleet.StoredUser{User: fleet.User{ID: "u9", Username: "temp", Role: fleet.RoleBrigadista}}
	if err := f.SaveUser(ctx, user); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := f.DeleteUser(ctx, "u9"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	pending := f.PendingSync(ctx)
	if len(pending) != 1 || pending[0].Operation != OpDelete {
		t.Fatalf("expected only the delete pending, got %+v", pending)
	}
}

func TestPendingUserSurvivesSaveAfterRecovery(t *testing.T) {
	ctx := context.Background()
	remote := &stubRemote{err: errUnreachable}
	local := newMemoryStore()
	f := newTestFacade(local, remote)

	ana := fleet.StoredUser{User: fleet.User{ID: "ua", Name: "Ana", Username: "ana", Role: fleet.RoleBrigadista}, Password: "x"}
	if err := f.SaveUser(ctx, ana); err != nil {
		t.Fatalf("save offline: %v", err)
	}
	if pending := f.PendingSync(ctx); len(pending) != 1 {
		t.Fatalf("expected one pending entry, got %+v", pending)
	}

	remote.err = nil
	remote.users = []fleet.StoredUser{{User: fleet.User{ID: "1", Username: "admin", Role: fleet.RoleAdmin}, Password: "admin123"}}
	bruno := fleet.StoredUser{User: fleet.User{ID: "ub", Name: "Bruno", Username: "bruno", Role: fleet.RoleBrigadista}, Password: "y"}
	if err := f.SaveUser(ctx, bruno); err != nil {
		t.Fatalf("save online: %v", err)
	}

	var stored []fleet.StoredUser
	if _, err := cache.GetJSON(ctx, local, cache.KeyUsers, &stored); err != nil {
		t.Fatalf("read local: %v", err)
	}
	if !hasUser(stored, "ua") || !hasUser(stored, "ub") {
		t.Fatalf("expected both users in the local snapshot, got %+v", stored)
	}

	report, err := f.Resync(ctx)
	if err != nil {
		t.Fatalf("resync: %v", err)
	}
	if report.Resolved != 1 || len(report.Remaining) != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if !hasUser(remote.users, "ua") || !hasUser(remote.users, "ub") || !hasUser(remote.users, "1") {
		t.Fatalf("expected remote to hold every user, got %+v", remote.users)
	}
}

func TestPendingExtinguisherSurvivesSaveAfterRecovery(t *testing.T) {
	ctx := context.Background()
	remote := &stubRemote{err: errUnreachable}
	f := newTestFacade(newMemoryStore(), remote)

	if err := f.SaveExtinguisher(ctx, fleet.Extinguisher{ID: "e1", Code: "EXT-001", ManufactureDate: "2024-01-01", ExpiryDate: "2029-01-01"}); err != nil {
		t.Fatalf("save offline: %v", err)
	}

	remote.err = nil
	if err := f.SaveExtinguisher(ctx, fleet.Extinguisher{ID: "e2", Code: "EXT-002", ManufactureDate: "2024-01-01", ExpiryDate: "2029-01-01"}); err != nil {
		t.Fatalf("save online: %v", err)
	}

	if _, err := f.Resync(ctx); err != nil {
		t.Fatalf("resync: %v", err)
	}
	if len(remote.extinguishers) != 2 {
		t.Fatalf("expected both extinguishers remotely, got %+v", remote.extinguishers)
	}
}

func TestResyncKeepsEntryWhenRecordLeftLocalSnapshot(t *testing.T) {
	ctx := context.Background()
	remote := &stubRemote{err: errUnreachable}
	local := newMemoryStore()
	f := newTestFacade(local, remote)

	if err := f.SaveExtinguisher(ctx, fleet.Extinguisher{ID: "e1", Code: "EXT-001", ManufactureDate: "2024-01-01", ExpiryDate: "2029-01-01"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := cache.SetJSON(ctx, local, cache.KeyExtinguishers, []fleet.Extinguisher{}); err != nil {
		t.Fatalf("clear local: %v", err)
	}

	remote.err = nil
	report, err := f.Resync(ctx)
	if err != nil {
		t.Fatalf("resync: %v", err)
	}
	if report.Resolved != 0 || len(report.Remaining) != 1 {
		t.Fatalf("expected entry to stay pending, got %+v", report)
	}
	if report.Remaining[0].Error != ErrMissingLocal.Error() {
		t.Fatalf("unexpected error: %q", report.Remaining[0].Error)
	}
}

func TestRemoteDeleteClearsPendingUpsert(t *testing.T) {
	ctx := context.Background()
	remote := &stubRemote{err: errUnreachable}
	local := newMemoryStore()
	f := newTestFacade(local, remote)

	if err := f.SaveUser(ctx, fleet.StoredUser{User: fleet.User{ID: "u9", Username: "temp", Role: fleet.RoleBrigadista}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	remote.err = nil
	if err := f.DeleteUser(ctx, "u9"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if pending := f.PendingSync(ctx); len(pending) != 0 {
		t.Fatalf("expected ledger cleared, got %+v", pending)
	}

	if err := f.SaveUser(ctx, fleet.StoredUser{User: fleet.User{ID: "u10", Username: "novo", Role: fleet.RoleBrigadista}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	var stored []fleet.StoredUser
	if _, err := cache.GetJSON(ctx, local, cache.KeyUsers, &stored); err != nil {
		t.Fatalf("read local: %v", err)
	}
	if hasUser(stored, "u9") {
		t.Fatalf("deleted user came back: %+v", stored)
	}
}

func hasUser(users []fleet.StoredUser, id string) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}

func TestResyncRequiresRemote(t *testing.T) {
	f := newTestFacade(newMemoryStore(), nil)
	if _, err := f.Resync(context.Background()); !errors.Is(err, ErrNoRemote) {
		t.Fatalf("expected ErrNoRemote, got %v", err)
	}
}

func TestProbeClassifiesConnection(t *testing.T) {
	ctx := context.Background()
	local := newMemoryStore()

	if got := newTestFacade(local, nil).Probe(ctx, 0); got != StateLocal {
		t.Fatalf("expected local, got %s", got)
	}
	if got := newTestFacade(local, &stubRemote{}).Probe(ctx, 0); got != StateOnline {
		t.Fatalf("expected online, got %s", got)
	}
	if got := newTestFacade(local, &stubRemote{err: errUnreachable}).Probe(ctx, 0); got != StateOffline {
		t.Fatalf("expected offline, got %s", got)
	}
}

func TestWithRemoteSharesLocalStore(t *testing.T) {
	ctx := context.Background()
	local := newMemoryStore()
	offline := newTestFacade(local, nil)

	if err := offline.SaveChecklistItems(ctx, []fleet.ChecklistItem{{ID: "seal", Label: "Lacre"}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	online := offline.WithRemote(&stubRemote{err: errUnreachable})
	if !online.HasRemote() || offline.HasRemote() {
		t.Fatal("WithRemote must not change the original facade")
	}
	if items := online.GetChecklistItems(ctx); len(items) != 1 || items[0].ID != "seal" {
		t.Fatalf("expected shared local snapshot, got %+v", items)
	}
}

func TestHandleSwapClosesPrevious(t *testing.T) {
	closed := 0
	h := NewHandle(newTestFacade(newMemoryStore(), &stubRemote{}), func() { closed++ })

	f := h.Swap(nil, nil)
	if f.HasRemote() || h.Facade() != f {
		t.Fatal("expected local-only facade after swap")
	}
	if closed != 1 {
		t.Fatalf("expected previous remote closed once, got %d", closed)
	}
	h.Close()
	if closed != 1 {
		t.Fatalf("unexpected extra close: %d", closed)
	}
}
