package service_test

import (
	"context"
	"sync"

	"diplomsklad/internal/dto"
	"diplomsklad/internal/model"
	"diplomsklad/internal/repository"
	"diplomsklad/internal/worker"

	"gorm.io/gorm"
)

// ── In-memory store shared by the stub repositories ───────────────────────────
// Rows are copied in and out so callers never alias stored state, and
// uniqueness is enforced the way Postgres + TranslateError reports it.

type memStore struct {
	mu         sync.Mutex
	users      map[uint]model.User
	items      map[uint]model.Item
	locations  map[uint]model.Location
	operations map[uint]model.Operation
	syncLogs   []model.SyncLog
	seq        uint
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[uint]model.User{},
		items:      map[uint]model.Item{},
		locations:  map[uint]model.Location{},
		operations: map[uint]model.Operation{},
	}
}

func (s *memStore) nextID() uint {
	s.seq++
	return s.seq
}

// ── UserRepository ────────────────────────────────────────────────────────────

type stubUserRepo struct{ s *memStore }

var _ repository.UserRepository = (*stubUserRepo)(nil)

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.ExternalID == u.ExternalID {
			return gorm.ErrDuplicatedKey
		}
	}
	u.ID = r.s.nextID()
	r.s.users[u.ID] = *u
	return nil
}

func (r *stubUserRepo) FindByExternalID(_ context.Context, externalID int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ExternalID == externalID {
			out := u
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FirstOrCreate(_ context.Context, u *model.User) (*model.User, bool, error) {
	return r.FirstOrCreateTx(nil, u)
}

func (r *stubUserRepo) FirstOrCreateTx(_ *gorm.DB, u *model.User) (*model.User, bool, error) {
	if existing, err := r.FindByExternalID(context.Background(), u.ExternalID); err == nil {
		return existing, false, nil
	}
	if err := r.Create(context.Background(), u); err != nil {
		return nil, false, err
	}
	return u, true, nil
}

func (r *stubUserRepo) FindByIDTx(_ *gorm.DB, id uint) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

// ── ItemRepository ────────────────────────────────────────────────────────────

type stubItemRepo struct{ s *memStore }

var _ repository.ItemRepository = (*stubItemRepo)(nil)

func (r *stubItemRepo) DB() *gorm.DB { return nil }

func (r *stubItemRepo) Create(_ context.Context, it *model.Item) error {
	return r.CreateTx(nil, it)
}

func (r *stubItemRepo) CreateTx(_ *gorm.DB, it *model.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.items {
		if existing.Barcode == it.Barcode {
			return gorm.ErrDuplicatedKey
		}
	}
	it.ID = r.s.nextID()
	r.s.items[it.ID] = *it
	return nil
}

func (r *stubItemRepo) FindByID(_ context.Context, id uint) (*model.Item, error) {
	return r.FindByIDForUpdateTx(nil, id)
}

func (r *stubItemRepo) FindByIDForUpdateTx(_ *gorm.DB, id uint) (*model.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &it, nil
}

func (r *stubItemRepo) FindByBarcode(_ context.Context, barcode string) (*model.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.items {
		if it.Barcode == barcode {
			out := it
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubItemRepo) ListByOwner(_ context.Context, userID uint) ([]model.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Item{}
	for _, it := range r.s.items {
		if it.UserID != nil && *it.UserID == userID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *stubItemRepo) ListAll(_ context.Context) ([]model.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Item{}
	for _, it := range r.s.items {
		out = append(out, it)
	}
	return out, nil
}

func (r *stubItemRepo) SaveTx(_ *gorm.DB, it *model.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.items[it.ID] = *it
	return nil
}

// ── LocationRepository ────────────────────────────────────────────────────────

type stubLocationRepo struct{ s *memStore }

var _ repository.LocationRepository = (*stubLocationRepo)(nil)

func (r *stubLocationRepo) DB() *gorm.DB { return nil }

func (r *stubLocationRepo) Create(_ context.Context, l *model.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.locations {
		if existing.Code == l.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	l.ID = r.s.nextID()
	r.s.locations[l.ID] = *l
	return nil
}

func (r *stubLocationRepo) FindByID(_ context.Context, id uint) (*model.Location, error) {
	return r.FindByIDTx(nil, id)
}

func (r *stubLocationRepo) FindByCode(_ context.Context, code string) (*model.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.locations {
		if l.Code == code {
			out := l
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubLocationRepo) List(_ context.Context) ([]model.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Location{}
	for _, l := range r.s.locations {
		out = append(out, l)
	}
	return out, nil
}

func (r *stubLocationRepo) Update(_ context.Context, l *model.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.locations {
		if existing.Code == l.Code && existing.ID != l.ID {
			return gorm.ErrDuplicatedKey
		}
	}
	r.s.locations[l.ID] = *l
	return nil
}

func (r *stubLocationRepo) FindByIDTx(_ *gorm.DB, id uint) (*model.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.locations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (r *stubLocationRepo) FindByIDForUpdateTx(tx *gorm.DB, id uint) (*model.Location, error) {
	return r.FindByIDTx(tx, id)
}

func (r *stubLocationRepo) CountReferencesTx(_ *gorm.DB, id uint) (int64, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var items, ops int64
	for _, it := range r.s.items {
		if it.LocationID != nil && *it.LocationID == id {
			items++
		}
	}
	for _, op := range r.s.operations {
		if op.LocationID == id {
			ops++
		}
	}
	return items, ops, nil
}

func (r *stubLocationRepo) DeleteTx(_ *gorm.DB, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.locations, id)
	return nil
}

// ── OperationRepository ───────────────────────────────────────────────────────

type stubOperationRepo struct{ s *memStore }

var _ repository.OperationRepository = (*stubOperationRepo)(nil)

func (r *stubOperationRepo) CreateTx(_ *gorm.DB, op *model.Operation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	op.ID = r.s.nextID()
	r.s.operations[op.ID] = *op
	return nil
}

func (r *stubOperationRepo) List(_ context.Context, filter dto.OperationFilter) ([]model.OperationDetail, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.OperationDetail{}
	for _, op := range r.s.operations {
		if filter.ItemID != nil && op.ItemID != *filter.ItemID {
			continue
		}
		if filter.Type != "" && string(op.Type) != filter.Type {
			continue
		}
		out = append(out, model.OperationDetail{
			Operation:      op,
			ItemBarcode:    r.s.items[op.ItemID].Barcode,
			UserExternalID: r.s.users[op.UserID].ExternalID,
			LocationCode:   r.s.locations[op.LocationID].Code,
		})
	}
	return out, int64(len(out)), nil
}

// ── SyncLogRepository ─────────────────────────────────────────────────────────

type stubSyncLogRepo struct{ s *memStore }

var _ repository.SyncLogRepository = (*stubSyncLogRepo)(nil)

func (r *stubSyncLogRepo) Create(_ context.Context, l *model.SyncLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l.ID = r.s.nextID()
	r.s.syncLogs = append(r.s.syncLogs, *l)
	return nil
}

func (r *stubSyncLogRepo) List(_ context.Context, _, _ int) ([]model.SyncLog, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]model.SyncLog(nil), r.s.syncLogs...), int64(len(r.s.syncLogs)), nil
}

// ── SyncQueue ─────────────────────────────────────────────────────────────────

type stubQueue struct {
	jobs []worker.SyncJobPayload
	err  error
}

func (q *stubQueue) EnqueueSync(_ context.Context, p worker.SyncJobPayload) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, p)
	return nil
}

// ── fixture ───────────────────────────────────────────────────────────────────

type fixture struct {
	store     *memStore
	users     *stubUserRepo
	items     *stubItemRepo
	locations *stubLocationRepo
	ops       *stubOperationRepo
	syncLogs  *stubSyncLogRepo
}

func newFixture() *fixture {
	s := newMemStore()
	return &fixture{
		store:     s,
		users:     &stubUserRepo{s},
		items:     &stubItemRepo{s},
		locations: &stubLocationRepo{s},
		ops:       &stubOperationRepo{s},
		syncLogs:  &stubSyncLogRepo{s},
	}
}

func (f *fixture) seedUser(externalID int64, active bool) model.User {
	u := model.User{ExternalID: externalID, Role: model.RoleWorker, IsActive: active}
	_ = f.users.Create(context.Background(), &u)
	return u
}

func (f *fixture) seedLocation(code string) model.Location {
	l := model.Location{Name: "Rack " + code, Code: code}
	_ = f.locations.Create(context.Background(), &l)
	return l
}

func (f *fixture) seedItem(barcode string, qty int, locationID *uint) model.Item {
	it := model.Item{Barcode: barcode, Name: "Item " + barcode, Quantity: qty, LocationID: locationID, Status: model.ItemStatusStored}
	_ = f.items.Create(context.Background(), &it)
	return it
}

func (f *fixture) item(id uint) model.Item {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return f.store.items[id]
}
