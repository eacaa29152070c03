package file

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/dropshare/service/internal/storage"
)

// memMeta is an in-memory MetadataStore with per-operation fault injection.
type memMeta struct {
	mu     sync.Mutex
	nextID int64
	clock  time.Time
	rows   map[int64]*Record

	insertErr error
	getErr    error
	incrErr   error
	deleteErr error
}

func newMemMeta() *memMeta {
	return &memMeta{
		rows:  make(map[int64]*Record),
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memMeta) Insert(_ context.Context, rec *Record) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	m.nextID++
	m.clock = m.clock.Add(time.Second)
	row := *rec
	row.ID = m.nextID
	row.CreatedAt = m.clock
	row.DownloadCount = 0
	m.rows[row.ID] = &row
	out := row
	return &out, nil
}

func (m *memMeta) GetByID(_ context.Context, id int64) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	row, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *row
	return &out, nil
}

func (m *memMeta) GetByPublicID(_ context.Context, publicID string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, row := range m.rows {
		if row.PublicID == publicID {
			out := *row
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memMeta) ListByOwner(_ context.Context, ownerID string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make([]Record, 0)
	for _, row := range m.rows {
		if row.OwnerID == ownerID {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *memMeta) IncrementDownloadCount(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incrErr != nil {
		return m.incrErr
	}
	row, ok := m.rows[id]
	if !ok {
		return ErrNotFound
	}
	row.DownloadCount++
	return nil
}

func (m *memMeta) DeleteByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.rows[id]; !ok {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memMeta) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *memMeta) setInsertErr(err error) { m.mu.Lock(); m.insertErr = err; m.mu.Unlock() }
func (m *memMeta) setIncrErr(err error)   { m.mu.Lock(); m.incrErr = err; m.mu.Unlock() }
func (m *memMeta) setDeleteErr(err error) { m.mu.Lock(); m.deleteErr = err; m.mu.Unlock() }

// faultyStorage wraps MemoryStorage with injectable failures.
type faultyStorage struct {
	*storage.MemoryStorage

	mu     sync.Mutex
	putErr error
	getErr error
	// lenient stores whatever the body holds, like a backend that ignores the declared size.
	lenient   bool
	deleteErr error
	closed    int
}

func newFaultyStorage() *faultyStorage {
	return &faultyStorage{MemoryStorage: storage.NewMemoryStorage()}
}

func (s *faultyStorage) Put(ctx context.Context, key string, r io.Reader, size int64, ct string) error {
	s.mu.Lock()
	err, lenient := s.putErr, s.lenient
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if lenient {
		size = -1
	}
	return s.MemoryStorage.Put(ctx, key, r, size, ct)
}

func (s *faultyStorage) Get(ctx context.Context, key string) (*storage.Object, error) {
	s.mu.Lock()
	err := s.getErr
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	obj, err := s.MemoryStorage.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	obj.Body = &trackedBody{ReadCloser: obj.Body, s: s}
	return obj, nil
}

func (s *faultyStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	err := s.deleteErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.MemoryStorage.Delete(ctx, key)
}

func (s *faultyStorage) setPutErr(err error)    { s.mu.Lock(); s.putErr = err; s.mu.Unlock() }
func (s *faultyStorage) setDeleteErr(err error) { s.mu.Lock(); s.deleteErr = err; s.mu.Unlock() }
func (s *faultyStorage) setGetErr(err error)    { s.mu.Lock(); s.getErr = err; s.mu.Unlock() }

func (s *faultyStorage) closedBodies() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type trackedBody struct {
	io.ReadCloser
	s *faultyStorage
}

func (b *trackedBody) Close() error {
	b.s.mu.Lock()
	b.s.closed++
	b.s.mu.Unlock()
	return b.ReadCloser.Close()
}
