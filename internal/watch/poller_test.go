package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/psds-microservice/dispatch/internal/database"
)

type fakeStore struct {
	count atomic.Int64
}

func (f *fakeStore) sign(context.Context) (database.Signature, error) {
	n := f.count.Load()
	return database.Signature{MaxID: n, Count: n}, nil
}

type recorder struct {
	mu   sync.Mutex
	seen []database.Signature
}

func (r *recorder) record(sig database.Signature) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, sig)
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func TestPoller_TickerDetectsChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := &fakeStore{}
	rec := &recorder{}
	p := NewPoller(t.TempDir(), 10*time.Millisecond, store.sign, rec.record, zap.NewNop())
	require.NoError(t, p.Start(context.Background()))

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, rec.len(), "unchanged store must not notify")

	store.count.Store(3)
	assert.Eventually(t, func() bool { return rec.len() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, database.Signature{MaxID: 3, Count: 3}, p.Last())

	p.Stop()
	p.Stop()
}

func TestPoller_FileEventTriggersCheck(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	store := &fakeStore{}
	rec := &recorder{}
	// Таймер заведомо длиннее теста: срабатывать должно событие файловой системы.
	p := NewPoller(dir, time.Hour, store.sign, rec.record, zap.NewNop())
	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	store.count.Store(1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app_2025_01.db"), []byte("x"), 0o644))

	assert.Eventually(t, func() bool { return rec.len() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestPoller_StopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoller(t.TempDir(), 5*time.Millisecond, (&fakeStore{}).sign, nil, zap.NewNop())
	require.NoError(t, p.Start(ctx))
	cancel()
	p.Stop()
}

func TestIsStoreWrite(t *testing.T) {
	assert.True(t, isStoreWrite(fsnotify.Event{Name: "/d/app_2025_01.db", Op: fsnotify.Write}))
	assert.True(t, isStoreWrite(fsnotify.Event{Name: "/d/app.db", Op: fsnotify.Create}))
	assert.False(t, isStoreWrite(fsnotify.Event{Name: "/d/app.db-journal", Op: fsnotify.Write}))
	assert.False(t, isStoreWrite(fsnotify.Event{Name: "/d/app.db", Op: fsnotify.Chmod}))
}
