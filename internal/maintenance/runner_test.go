package maintenance

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PeterCxy/itte/pkg/config"
	"github.com/PeterCxy/itte/pkg/store/db"
	"github.com/PeterCxy/itte/pkg/store/db/pebbledb"
)

// plainBackend has no Maintain method.
type plainBackend struct{ db.Backend }

func (plainBackend) Name() string { return "plain" }

type blockingBackend struct {
	db.Backend
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingBackend) Name() string { return "blocking" }

func (b *blockingBackend) Maintain(ctx context.Context) error {
	b.calls.Add(1)
	b.entered <- struct{}{}
	<-b.release
	return nil
}

func TestRunOnceCompactsPebble(t *testing.T) {
	b, err := pebbledb.OpenMemory()
	require.NoError(t, err)
	defer b.Close()
	require.NoError(t, b.Put(context.Background(), "comment:https://x/y:0000000000000001:abcde", []byte("{}")))

	r := NewRunner("0 3 * * *", b)
	require.NoError(t, r.RunOnce(context.Background()))
	assert.Equal(t, 1, r.Runs())
}

func TestRunOnceSkipsNonMaintainers(t *testing.T) {
	r := NewRunner("0 3 * * *", plainBackend{})
	require.NoError(t, r.RunOnce(context.Background()))
	assert.Equal(t, 0, r.Runs())
}

func TestRunOnceIsExclusive(t *testing.T) {
	b := &blockingBackend{entered: make(chan struct{}), release: make(chan struct{})}
	r := NewRunner("0 3 * * *", b)

	done := make(chan error, 1)
	go func() { done <- r.RunOnce(context.Background()) }()
	<-b.entered

	assert.ErrorIs(t, r.RunOnce(context.Background()), ErrAlreadyRunning)
	close(b.release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), b.calls.Load())
}

func TestScheduleLoopRunsAndStops(t *testing.T) {
	b, err := pebbledb.OpenMemory()
	require.NoError(t, err)
	defer b.Close()

	r := NewRunner("unused", b)
	r.next = func(now time.Time) (time.Time, error) { return now.Add(5 * time.Millisecond), nil }

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		r.scheduleLoop(ctx)
		close(stopped)
	}()

	require.Eventually(t, func() bool { return r.Runs() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop on cancel")
	}
}

func TestStartDisabledAndInvalid(t *testing.T) {
	cancel, err := Start(context.Background(), config.MaintenanceConfig{Enabled: false}, plainBackend{})
	require.NoError(t, err)
	cancel()

	_, err = Start(context.Background(), config.MaintenanceConfig{Enabled: true, Cron: "not a cron"}, plainBackend{})
	assert.Error(t, err)
}
