package syncer

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusReflectsPendingCount(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	reporter := NewStatusReporter(f.queue, f.drainer)

	st, err := reporter.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, Status{PendingCount: 0, Syncing: false}, st)

	f.enqueue(t, "a", nil)
	f.enqueue(t, "b", nil)

	st, err = reporter.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.PendingCount)

	_, err = f.drainer.DrainOnce(ctx)
	require.NoError(t, err)

	st, err = reporter.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, Status{PendingCount: 0, Syncing: false}, st)
}

func TestStatusSyncingWhileDrainInFlight(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.enqueue(t, "a", nil)

	reporter := NewStatusReporter(f.queue, f.drainer)

	var once sync.Once
	started := make(chan struct{})
	release := make(chan struct{})
	f.objects.PutErr = func(key string) error {
		once.Do(func() { close(started) })
		<-release
		return nil
	}

	done := make(chan struct{})
	go func() {
		_, _ = f.drainer.DrainOnce(ctx)
		close(done)
	}()

	<-started
	st, err := reporter.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Syncing)
	assert.Equal(t, 1, st.PendingCount, "entry still pending while its upload is in flight")

	close(release)
	<-done

	st, err = reporter.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.Syncing)
	assert.Equal(t, 0, st.PendingCount)
}
