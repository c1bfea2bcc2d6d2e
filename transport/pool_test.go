package transport

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPool(t *testing.T) {
	t.Run("runs every task", func(t *testing.T) {
		pool := NewPool(4, 16)
		var counter atomic.Int64

		for range 1000 {
			require.NoError(t, pool.Submit(func() {
				counter.Add(1)
			}))
		}

		pool.Close()
		pool.Wait()
		require.Equal(t, int64(1000), counter.Load())
	})

	t.Run("bounded concurrency", func(t *testing.T) {
		const workers = 3
		pool := NewPool(workers, 64)

		var (
			active, peak atomic.Int64
			mu           sync.Mutex
		)

		for range 50 {
			require.NoError(t, pool.Submit(func() {
				n := active.Add(1)
				mu.Lock()
				if n > peak.Load() {
					peak.Store(n)
				}
				mu.Unlock()
				time.Sleep(time.Millisecond)
				active.Add(-1)
			}))
		}

		pool.Close()
		pool.Wait()
		require.LessOrEqual(t, peak.Load(), int64(workers))
		require.Positive(t, peak.Load())
	})

	t.Run("submit blocks while the queue is full", func(t *testing.T) {
		pool := NewPool(1, 1)
		release := make(chan struct{})
		started := make(chan struct{})

		require.NoError(t, pool.Submit(func() {
			close(started)
			<-release
		}))
		<-started
		// the only worker is busy, so this one occupies the only queue seat
		require.NoError(t, pool.Submit(func() {}))
		require.Equal(t, 1, pool.Pending())

		submitted := make(chan error)
		go func() {
			submitted <- pool.Submit(func() {})
		}()

		select {
		case <-submitted:
			require.Fail(t, "submit must block on a full queue")
		case <-time.After(20 * time.Millisecond):
		}

		close(release)
		require.NoError(t, <-submitted)
		pool.Close()
		pool.Wait()
	})

	t.Run("closed pool", func(t *testing.T) {
		pool := NewPool(1, 1)
		pool.Close()
		require.ErrorIs(t, pool.Submit(func() {}), ErrPoolClosed)
		pool.Wait()
	})
}
