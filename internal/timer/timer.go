package timer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Resolution is the frequency at which the time is refreshed. It's precise enough for I/O
// deadlines and the Date header, which has the precision of a second anyway.
const Resolution = 500 * time.Millisecond

var (
	millis atomic.Int64
	once   sync.Once
)

// Now returns the cached current time. The refreshing goroutine is started on the first call.
func Now() time.Time {
	once.Do(start)

	ms := millis.Load()
	return time.Unix(ms/1000, (ms%1000)*1e6)
}

func start() {
	millis.Store(time.Now().UnixMilli())

	go func() {
		for {
			time.Sleep(Resolution)
			millis.Store(time.Now().UnixMilli())
		}
	}()
}
