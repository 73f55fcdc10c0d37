package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Poll revalidates the query every interval until stop is called or ctx is
// done. Intervals are rounded down to whole seconds with a one second
// minimum. A tick is skipped while the previous one is still running.
func (q *Query[T]) Poll(ctx context.Context, interval time.Duration) (stop func()) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(cron.Every(interval), cron.FuncJob(func() {
		if ctx.Err() != nil {
			return
		}
		q.Revalidate(ctx)
	}))
	c.Start()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		<-c.Stop().Done()
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-c.Stop().Done()
		})
	}
}
