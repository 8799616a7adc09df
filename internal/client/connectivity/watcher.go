package connectivity

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/classkeeper/internal/logging"
	"github.com/sethvargo/go-retry"
)

const probeTimeout = 3 * time.Second

// Watcher periodically probes a network endpoint and feeds the result into a
// Monitor. It is a safety-net poll, not a correctness requirement: the
// monitor state machine does the deduplication.
type Watcher struct {
	monitor  *Monitor
	probe    func(ctx context.Context) error
	interval time.Duration
	logger   logging.Logger
}

func NewWatcher(m *Monitor, probe func(ctx context.Context) error, interval time.Duration, logger logging.Logger) *Watcher {
	return &Watcher{
		monitor:  m,
		probe:    probe,
		interval: interval,
		logger:   logger.With("module", "connectivity_watcher"),
	}
}

// Run probes on a ticker until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
			err := w.check(probeCtx)
			cancel()

			if err != nil && ctx.Err() == nil {
				w.logger.Debug(ctx, "probe failed", "error", err.Error())
			}
			w.monitor.Set(err == nil)

		case <-ctx.Done():
			return
		}
	}
}

// check retries the probe a couple of times before concluding the device is
// offline, so one dropped packet does not flap the state.
func (w *Watcher) check(ctx context.Context) error {
	backoff := retry.WithMaxRetries(2, retry.NewConstant(500*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := w.probe(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// DialProbe returns a probe that checks TCP reachability of addr.
func DialProbe(addr string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return err
		}
		return conn.Close()
	}
}
