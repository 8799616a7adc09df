package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/classkeeper/internal/client/syncer"
)

// Sync drains the offline queue immediately instead of waiting for the
// connectivity watcher.
func (a *App) Sync(ctx context.Context) error {
	res, err := a.drainer.DrainOnce(ctx)
	if err != nil {
		if errors.Is(err, syncer.ErrAlreadyRunning) {
			printlnFn("A sync is already in progress.")
			return nil
		}
		printlnFn("Sync failed:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Synced %d, dropped %d, remaining %d", res.Synced, res.Dropped, res.Remaining))
	return nil
}

// Status reports the pending queue depth and whether a drain is running.
func (a *App) Status(ctx context.Context) error {
	st, err := a.reporter.Status(ctx)
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	state := "idle"
	if st.Syncing {
		state = "syncing"
	}
	printlnFn(fmt.Sprintf("Pending: %d (%s)", st.PendingCount, state))
	return nil
}
