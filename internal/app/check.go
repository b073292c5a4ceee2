package app

import (
	"context"
	"time"
)

// Check runs a single polling cycle and exits. Useful for cron-style
// deployments and for verifying configuration end to end.
func (a *App) Check(ctx context.Context) error {
	svc, closeStore, err := a.buildService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeStore()

	return svc.Cycle(ctx, time.Now().UTC())
}
