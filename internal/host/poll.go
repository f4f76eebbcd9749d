package host

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
)

// Poll refreshes h on schedule until ctx is cancelled. Sources without change
// notification (the web API) rely on it to reach devices between resyncs.
func (h *Host) Poll(ctx context.Context, schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if err := h.Refresh(ctx); err != nil {
			h.log.Warn("scheduled refresh failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule refresh %q: %w", schedule, err)
	}
	c.Start()
	h.log.Info("polling source", "schedule", schedule)

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
