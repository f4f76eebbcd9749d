// Package resync asks the host for a fresh snapshot on a fixed schedule.
// Every snapshot that arrives restarts the countdown.
package resync

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/five82/togetter/internal/clock"
)

// DefaultSchedule is the resync cadence when none is configured.
const DefaultSchedule = "@every 15s"

const minDelay = time.Second

// ParseSchedule accepts a Go duration ("15s"), a cron descriptor
// ("@every 15s") or a standard five-field cron expression.
func ParseSchedule(spec string) (cron.Schedule, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		spec = DefaultSchedule
	}
	if d, err := time.ParseDuration(spec); err == nil {
		if d < minDelay {
			return nil, fmt.Errorf("resync interval %v is below %v", d, minDelay)
		}
		return cron.Every(d), nil
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse resync schedule %q: %w", spec, err)
	}
	return schedule, nil
}

// Driver calls fire each time the schedule comes due. It is a one-shot timer
// re-armed after every firing, so Reset simply re-arms early.
type Driver struct {
	clock    clock.Clock
	schedule cron.Schedule
	fire     func()

	mu      sync.Mutex
	timer   *clock.Timer
	running bool
	gen     uint64
}

// New returns a stopped driver. fire runs on the clock's goroutine.
func New(c clock.Clock, schedule cron.Schedule, fire func()) *Driver {
	if c == nil {
		c = clock.Real()
	}
	return &Driver{clock: c, schedule: schedule, fire: fire}
}

// Start arms the first timer. Calling Start on a running driver does nothing.
func (d *Driver) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	d.running = true
	d.armLocked()
}

// Reset restarts the countdown from now.
func (d *Driver) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return
	}
	d.armLocked()
}

// Stop stops re-arming. A firing already in progress may still complete.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = false
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Driver) armLocked() {
	if d.timer != nil {
		d.timer.Stop()
	}
	now := d.clock.Now()
	delay := d.schedule.Next(now).Sub(now)
	if delay < minDelay {
		delay = minDelay
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(delay, func() { d.expire(gen) })
}

func (d *Driver) expire(gen uint64) {
	d.mu.Lock()
	if !d.running || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.armLocked()
	d.mu.Unlock()

	d.fire()
}
