// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"github.com/livethelifetv/props-protocol/props"
	"github.com/livethelifetv/props-protocol/reverts"
	"github.com/livethelifetv/props-protocol/storage"
)

// Clock derives the discrete reward day from elapsed time since the
// protocol start. Day numbering starts at 1; times before the start map to
// day 0. The start and day length are set once at genesis and immutable
// afterwards, since changing them would re-index every day in flight.
type Clock struct {
	start      *storage.Value[uint64]
	daySeconds *storage.Value[uint64]
}

// NewClock creates a clock in the given storage context.
func NewClock(ctx *storage.Context) *Clock {
	return &Clock{
		start:      storage.NewValue[uint64](ctx, "start-timestamp"),
		daySeconds: storage.NewValue[uint64](ctx, "day-seconds"),
	}
}

// Init sets the protocol start and day length. It fails when already set.
func (c *Clock) Init(start, daySeconds uint64) error {
	existing, err := c.start.Get()
	if err != nil {
		return err
	}
	if existing != 0 {
		return reverts.InvalidState("protocol clock already initialised")
	}
	if start == 0 {
		return reverts.InvalidState("protocol start timestamp must not be zero")
	}
	if err := c.start.Set(start); err != nil {
		return err
	}
	if daySeconds == 0 {
		daySeconds = props.DefaultDaySeconds
	}
	return c.daySeconds.Set(daySeconds)
}

// Start returns the protocol start timestamp.
func (c *Clock) Start() (uint64, error) {
	return c.start.Get()
}

// DaySeconds returns the length of a reward day.
func (c *Clock) DaySeconds() (uint64, error) {
	secs, err := c.daySeconds.Get()
	if err != nil {
		return 0, err
	}
	if secs == 0 {
		secs = props.DefaultDaySeconds
	}
	return secs, nil
}

// CurrentDay returns the reward day the given timestamp falls into.
func (c *Clock) CurrentDay(now uint64) (uint64, error) {
	start, err := c.start.Get()
	if err != nil {
		return 0, err
	}
	if start == 0 || now < start {
		return 0, nil
	}
	secs, err := c.DaySeconds()
	if err != nil {
		return 0, err
	}
	return (now-start)/secs + 1, nil
}
