package client

import (
	"context"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// listPattern extracts the player names from the tail of a "list"
// response, e.g. "There are 2 of a max of 20 players online: alice, bob".
var listPattern = regexp.MustCompile(`online: (.*)`)

// ParsePlayerList extracts player names from a "list" command response.
// A response without the online marker yields an empty list.
func ParsePlayerList(response string) []string {
	match := listPattern.FindStringSubmatch(response)
	if match == nil {
		return nil
	}

	var players []string
	for _, name := range strings.Split(match[1], ",") {
		if name = strings.TrimSpace(name); name != "" {
			players = append(players, name)
		}
	}
	return players
}

// Poller issues a periodic "list" command through the shared Manager
// entry point, so timed polls and operator-triggered commands serialize
// on the same lock. It reports the online player set to a callback, and
// only when membership actually changes.
type Poller struct {
	manager  *Manager
	interval time.Duration
	onChange func([]string)
	logger   zerolog.Logger

	last []string
}

// NewPoller creates a Poller. The callback is invoked from the polling
// goroutine; it must not call back into the Poller.
func NewPoller(manager *Manager, interval time.Duration, onChange func([]string), logger zerolog.Logger) *Poller {
	return &Poller{
		manager:  manager,
		interval: interval,
		onChange: onChange,
		logger:   logger.With().Str("component", "poller").Logger(),
	}
}

// Run polls until the context is cancelled. The first poll happens
// immediately. Failures are logged and reported on the next tick via the
// Manager's state; the Poller itself never reconnects, that decision
// stays with the operator.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Debug().Msg("poller stopped")
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	out, err := p.manager.Run(ctx, "list")
	if err != nil {
		p.logger.Debug().Err(err).Msg("player poll failed")
		return
	}

	players := ParsePlayerList(out)
	if slices.Equal(players, p.last) {
		return
	}
	p.last = players

	p.logger.Debug().Strs("players", players).Msg("player list changed")
	if p.onChange != nil {
		p.onChange(players)
	}
}
