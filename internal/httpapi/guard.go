package httpapi

import (
	"context"
	"errors"
	"time"

	"callcenter-relance/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// ErrDuplicateSubmit is returned when an agent already has a save in
// flight. Handlers translate it to 429.
var ErrDuplicateSubmit = errors.New("httpapi: duplicate submit")

// SubmitGuard serializes saves per agent through Redis so a double
// click cannot record the same action twice. A nil client disables the
// guard (single-instance dev setups).
type SubmitGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSubmitGuard(rdb *redis.Client, ttl time.Duration) *SubmitGuard {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &SubmitGuard{rdb: rdb, ttl: ttl}
}

// Do runs fn while holding the agent's guard. The guard is released
// afterwards; the TTL covers crashes between acquire and release.
func (g *SubmitGuard) Do(ctx context.Context, agent string, fn func() error) error {
	if g == nil || g.rdb == nil || agent == "" {
		return fn()
	}
	ok, err := utils.AcquireSubmitGuard(ctx, g.rdb, agent, g.ttl)
	if err != nil {
		// Redis being down must not take the desk down with it.
		return fn()
	}
	if !ok {
		return ErrDuplicateSubmit
	}
	defer func() { _ = utils.ReleaseSubmitGuard(ctx, g.rdb, agent) }()
	return fn()
}
