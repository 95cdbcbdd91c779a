// Package expiry filters job postings down to the ones that have not expired.
//
// A posting declares a clock hash (a recent block), the time of that block and an expiration in
// days. The block time is checked against the oracles, so a posting cannot extend its life by
// claiming a later time than its block has.
package expiry

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rein-network/rein-node/internal/block"
)

// Posting fields used by the filter
const (
	FieldClockHash  = "Clock hash"
	FieldExpiration = "Expiration (days)"
	FieldTime       = "Time"
)

// DefaultExpirationDays applies when a posting's expiration is not a whole number of days.
const DefaultExpirationDays = 14

const secondsPerDay = 86400

// Candidate holds the parsed fields of a posting.
type Candidate map[string]string

// Resolver returns the time of a block hash.
type Resolver interface {
	ResolveBlock(ctx context.Context, hash string, sources []block.Source) (block.Block, error)
}

type Filter struct {
	resolver Resolver
	now      func() time.Time
	logger   *slog.Logger
}

type Option func(*Filter)

// WithClock sets the source of the current time (time.Now by default).
func WithClock(now func() time.Time) Option {
	return func(f *Filter) {
		f.now = now
	}
}

func NewFilter(resolver Resolver, logger *slog.Logger, opts ...Option) *Filter {
	f := &Filter{
		resolver: resolver,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FilterOutExpired returns the candidates that are live, in input order.
//
// A candidate is live when it declares a clock hash and an expiration, the clock hash resolves,
// its declared time equals the resolved block time, and block time + expiration is after now.
// Each distinct clock hash is resolved once.
func (f *Filter) FilterOutExpired(ctx context.Context, candidates []Candidate, sources []block.Source) []Candidate {
	times := make(map[string]int64)
	unresolved := make(map[string]bool)

	for _, c := range candidates {
		hash, ok := c[FieldClockHash]
		if !ok {
			continue
		}
		if _, ok := c[FieldExpiration]; !ok {
			continue
		}
		if _, done := times[hash]; done || unresolved[hash] {
			continue
		}

		b, err := f.resolver.ResolveBlock(ctx, hash, sources)
		if err != nil {
			f.logger.Info("clock hash not resolved",
				slog.String("hash", hash),
				slog.String("error", err.Error()),
			)
			unresolved[hash] = true
			continue
		}
		times[hash] = b.Time
	}

	now := f.now().Unix()
	live := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := c[FieldExpiration]; !ok {
			continue
		}
		blockTime, ok := times[c[FieldClockHash]]
		if !ok {
			continue
		}

		declared, err := strconv.ParseInt(strings.TrimSpace(c[FieldTime]), 10, 64)
		if err != nil || declared != blockTime {
			continue
		}

		if expirationSeconds(c[FieldExpiration]) > now-blockTime {
			live = append(live, c)
		}
	}

	f.logger.Debug("filtered expired postings",
		slog.Int("candidates", len(candidates)),
		slog.Int("live", len(live)),
	)
	return live
}

// expirationSeconds converts a declared expiration to seconds, saturating at the int64 range.
// An out of range number of days keeps its sign, so it never falls back to the default.
func expirationSeconds(days string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(days), 10, 64)
	switch {
	case errors.Is(err, strconv.ErrRange):
		// ParseInt returns the saturated value
	case err != nil:
		n = DefaultExpirationDays
	}
	return min(max(n, math.MinInt64/secondsPerDay), math.MaxInt64/secondsPerDay) * secondsPerDay
}
