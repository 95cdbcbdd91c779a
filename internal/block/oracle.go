package block

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrUnresolved is returned when no oracle gave a usable answer for a block hash.
var ErrUnresolved = errors.New("block could not be resolved")

// Resolution selects how oracle answers are combined.
type Resolution string

const (
	// ResolutionPlurality stores the time most oracles agree on among the answers for the
	// requested hash
	ResolutionPlurality Resolution = "plurality"

	// ResolutionFirst stores the first successful answer in registry order
	ResolutionFirst Resolution = "first"
)

// ParseResolution returns the Resolution named by s.
func ParseResolution(s string) (Resolution, error) {
	switch r := Resolution(s); r {
	case ResolutionPlurality, ResolutionFirst:
		return r, nil
	default:
		return "", fmt.Errorf("unknown oracle resolution %q", s)
	}
}

// ChooseBestBlock returns the response carrying the hash that occurs most often in responses.
// Ties go to the hash seen first. When several responses carry the winning hash the last one is
// returned. It returns false if there are no responses.
//
// This is the hash-level vote. With ResolutionPlurality the requested hash must win it, and the
// stored time then comes from a second vote on (time, height) among the answers for that hash.
func ChooseBestBlock(responses []Response) (Response, bool) {
	return plurality(responses, func(r Response) string { return r.Hash })
}

// plurality returns the last response carrying the most frequent key, ties going to the key
// seen first.
func plurality(responses []Response, key func(Response) string) (Response, bool) {
	if len(responses) == 0 {
		return Response{}, false
	}

	counts := make(map[string]int)
	var order []string
	for _, r := range responses {
		k := key(r)
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}

	best := order[0]
	for _, k := range order[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}

	var ret Response
	for _, r := range responses {
		if key(r) == best {
			ret = r
		}
	}
	return ret, true
}

// OracleConfig configures an Oracle.
type OracleConfig struct {
	// Owner is the master address sent with queries
	Owner string

	// Workers bounds the number of concurrent oracle queries per resolution
	Workers int

	// QueryTimeout is the timeout of a single oracle query. A shared resolution gets one
	// QueryTimeout per round of Workers queries. Zero means no deadline beyond the querier's own.
	QueryTimeout time.Duration

	Resolution Resolution
}

// Oracle resolves block hashes against oracle servers and caches the results.
type Oracle struct {
	cache   *Cache
	querier Querier
	config  OracleConfig
	logger  *slog.Logger

	// one resolution per hash at a time
	inflight singleflight.Group
}

func NewOracle(cache *Cache, querier Querier, config OracleConfig, logger *slog.Logger) (*Oracle, error) {
	if config.Workers < 1 {
		return nil, fmt.Errorf("oracle workers must be at least 1, got %d", config.Workers)
	}
	if _, err := ParseResolution(string(config.Resolution)); err != nil {
		return nil, err
	}
	return &Oracle{
		cache:   cache,
		querier: querier,
		config:  config,
		logger:  logger,
	}, nil
}

// GetTime returns the cached block for hash. It returns false if the hash has not been resolved.
func (o *Oracle) GetTime(ctx context.Context, hash string) (Block, bool, error) {
	return o.cache.Get(ctx, hash)
}

// ResolveBlock returns the block for hash, asking every source if it is not cached.
//
// Sources that fail are logged and skipped. ErrUnresolved is returned when no source gave a
// usable answer. A resolved block is cached; if another resolution stored the hash first, the
// stored block is returned. If ctx is done before the resolution finishes, ctx.Err() is returned
// and the resolution carries on for the other callers.
func (o *Oracle) ResolveBlock(ctx context.Context, hash string, sources []Source) (Block, error) {
	if b, ok, err := o.cache.Get(ctx, hash); err != nil {
		return Block{}, err
	} else if ok {
		return b, nil
	}

	// Callers waiting on the same hash share one resolution, which does not inherit the
	// cancellation of the caller that started it.
	ch := o.inflight.DoChan(hash, func() (any, error) {
		rctx, cancel := o.resolutionContext(ctx, len(sources))
		defer cancel()

		// a resolution that finished while this one was waiting
		if b, ok, err := o.cache.Get(rctx, hash); err != nil {
			return Block{}, err
		} else if ok {
			return b, nil
		}
		return o.resolve(rctx, hash, sources)
	})

	select {
	case <-ctx.Done():
		return Block{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Block{}, res.Err
		}
		return res.Val.(Block), nil
	}
}

func (o *Oracle) resolutionContext(ctx context.Context, sources int) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if o.config.QueryTimeout <= 0 {
		return context.WithCancel(detached)
	}
	rounds := max((sources+o.config.Workers-1)/o.config.Workers, 1)
	return context.WithTimeout(detached, time.Duration(rounds)*o.config.QueryTimeout)
}

func (o *Oracle) resolve(ctx context.Context, hash string, sources []Source) (Block, error) {
	answers := o.queryAll(ctx, hash, sources)

	var (
		best Response
		ok   bool
	)
	switch o.config.Resolution {
	case ResolutionFirst:
		if len(answers) > 0 {
			best, ok = answers[0], true
		}
	default:
		if voted, found := ChooseBestBlock(answers); found && voted.Hash != hash {
			o.logger.Warn("most oracles answered for another block",
				slog.String("hash", hash),
				slog.String("answered_hash", voted.Hash),
			)
			return Block{}, fmt.Errorf("%w: %s (oracles voted for %s)", ErrUnresolved, hash, voted.Hash)
		}

		var matching []Response
		for _, a := range answers {
			if a.Hash == hash {
				matching = append(matching, a)
			} else {
				o.logger.Warn("oracle answered for another block",
					slog.String("hash", hash),
					slog.String("answered_hash", a.Hash),
				)
			}
		}
		best, ok = plurality(matching, func(r Response) string {
			return strconv.FormatInt(r.Time, 10) + "/" + strconv.FormatInt(r.Height, 10)
		})
	}
	if !ok {
		return Block{}, fmt.Errorf("%w: %s (%d sources, %d answers)", ErrUnresolved, hash, len(sources), len(answers))
	}

	stored, err := o.cache.PutIfAbsent(ctx, Block{Hash: hash, Time: best.Time, Height: best.Height})
	if err != nil {
		return Block{}, err
	}

	o.logger.Info("block resolved",
		slog.String("hash", hash),
		slog.Int64("time", stored.Time),
		slog.Int64("height", stored.Height),
		slog.Int("answers", len(answers)),
	)
	return stored, nil
}

// queryAll asks every source about hash and returns the successful answers in source order.
func (o *Oracle) queryAll(ctx context.Context, hash string, sources []Source) []Response {
	results := make([]*Response, len(sources))

	var g errgroup.Group
	g.SetLimit(o.config.Workers)
	for i, source := range sources {
		g.Go(func() error {
			r, err := o.querier.Query(ctx, source, o.config.Owner, hash)
			if err != nil {
				// an unreachable oracle is skipped
				o.logger.Warn("oracle query failed",
					slog.String("oracle", source.Name),
					slog.String("hash", hash),
					slog.String("error", err.Error()),
				)
				return nil
			}
			results[i] = &r
			return nil
		})
	}
	_ = g.Wait()

	answers := make([]Response, 0, len(sources))
	for _, r := range results {
		if r != nil {
			answers = append(answers, *r)
		}
	}
	return answers
}
