// Package gateway is the action engine: it validates and auto-fixes tool
// calls, sanitizes intents against per-action allow-lists, serves cached
// results, orchestrates upstream queries, and shapes every outcome into a
// tagged Output record.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/treinwijzer/treinwijzer/internal/cache"
	"github.com/treinwijzer/treinwijzer/internal/intent"
	"github.com/treinwijzer/treinwijzer/internal/provider"
	"github.com/treinwijzer/treinwijzer/internal/provider/ns"
	"github.com/treinwijzer/treinwijzer/internal/telemetry"
	"github.com/treinwijzer/treinwijzer/internal/timeparse"
)

const (
	// DefaultTTLCeiling bounds how long any result may be served from cache.
	DefaultTTLCeiling = 5 * time.Minute

	// disambiguationTTL is fixed: candidate sets go stale with the user's
	// attention, not with upstream freshness hints.
	disambiguationTTL = 30 * time.Second
)

// Config holds the dispatcher's collaborators.
type Config struct {
	Client provider.Client
	Store  cache.Store
	Logger zerolog.Logger

	// Metrics records per-call and per-fetch instruments; nil disables.
	Metrics *telemetry.QueryMetrics

	// TTLCeiling caps cache TTLs; zero means DefaultTTLCeiling.
	TTLCeiling time.Duration

	// SubscriptionKeyEnv names the env var that must hold the upstream
	// credential; empty means the provider default.
	SubscriptionKeyEnv string

	// Now is replaceable in tests.
	Now func() time.Time
}

// Dispatcher executes gateway actions. It is safe for concurrent use.
type Dispatcher struct {
	client     provider.Client
	store      cache.Store
	logger     zerolog.Logger
	metrics    *telemetry.QueryMetrics
	tracer     trace.Tracer
	ttlCeiling time.Duration
	keyEnv     string
	now        func() time.Time
}

// New creates a Dispatcher from cfg, filling in defaults.
func New(cfg Config) *Dispatcher {
	ceiling := cfg.TTLCeiling
	if ceiling <= 0 {
		ceiling = DefaultTTLCeiling
	}
	keyEnv := cfg.SubscriptionKeyEnv
	if keyEnv == "" {
		keyEnv = ns.DefaultAPIKeyEnv
	}
	store := cfg.Store
	if store == nil {
		store = cache.NewMemoryStore()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{
		client:     cfg.Client,
		store:      store,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		tracer:     otel.Tracer("gateway"),
		ttlCeiling: ceiling,
		keyEnv:     keyEnv,
		now:        now,
	}
}

// call carries the per-call state threaded through a handler.
type call struct {
	action  Action
	args    callArgs
	in      *intent.Intent
	dropped []intent.Key
	ranks   []intent.SoftRank
	now     time.Time

	// hints collects upstream freshness hints (seconds) across fetches.
	hints []int
}

func (c *call) hard() *intent.Hard {
	if c.in == nil {
		return nil
	}
	return c.in.Hard
}

func (c *call) soft() []intent.SoftRank {
	if c.in == nil {
		return nil
	}
	return c.in.Soft
}

// timeResolver anchors date-bound tokens to the call's start instant.
func (c *call) timeResolver() intent.TimeResolver {
	return func(token string) (time.Time, bool) {
		return timeparse.Resolve(token, c.now)
	}
}

func (c *call) meta(applied []intent.Key, ranks, ignored []intent.SoftRank, before, after int) *intent.Meta {
	return &intent.Meta{
		AppliedHard:  applied,
		DroppedHard:  c.dropped,
		AppliedRanks: ranks,
		IgnoredRanks: ignored,
		Before:       before,
		After:        after,
	}
}

// droppedMeta reports stripped no-op constraints on actions that otherwise
// produce no metadata.
func (c *call) droppedMeta(count int) *intent.Meta {
	if len(c.dropped) == 0 {
		return nil
	}
	return &intent.Meta{DroppedHard: c.dropped, Before: count, After: count}
}

// Dispatch executes one tool call end to end. It never returns an error:
// every failure is an Output with Kind "error".
func (d *Dispatcher) Dispatch(ctx context.Context, actionName string, rawArgs map[string]any) *Output {
	started := d.now()

	ctx, span := d.tracer.Start(ctx, "gateway.dispatch",
		trace.WithAttributes(attribute.String("gateway.action", actionName)))
	defer span.End()

	action := Action(actionName)
	if _, known := actionTable[action]; !known {
		out := d.errorOutput(action, invalidInput(
			"unknown action "+quote(actionName),
			map[string]any{"actions": Actions()},
		))
		d.log(ctx, out, nil, started)
		return out
	}

	if rawArgs == nil {
		rawArgs = map[string]any{}
	}
	action, raw, fixes, autoDropped := autofix(action, rawArgs)
	sp := actionTable[action]

	args, ferrs := sp.decode(wireArgs(raw))
	if len(ferrs) > 0 {
		out := d.errorOutput(action, invalidFields(ferrs))
		d.log(ctx, out, fixes, started)
		return out
	}

	sanitized, dropped, err := intent.Sanitize(args.intentRef(), sp.allowedHard)
	if err != nil {
		var unsupported *intent.UnsupportedError
		var ce *CallError
		if errors.As(err, &unsupported) {
			ce = unsupportedConstraints(unsupported)
		} else {
			ce = invalidInput(err.Error(), nil)
		}
		out := d.errorOutput(action, ce)
		d.log(ctx, out, fixes, started)
		return out
	}
	args.setIntent(sanitized)
	if len(autoDropped) > 0 {
		dropped = append(autoDropped, dropped...)
	}

	key, keyErr := cache.Key(string(action), args)
	if keyErr != nil {
		// Uncacheable arguments are a programming error; serve live.
		d.logger.Error().Err(keyErr).Str("action", string(action)).Msg("cache key construction failed")
		key = ""
	}

	if key != "" {
		if stored, ok := d.store.Get(key); ok {
			var cached Output
			if json.Unmarshal(stored, &cached) == nil {
				cached.Cached = true
				d.log(ctx, &cached, fixes, started)
				return &cached
			}
		}
	}

	if os.Getenv(d.keyEnv) == "" {
		out := d.errorOutput(action, &CallError{
			Code:    ErrConfig,
			Message: "upstream subscription key is not configured",
			Details: map[string]any{"env": d.keyEnv},
		})
		d.log(ctx, out, fixes, started)
		return out
	}

	c := &call{
		action:  action,
		args:    args,
		in:      sanitized,
		dropped: dropped,
		ranks:   sp.supportedRanks,
		now:     started,
	}
	out := sp.handle(d, ctx, c)

	if out.Kind != KindError && key != "" {
		ttl := cache.ClampTTL(c.hints, d.ttlCeiling)
		if out.Kind == KindDisambiguation {
			ttl = disambiguationTTL
		}
		if encoded, err := json.Marshal(out); err == nil {
			d.store.Set(key, encoded, ttl)
		}
	}

	d.log(ctx, out, fixes, started)
	return out
}

func (d *Dispatcher) log(ctx context.Context, out *Output, fixes []string, started time.Time) {
	duration := d.now().Sub(started)

	errorCode := ""
	if out.Error != nil {
		errorCode = string(out.Error.Code)
	}
	d.metrics.RecordCall(ctx, string(out.Action), string(out.Kind), errorCode, out.Cached, duration)

	evt := d.logger.Info()
	if out.Kind == KindError {
		evt = d.logger.Warn()
	}
	evt = evt.
		Str("action", string(out.Action)).
		Str("kind", string(out.Kind)).
		Bool("cached", out.Cached).
		Dur("duration", duration)
	if len(fixes) > 0 {
		evt = evt.Strs("autofixes", fixes)
	}
	if out.Error != nil {
		evt = evt.Str("error_code", string(out.Error.Code))
	}
	if out.Meta != nil {
		evt = evt.
			Int("results_before", out.Meta.Before).
			Int("results_after", out.Meta.After)
	}
	evt.Msg("gateway call")
}
