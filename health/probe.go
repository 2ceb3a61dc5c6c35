package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Component names reported by the built-in checks. The HTTP endpoint names
// a failing check by these.
const (
	ComponentDB    = "db"
	ComponentRedis = "redis"
)

// ComponentCache is the [Report.Components] key for the session store check.
const ComponentCache = "cache"

// componentKeys renames checks whose summary key differs from the check name.
var componentKeys = map[string]string{
	ComponentRedis: ComponentCache,
}

// DefaultTimeout bounds each check when the probe is built with zero.
const DefaultTimeout = 2 * time.Second

// ErrTimeout is reported for a check that did not finish within its timeout.
var ErrTimeout = errors.New("health check timed out")

// CheckFunc reports a dependency as healthy by returning nil.
type CheckFunc func(ctx context.Context) error

// Check is a named dependency probe.
type Check struct {
	Name string
	Fn   CheckFunc
}

// Pinger is satisfied by database handles and stores with a context-aware Ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabaseCheck probes the credential database.
func DatabaseCheck(db Pinger) Check {
	return Check{Name: ComponentDB, Fn: db.Ping}
}

// RedisCheck probes the session store.
func RedisCheck(rdb redis.UniversalClient) Check {
	return Check{Name: ComponentRedis, Fn: func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}}
}

// Result is the outcome of one check.
type Result struct {
	Name    string
	Err     error
	Latency time.Duration
}

// OK reports whether the check passed.
func (r Result) OK() bool { return r.Err == nil }

// Report holds one result per check, in check order.
type Report struct {
	Results []Result
}

// Healthy reports whether every check passed.
func (r Report) Healthy() bool {
	for _, res := range r.Results {
		if !res.OK() {
			return false
		}
	}
	return true
}

// FirstFailure returns the name of the first failing check.
func (r Report) FirstFailure() (string, bool) {
	for _, res := range r.Results {
		if !res.OK() {
			return res.Name, true
		}
	}
	return "", false
}

// Components summarizes the report as {db: ok|fail, cache: ok|fail}.
// Checks other than the built-in ones keep their own name.
func (r Report) Components() map[string]string {
	out := make(map[string]string, len(r.Results))
	for _, res := range r.Results {
		key := res.Name
		if k, ok := componentKeys[key]; ok {
			key = k
		}
		if res.OK() {
			out[key] = "ok"
		} else {
			out[key] = "fail"
		}
	}
	return out
}

// Probe runs an ordered list of checks.
type Probe struct {
	checks  []Check
	timeout time.Duration
	logger  zerolog.Logger
}

// NewProbe returns a probe running checks in the given order.
func NewProbe(timeout time.Duration, logger zerolog.Logger, checks ...Check) *Probe {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Probe{
		checks:  checks,
		timeout: timeout,
		logger:  logger.With().Str("component", "health").Logger(),
	}
}

// Check runs every check sequentially and never panics.
func (p *Probe) Check(ctx context.Context) Report {
	report := Report{Results: make([]Result, 0, len(p.checks))}
	for _, c := range p.checks {
		report.Results = append(report.Results, p.run(ctx, c))
	}
	return report
}

func (p *Probe) run(ctx context.Context, c Check) Result {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("health check panicked: %v", r)
			}
		}()
		if c.Fn == nil {
			done <- errors.New("health check not configured")
			return
		}
		done <- c.Fn(ctx)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ErrTimeout
	}

	res := Result{Name: c.Name, Err: err, Latency: time.Since(start)}
	if err != nil {
		p.logger.Warn().Err(err).Str("check", c.Name).Dur("latency", res.Latency).Msg("health check failed")
	}
	return res
}

// Run checks every interval until ctx is cancelled, calling fn with each
// report and logging transitions between healthy and unhealthy.
func (p *Probe) Run(ctx context.Context, interval time.Duration, fn func(Report)) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	first := true
	var healthy bool
	for {
		report := p.Check(ctx)
		if first || report.Healthy() != healthy {
			healthy = report.Healthy()
			first = false
			if healthy {
				p.logger.Info().Msg("dependencies healthy")
			} else {
				failed, _ := report.FirstFailure()
				p.logger.Error().Str("failed", failed).Msg("dependencies unhealthy")
			}
		}
		if fn != nil {
			fn(report)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
