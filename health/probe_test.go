package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func ok(context.Context) error { return nil }

func failing(err error) CheckFunc {
	return func(context.Context) error { return err }
}

func TestProbeAllHealthy(t *testing.T) {
	p := NewProbe(time.Second, zerolog.Nop(),
		Check{Name: ComponentDB, Fn: ok},
		Check{Name: ComponentRedis, Fn: ok},
	)

	report := p.Check(context.Background())
	if !report.Healthy() {
		t.Fatalf("expected healthy report, got %+v", report)
	}
	if _, failed := report.FirstFailure(); failed {
		t.Fatal("expected no failure")
	}
	comps := report.Components()
	if len(comps) != 2 || comps[ComponentDB] != "ok" || comps[ComponentCache] != "ok" {
		t.Fatalf("unexpected components %v", comps)
	}
}

func TestReportComponentsNamesSessionStoreCache(t *testing.T) {
	p := NewProbe(time.Second, zerolog.Nop(),
		Check{Name: ComponentDB, Fn: ok},
		Check{Name: ComponentRedis, Fn: failing(errors.New("redis down"))},
		Check{Name: "queue", Fn: ok},
	)

	report := p.Check(context.Background())
	want := map[string]string{ComponentDB: "ok", ComponentCache: "fail", "queue": "ok"}
	got := report.Components()
	if len(got) != len(want) {
		t.Fatalf("Components() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("Components()[%q] = %q, want %q", k, got[k], v)
		}
	}
	if name, _ := report.FirstFailure(); name != ComponentRedis {
		t.Fatalf("FirstFailure() = %q, want %q", name, ComponentRedis)
	}
}

func TestProbeFirstFailureIsOrdered(t *testing.T) {
	p := NewProbe(time.Second, zerolog.Nop(),
		Check{Name: ComponentDB, Fn: failing(errors.New("db down"))},
		Check{Name: ComponentRedis, Fn: failing(errors.New("redis down"))},
	)

	report := p.Check(context.Background())
	name, failed := report.FirstFailure()
	if !failed || name != ComponentDB {
		t.Fatalf("expected db as first failure, got %q (%v)", name, failed)
	}
	if len(report.Results) != 2 || report.Results[1].OK() {
		t.Fatalf("expected both checks to run and fail, got %+v", report.Results)
	}
}

func TestProbeOnlyRedisDown(t *testing.T) {
	p := NewProbe(time.Second, zerolog.Nop(),
		Check{Name: ComponentDB, Fn: ok},
		Check{Name: ComponentRedis, Fn: failing(errors.New("redis down"))},
	)

	name, failed := p.Check(context.Background()).FirstFailure()
	if !failed || name != ComponentRedis {
		t.Fatalf("expected redis failure, got %q", name)
	}
}

func TestProbeTimeoutIsPerCheck(t *testing.T) {
	blocking := func(context.Context) error {
		time.Sleep(500 * time.Millisecond)
		return nil
	}
	p := NewProbe(20*time.Millisecond, zerolog.Nop(),
		Check{Name: ComponentDB, Fn: blocking},
		Check{Name: ComponentRedis, Fn: ok},
	)

	start := time.Now()
	report := p.Check(context.Background())
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Fatalf("probe waited for a hung check: %v", elapsed)
	}
	if !errors.Is(report.Results[0].Err, ErrTimeout) {
		t.Fatalf("expected timeout for db, got %v", report.Results[0].Err)
	}
	if !report.Results[1].OK() {
		t.Fatalf("redis check must get its own budget, got %v", report.Results[1].Err)
	}
}

func TestProbeRecoversFromPanic(t *testing.T) {
	p := NewProbe(time.Second, zerolog.Nop(),
		Check{Name: ComponentDB, Fn: func(context.Context) error { panic("boom") }},
		Check{Name: ComponentRedis, Fn: ok},
	)

	report := p.Check(context.Background())
	name, failed := report.FirstFailure()
	if !failed || name != ComponentDB {
		t.Fatalf("expected panicking check to fail, got %q", name)
	}
}

func TestRedisCheck(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()

	p := NewProbe(time.Second, zerolog.Nop(), RedisCheck(rdb))
	if !p.Check(context.Background()).Healthy() {
		t.Fatal("expected redis to be healthy")
	}

	mr.Close()
	if p.Check(context.Background()).Healthy() {
		t.Fatal("expected redis to be unhealthy after shutdown")
	}
}

func TestRunReportsUntilCancelled(t *testing.T) {
	var calls atomic.Int32
	p := NewProbe(time.Second, zerolog.Nop(), Check{Name: ComponentRedis, Fn: ok})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx, 5*time.Millisecond, func(Report) {
			if calls.Add(1) == 3 {
				cancel()
			}
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
	if calls.Load() < 3 {
		t.Fatalf("expected at least 3 reports, got %d", calls.Load())
	}
}
