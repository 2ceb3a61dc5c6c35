package sharedauth

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

func (s *countingSink) Count() int64 {
	return s.count.Load()
}

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{
		gate: make(chan struct{}),
	}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

func nextEvent(t *testing.T, sink *ChannelSink) AuditEvent {
	t.Helper()

	select {
	case e := <-sink.Events():
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audit event")
	}
	return AuditEvent{}
}

func TestAuditDisabledNoSinkCalls(t *testing.T) {
	sink := &countingSink{}
	svc, _, _, done := newTestServiceWithSink(t, nil, sink)
	defer done()

	signup(t, svc, "Ana", "ana@x.com", "p@ss1234")
	_, _, _ = svc.Login(context.Background(), LoginRequest{Email: "ana@x.com", Password: "wrong-pass"}, resolve(svc, nil))
	time.Sleep(30 * time.Millisecond)

	if sink.Count() != 0 {
		t.Fatalf("expected no audit sink calls when disabled, got %d", sink.Count())
	}
}

func TestAuditLoginEvents(t *testing.T) {
	sink := NewChannelSink(16)
	svc, _, _, done := newTestServiceWithSink(t, func(cfg *Config) {
		cfg.Audit.Enabled = true
	}, sink)
	defer done()

	u := signup(t, svc, "Ana", "ana@x.com", "p@ss1234")
	signupEvent := nextEvent(t, sink)
	if signupEvent.EventType != AuditSignupSuccess || signupEvent.UserID != u.ID || !signupEvent.Success {
		t.Fatalf("unexpected signup event %+v", signupEvent)
	}
	if _, err := uuid.Parse(signupEvent.ID); err != nil {
		t.Fatalf("expected uuid event id, got %q", signupEvent.ID)
	}

	ctx := WithRequestID(WithUserAgent(WithClientIP(context.Background(), "203.0.113.7"), "test-agent"), "req-1")
	_, _, _ = svc.Login(ctx, LoginRequest{Email: "ana@x.com", Password: "wrong-pass"}, resolve(svc, nil))

	failure := nextEvent(t, sink)
	if failure.EventType != AuditLoginFailure || failure.Success {
		t.Fatalf("unexpected failure event %+v", failure)
	}
	if failure.IP != "203.0.113.7" || failure.UserAgent != "test-agent" || failure.RequestID != "req-1" {
		t.Fatalf("request context missing from event %+v", failure)
	}
	if failure.Metadata["reason"] != "password_mismatch" {
		t.Fatalf("expected password_mismatch reason, got %v", failure.Metadata)
	}

	if _, _, err := svc.Login(ctx, LoginRequest{Email: "ana@x.com", Password: "p@ss1234"}, resolve(svc, nil)); err != nil {
		t.Fatalf("login: %v", err)
	}
	success := nextEvent(t, sink)
	if success.EventType != AuditLoginSuccess || success.UserID != u.ID {
		t.Fatalf("unexpected success event %+v", success)
	}
}

func TestAuditDropIfFullCountsDrops(t *testing.T) {
	sink := newGateSink()
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// The first event is taken by the worker and blocks in the sink; the
	// second fills the buffer; the rest are dropped.
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: AuditLoginFailure})
		time.Sleep(time.Millisecond)
	}

	if d.Dropped() == 0 {
		t.Fatal("expected dropped events with a full buffer")
	}

	close(sink.gate)
	d.Close()
}

func TestAuditCloseDrainsQueue(t *testing.T) {
	sink := &countingSink{}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 64, DropIfFull: false}, sink)

	for i := 0; i < 20; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: AuditLogout})
	}
	d.Close()

	if sink.Count() != 20 {
		t.Fatalf("expected 20 events delivered, got %d", sink.Count())
	}

	d.Emit(context.Background(), AuditEvent{EventType: AuditLogout})
	if sink.Count() != 20 {
		t.Fatal("expected emit after close to be ignored")
	}
}

func TestJSONWriterSinkWritesLines(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{ID: "a", EventType: AuditLogout, Success: true})
	sink.Emit(context.Background(), AuditEvent{ID: "b", EventType: AuditLoginFailure})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var e AuditEvent
	if err := json.Unmarshal([]byte(lines[1]), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.ID != "b" || e.EventType != AuditLoginFailure {
		t.Fatalf("unexpected event %+v", e)
	}
}
