package internaldefs

import (
	"github.com/MrEthical07/sharedauth"
)

// CounterDef maps a service counter to an exported series.
type CounterDef struct {
	ID   sharedauth.MetricID
	Name string
	Help string
}

// HistogramDef maps a service histogram to an exported series.
type HistogramDef struct {
	ID   sharedauth.MetricID
	Name string
	Help string
}

// AuditDroppedName is the series for events lost to a full audit queue.
const (
	AuditDroppedName = "sharedauth_audit_dropped_total"
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

// CounterDefs lists every exported counter in output order.
var CounterDefs = []CounterDef{
	{ID: sharedauth.MetricSignupSuccess, Name: "sharedauth_signup_success_total", Help: "Accounts created."},
	{ID: sharedauth.MetricSignupDuplicate, Name: "sharedauth_signup_duplicate_total", Help: "Signups rejected because the email is registered."},
	{ID: sharedauth.MetricSignupInvalid, Name: "sharedauth_signup_invalid_total", Help: "Signups rejected by validation or password policy."},
	{ID: sharedauth.MetricLoginSuccess, Name: "sharedauth_login_success_total", Help: "Logins that produced a saved session."},
	{ID: sharedauth.MetricLoginFailure, Name: "sharedauth_login_failure_total", Help: "Logins rejected for bad credentials."},
	{ID: sharedauth.MetricLoginRateLimited, Name: "sharedauth_login_rate_limited_total", Help: "Logins refused by the failed-attempt throttle."},
	{ID: sharedauth.MetricSessionCreated, Name: "sharedauth_session_created_total", Help: "Sessions written for the first time."},
	{ID: sharedauth.MetricSessionSaveFailure, Name: "sharedauth_session_store_failure_total", Help: "Session writes or deletes rejected by the store."},
	{ID: sharedauth.MetricLogout, Name: "sharedauth_logout_total", Help: "Destroyed sessions."},
	{ID: sharedauth.MetricPersistenceFailure, Name: "sharedauth_credential_store_failure_total", Help: "Credential store failures."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: sharedauth.MetricLoginLatency, Name: "sharedauth_login_latency_seconds", Help: "Login latency histogram."},
}

// HistogramBounds are the upper bounds, in seconds, of the service buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix renders HistogramBounds as metric-name safe suffixes.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to the fixed bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into "less than or equal" counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
