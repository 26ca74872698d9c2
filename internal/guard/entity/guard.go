package entity

import (
	"strings"
	"time"
)

// Account is one Steam account an owner serves codes for. Limit and
// PeriodHours are nil for "no cap" and "cap never resets" respectively.
type Account struct {
	ID          int64
	OwnerID     string
	Name        string
	Trigger     string // stored as typed; normalized at match time
	Secret      string
	Limit       *int64
	PeriodHours *int64
	Position    int32
}

// MaskedSecret renders the shared secret for display. Short secrets are
// fully hidden, longer ones keep the first and last four characters.
func (a Account) MaskedSecret() string {
	t := strings.TrimSpace(a.Secret)
	if t == "" {
		return "—"
	}
	if len(t) <= 10 {
		return "********"
	}
	return t[:4] + "…" + t[len(t)-4:]
}

// UsageRecord tracks how many codes one buyer consumed for one trigger.
// ResetTime is nil for lifetime caps.
type UsageRecord struct {
	OwnerID   string
	BuyerID   string
	Trigger   string
	Count     int64
	ResetTime *int64 // unix seconds
}

// LogEntry is one line in an owner's activity log.
type LogEntry struct {
	ID      int64
	OwnerID string
	TS      int64
	Kind    LogKind
	Name    string
	Trigger string
	BuyerID string
	Msg     string
}

// Settings is the global bot configuration.
type Settings struct {
	Template string
	MaxLogs  int32
}

// EffectiveMaxLogs applies the default and the hard floor of the log
// retention setting.
func (s Settings) EffectiveMaxLogs() int32 {
	maxLogs := s.MaxLogs
	if maxLogs == 0 {
		maxLogs = DefaultMaxLogs
	}
	if maxLogs < MinMaxLogs {
		maxLogs = MinMaxLogs
	}
	return maxLogs
}

const (
	// DefaultMaxLogs is the per-owner log retention when unset.
	DefaultMaxLogs int32 = 80
	// MinMaxLogs is the hard floor of the retention setting.
	MinMaxLogs int32 = 10
	// LogsPerPage is the page size of the log listing.
	LogsPerPage int32 = 12
)

// RegSession is an owner's in-flight account registration. Draft fields
// fill in as the owner walks through the steps.
type RegSession struct {
	OwnerID   string
	Step      RegStep
	Name      string
	Trigger   string
	Secret    string
	Limit     *int64
	StartedAt time.Time
}

// NewAccount is the payload committed at the end of a registration.
type NewAccount struct {
	ID          int64
	OwnerID     string
	Name        string
	Trigger     string
	Secret      string
	Limit       *int64
	PeriodHours *int64
}

// Decision is the outcome of running one chat message through the
// trigger matcher and the usage ledger.
type Decision struct {
	Matched bool
	Reply   string
}
