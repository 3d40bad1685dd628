// Package report tracks the latest probe outcome for each watched
// target and classifies target health from consecutive failures.
package report

import (
	"encoding/json"
	"time"
)

// Status classifies a target's recent probe history.
type Status int

const (
	// StatusOnline: the last probe succeeded.
	StatusOnline Status = iota
	// StatusDegraded: failing, but below the failure threshold.
	StatusDegraded
	// StatusOffline: consecutive failures reached the threshold.
	StatusOffline
)

var statusNames = map[Status]string{
	StatusOnline:   "online",
	StatusDegraded: "degraded",
	StatusOffline:  "offline",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// TargetState is the latest known state of one watched target.
type TargetState struct {
	Target              string    `json:"target"`
	Online              bool      `json:"online"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	LastChecked         time.Time `json:"lastChecked"`
	LastError           string    `json:"lastError,omitempty"`
}

// Status classifies the target given the configured failure threshold.
func (t *TargetState) Status(threshold int) Status {
	if threshold <= 0 {
		threshold = 3
	}
	switch {
	case t.ConsecutiveFailures >= threshold:
		return StatusOffline
	case !t.Online && t.ConsecutiveFailures > 0:
		return StatusDegraded
	default:
		return StatusOnline
	}
}

// RecordResult folds one probe outcome into the state.
func (t *TargetState) RecordResult(ok bool, errText string, at time.Time) {
	t.Online = ok
	t.LastChecked = at
	if ok {
		t.ConsecutiveFailures = 0
		t.LastError = ""
	} else {
		t.ConsecutiveFailures++
		t.LastError = errText
	}
}

// Clone returns a copy that can be mutated independently.
func (t *TargetState) Clone() *TargetState {
	c := *t
	return &c
}
