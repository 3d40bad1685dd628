package ws

import (
	"time"

	"github.com/netbuddy/netbuddy/internal/report"
)

type MessageType string

const (
	// MsgSnapshot carries the full state of every watched target.
	MsgSnapshot MessageType = "snapshot"
	// MsgDelta carries only the targets that changed this poll.
	MsgDelta MessageType = "delta"
	// MsgSummary carries the per-poll pass count, the streaming
	// equivalent of the connectivity test's closing line.
	MsgSummary MessageType = "summary"
)

type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

type SnapshotPayload struct {
	Targets []*report.TargetState `json:"targets"`
}

type DeltaPayload struct {
	Updates []*report.TargetState `json:"updates"`
}

type SummaryPayload struct {
	Passed    int       `json:"passed"`
	Total     int       `json:"total"`
	Percent   int       `json:"percent"`
	Timestamp time.Time `json:"timestamp"`
}
