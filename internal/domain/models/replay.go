package models

import "time"

// ReplayState is the lifecycle of the streaming flow.
type ReplayState string

const (
	ReplayIdle      ReplayState = "idle"
	ReplayFetching  ReplayState = "fetching"
	ReplayRunning   ReplayState = "running"
	ReplayCompleted ReplayState = "completed"
	ReplayFailed    ReplayState = "failed"
)

// ReplayStatus is the externally visible state of the streaming flow.
type ReplayStatus struct {
	State     ReplayState    `json:"state"`
	Cursor    int            `json:"cursor"`
	Length    int            `json:"length"`
	Interval  time.Duration  `json:"interval_ns"`
	Window    int            `json:"window"`
	Error     string         `json:"error,omitempty"`
	ErrorKind ErrorKind      `json:"error_kind,omitempty"`
	Accuracy  *ModelAccuracy `json:"accuracy,omitempty"`
	StartedAt *time.Time     `json:"started_at,omitempty"`
	StopCause string         `json:"stop_cause,omitempty"`
}
