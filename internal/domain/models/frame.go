package models

import "time"

// Dataset is one named data array of a chart.
type Dataset struct {
	Label string    `json:"label"`
	Color string    `json:"color,omitempty"`
	Fill  string    `json:"fill,omitempty"`
	Data  []float64 `json:"data"`
}

// Frame is a snapshot of one chart, published on every redraw.
type Frame struct {
	ChartID   string    `json:"chart"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Mode      string    `json:"mode"`
	Labels    []string  `json:"labels"`
	Datasets  []Dataset `json:"datasets"`
	Cursor    int       `json:"cursor"` // points appended since creation, evicted ones included
	Visible   bool      `json:"visible"`
	Destroyed bool      `json:"destroyed,omitempty"`
}

// EventType tags messages pushed to browsers and sinks.
type EventType string

const (
	EventFrame  EventType = "frame"
	EventError  EventType = "error"
	EventDone   EventType = "done"
	EventStatus EventType = "status"
)

// Event is the envelope written to websocket clients and Kafka.
type Event struct {
	Type    EventType     `json:"type"`
	Frame   *Frame        `json:"frame,omitempty"`
	Status  *ReplayStatus `json:"status,omitempty"`
	Message string        `json:"message,omitempty"`
	Time    time.Time     `json:"ts"`
}

// FrameEvent wraps a frame.
func FrameEvent(f Frame) Event {
	return Event{Type: EventFrame, Frame: &f, Time: time.Now()}
}

// ErrorEvent wraps a user-visible error message.
func ErrorEvent(msg string) Event {
	return Event{Type: EventError, Message: msg, Time: time.Now()}
}

// StatusEvent wraps a replay status.
func StatusEvent(st ReplayStatus) Event {
	return Event{Type: EventStatus, Status: &st, Time: time.Now()}
}

// DoneEvent announces the end of a replay.
func DoneEvent(st ReplayStatus) Event {
	return Event{Type: EventDone, Status: &st, Time: time.Now()}
}
