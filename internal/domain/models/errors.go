package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures of the prediction flows.
type ErrorKind string

const (
	KindNetwork   ErrorKind = "network"    // request rejected or non-2xx
	KindDataShape ErrorKind = "data_shape" // response missing fields or of the wrong shape
	KindUpstream  ErrorKind = "upstream"   // the service reported an error field
)

// Sentinels for errors.Is; every PredictionError matches the sentinel of its kind.
var (
	ErrNetwork   = errors.New("network error")
	ErrDataShape = errors.New("data shape error")
	ErrUpstream  = errors.New("upstream error")
)

// PredictionError is the terminal error of a streaming or upload operation.
type PredictionError struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *PredictionError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

// Unwrap returns the underlying cause.
func (e *PredictionError) Unwrap() error { return e.Err }

// Is matches the kind sentinel.
func (e *PredictionError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrDataShape:
		return e.Kind == KindDataShape
	case ErrUpstream:
		return e.Kind == KindUpstream
	}
	return false
}

// NetworkError builds a KindNetwork error.
func NetworkError(op string, err error) *PredictionError {
	return &PredictionError{Kind: KindNetwork, Op: op, Err: err}
}

// DataShapeError builds a KindDataShape error.
func DataShapeError(op, format string, a ...interface{}) *PredictionError {
	return &PredictionError{Kind: KindDataShape, Op: op, Message: fmt.Sprintf(format, a...)}
}

// UpstreamError builds a KindUpstream error carrying the server-reported message.
func UpstreamError(op, message string) *PredictionError {
	return &PredictionError{Kind: KindUpstream, Op: op, Message: message}
}

// KindOf returns the kind of err, or "" when err is not a PredictionError.
func KindOf(err error) ErrorKind {
	var pe *PredictionError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
