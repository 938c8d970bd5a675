package events

import "errors"

// ErrClosed is returned when publishing to a closed bus
var ErrClosed = errors.New("event bus is closed")
