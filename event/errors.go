package event

import "errors"

// ErrStopPropagation stops delivery to remaining listeners without
// failing the dispatch.
var ErrStopPropagation = errors.New("event: stop propagation")

// ErrDispatcherClosed is returned when dispatching on a closed dispatcher.
var ErrDispatcherClosed = errors.New("event: dispatcher closed")
