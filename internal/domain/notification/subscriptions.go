// ABOUTME: Single-slot callback registry for error, data and status events
// ABOUTME: Last writer wins per slot; empty slots are silent no-ops
package notification

import (
	"sync"

	"github.com/harper/snapmeta/internal/domain"
)

// Event names a subscription slot.
type Event string

const (
	EventError  Event = "error"
	EventData   Event = "data"
	EventStatus Event = "status"
)

// Metadata is the now-playing payload, forwarded verbatim.
type Metadata map[string]any

type (
	ErrorFunc  func(error)
	DataFunc   func(Metadata)
	StatusFunc func(string)
)

// Subscriptions holds at most one callback per event.
type Subscriptions struct {
	mu       sync.RWMutex
	onError  ErrorFunc
	onData   DataFunc
	onStatus StatusFunc
}

// Set stores callback under event. The callback must match the event's
// signature; unknown events and nil or mismatched callbacks fail with
// domain.ErrInvalidArgument.
func (s *Subscriptions) Set(event Event, callback any) error {
	switch event {
	case EventError:
		fn, ok := asErrorFunc(callback)
		if !ok {
			return domain.InvalidArgument("callback for %q must be func(error), got %T", event, callback)
		}
		s.SetError(fn)
	case EventData:
		fn, ok := asDataFunc(callback)
		if !ok {
			return domain.InvalidArgument("callback for %q must be func(Metadata), got %T", event, callback)
		}
		s.SetData(fn)
	case EventStatus:
		fn, ok := asStatusFunc(callback)
		if !ok {
			return domain.InvalidArgument("callback for %q must be func(string), got %T", event, callback)
		}
		s.SetStatus(fn)
	default:
		return domain.InvalidArgument("unsupported event %q", event)
	}
	return nil
}

func (s *Subscriptions) SetError(fn ErrorFunc) {
	s.mu.Lock()
	s.onError = fn
	s.mu.Unlock()
}

func (s *Subscriptions) SetData(fn DataFunc) {
	s.mu.Lock()
	s.onData = fn
	s.mu.Unlock()
}

func (s *Subscriptions) SetStatus(fn StatusFunc) {
	s.mu.Lock()
	s.onStatus = fn
	s.mu.Unlock()
}

func (s *Subscriptions) Error() ErrorFunc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.onError
}

func (s *Subscriptions) Data() DataFunc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.onData
}

func (s *Subscriptions) Status() StatusFunc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.onStatus
}

// EmitError invokes the error callback if one is registered, else drops err.
func (s *Subscriptions) EmitError(err error) {
	if fn := s.Error(); fn != nil {
		fn(err)
	}
}

func (s *Subscriptions) EmitData(md Metadata) {
	if fn := s.Data(); fn != nil {
		fn(md)
	}
}

func (s *Subscriptions) EmitStatus(status string) {
	if fn := s.Status(); fn != nil {
		fn(status)
	}
}

func asErrorFunc(cb any) (ErrorFunc, bool) {
	switch fn := cb.(type) {
	case ErrorFunc:
		return fn, fn != nil
	case func(error):
		return fn, fn != nil
	}
	return nil, false
}

func asDataFunc(cb any) (DataFunc, bool) {
	switch fn := cb.(type) {
	case DataFunc:
		return fn, fn != nil
	case func(Metadata):
		return fn, fn != nil
	case func(map[string]any):
		if fn == nil {
			return nil, false
		}
		return func(md Metadata) { fn(md) }, true
	}
	return nil, false
}

func asStatusFunc(cb any) (StatusFunc, bool) {
	switch fn := cb.(type) {
	case StatusFunc:
		return fn, fn != nil
	case func(string):
		return fn, fn != nil
	}
	return nil, false
}
