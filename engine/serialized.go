package engine

import (
	"sync"

	"github.com/pthm-cable/turing/field"
)

// Serialized guards an Engine with a mutex so that host callbacks arriving
// on different goroutines are applied one at a time.
type Serialized struct {
	mu sync.Mutex
	e  *Engine
}

// NewSerialized wraps e.
func NewSerialized(e *Engine) *Serialized {
	return &Serialized{e: e}
}

// Do runs fn with exclusive access to the engine.
func (s *Serialized) Do(fn func(e *Engine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.e)
}

// Frame runs one frame of steps followed by a render.
func (s *Serialized) Frame() error {
	return s.Do((*Engine).Frame)
}

// Paint stamps reactant at a normalized screen position.
func (s *Serialized) Paint(sx, sy float32) error {
	return s.Do(func(e *Engine) error { return e.Paint(sx, sy) })
}

// ScatterBlobs replaces the field with random blobs.
func (s *Serialized) ScatterBlobs(count int) ([]field.Blob, error) {
	var blobs []field.Blob
	err := s.Do(func(e *Engine) error {
		var err error
		blobs, err = e.ScatterBlobs(count)
		return err
	})
	return blobs, err
}
