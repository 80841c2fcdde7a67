package engine

import (
	"fmt"

	"github.com/pthm-cable/turing/field"
)

// SeedDefault writes the default seed (a small V disc at the grid centre)
// into buffer A and makes A active.
func (e *Engine) SeedDefault() error {
	e.grid.Seed(e.initParams.SeedRadiusSq)
	return e.writeInitial("seed")
}

// Clear writes the base state (U=1, V=0) into buffer A and makes A active.
func (e *Engine) Clear() error {
	e.grid.Clear()
	return e.writeInitial("clear")
}

// ScatterBlobs writes the base state plus count random V discs into buffer A
// and makes A active. A negative count uses the configured blob count.
func (e *Engine) ScatterBlobs(count int) ([]field.Blob, error) {
	if count < 0 {
		count = e.blobCount
	}
	blobs := e.grid.Scatter(e.rng, count, e.initParams.BlobMinRadius, e.initParams.BlobMaxRadius)
	if err := e.writeInitial("scatter"); err != nil {
		return nil, err
	}
	return blobs, nil
}

func (e *Engine) writeInitial(kind string) error {
	e.startPhase(TimerInit)
	if err := e.backend.WriteField(BufferA, e.grid.Data); err != nil {
		return fmt.Errorf("%s: writing buffer A: %w", kind, err)
	}
	e.active = BufferA
	e.log.Debug("field initialized", "kind", kind)
	return nil
}

// LoadField writes caller-supplied texels into buffer A and makes A active.
func (e *Engine) LoadField(texels []float32) error {
	if len(texels) != e.grid.Len() {
		return fmt.Errorf("load field: got %d values, want %d", len(texels), e.grid.Len())
	}
	copy(e.grid.Data, texels)
	return e.writeInitial("load")
}
