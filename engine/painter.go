package engine

// Paint stamps reactant V at normalized screen position (sx, sy).
//
// The target texel is found with the same inverse view transform the render
// kernel uses, then truncated toward zero. Targets outside the grid are
// passed to the kernel unchanged. The stamp is applied by copying the active
// buffer into the inactive one through the paint kernel, followed by a swap.
func (e *Engine) Paint(sx, sy float32) error {
	e.startPhase(TimerPaint)
	tx, ty := e.view.view.ScreenToTexel(sx, sy)
	e.backend.UploadPaintParams(mustMarshal(PaintParams{
		CenterX: float32(tx),
		CenterY: float32(ty),
	}))
	if err := e.backend.DispatchPaint(e.active, e.active.Other()); err != nil {
		e.log.Error("paint failed", "x", tx, "y", ty, "error", err)
		return &StepError{Phase: PhasePaint, Err: err}
	}
	e.flip()
	e.log.Debug("paint", "x", tx, "y", ty)
	return nil
}

// PointerDown records a press and paints at the position.
func (e *Engine) PointerDown(sx, sy float32) error {
	e.pointer = Pointer{X: sx, Y: sy, Known: true, Down: true}
	return e.Paint(sx, sy)
}

// PointerMove records the position and paints while pressed.
func (e *Engine) PointerMove(sx, sy float32) error {
	e.pointer.X, e.pointer.Y, e.pointer.Known = sx, sy, true
	if !e.pointer.Down {
		return nil
	}
	return e.Paint(sx, sy)
}

// PointerUp records a release.
func (e *Engine) PointerUp() {
	e.pointer.Down = false
}

// Pointer returns the last recorded pointer state.
func (e *Engine) Pointer() Pointer {
	return e.pointer
}
