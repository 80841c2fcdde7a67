package engine

import "fmt"

// ParamStore holds the simulation parameters and mirrors every change to the
// backend. Each accepted setter re-encodes and uploads the whole block.
type ParamStore struct {
	params  SimParams
	backend Backend
	view    *ViewMapper // receives boundary changes
	uploads int
}

func newParamStore(p SimParams, backend Backend, view *ViewMapper) (*ParamStore, error) {
	if _, err := ParseKernel(uint32(p.Kernel)); err != nil {
		return nil, fmt.Errorf("kernel %d: %w", p.Kernel, err)
	}
	if _, err := ParseBoundary(uint32(p.Boundary)); err != nil {
		return nil, fmt.Errorf("boundary %d: %w", p.Boundary, err)
	}
	s := &ParamStore{params: p, backend: backend, view: view}
	s.upload()
	return s, nil
}

// Params returns a copy of the current parameters.
func (s *ParamStore) Params() SimParams {
	return s.params
}

// Uploads returns how many parameter blocks have been sent to the backend.
func (s *ParamStore) Uploads() int {
	return s.uploads
}

func (s *ParamStore) upload() {
	s.backend.UploadSimParams(mustMarshal(s.params))
	s.uploads++
}

// SetFeedRate sets the feed rate. Values are not range checked.
func (s *ParamStore) SetFeedRate(v float32) {
	s.params.FeedRate = v
	s.upload()
}

// SetKillRate sets the kill rate. Values are not range checked.
func (s *ParamStore) SetKillRate(v float32) {
	s.params.KillRate = v
	s.upload()
}

// SetDiffuseU sets the U diffusion coefficient.
func (s *ParamStore) SetDiffuseU(v float32) {
	s.params.DiffuseU = v
	s.upload()
}

// SetDiffuseV sets the V diffusion coefficient.
func (s *ParamStore) SetDiffuseV(v float32) {
	s.params.DiffuseV = v
	s.upload()
}

// SetDeltaTime sets the integration time step.
func (s *ParamStore) SetDeltaTime(v float32) {
	s.params.DeltaTime = v
	s.upload()
}

// SetNoise sets the noise strength.
func (s *ParamStore) SetNoise(v float32) {
	s.params.NoiseStrength = v
	s.upload()
}

// SetMapMode toggles parameter-map mode. The engine does not interpret it.
func (s *ParamStore) SetMapMode(on bool) {
	s.params.MapMode = on
	s.upload()
}

// SetKernel selects the stencil. Unknown kernels are rejected without upload.
func (s *ParamStore) SetKernel(k Kernel) error {
	if _, err := ParseKernel(uint32(k)); err != nil {
		return fmt.Errorf("set kernel %d: %w", k, err)
	}
	s.params.Kernel = k
	s.upload()
	return nil
}

// SetBoundary selects the boundary mode for both the step and render kernels.
// Unknown modes are rejected without upload.
func (s *ParamStore) SetBoundary(b Boundary) error {
	if _, err := ParseBoundary(uint32(b)); err != nil {
		return fmt.Errorf("set boundary %d: %w", b, err)
	}
	s.params.Boundary = b
	s.upload()
	if s.view != nil {
		s.view.setBoundary(b)
	}
	return nil
}

// ApplyPreset sets feed and kill together with a single upload.
func (s *ParamStore) ApplyPreset(feed, kill float32) {
	s.params.FeedRate = feed
	s.params.KillRate = kill
	s.upload()
}

// Replace swaps in a whole parameter set with a single upload. Grid
// dimensions are fixed for the engine's lifetime and are kept.
func (s *ParamStore) Replace(p SimParams) error {
	if _, err := ParseKernel(uint32(p.Kernel)); err != nil {
		return fmt.Errorf("replace params: kernel %d: %w", p.Kernel, err)
	}
	if _, err := ParseBoundary(uint32(p.Boundary)); err != nil {
		return fmt.Errorf("replace params: boundary %d: %w", p.Boundary, err)
	}
	p.GridWidth, p.GridHeight = s.params.GridWidth, s.params.GridHeight
	boundaryChanged := p.Boundary != s.params.Boundary
	s.params = p
	s.upload()
	if boundaryChanged && s.view != nil {
		s.view.setBoundary(p.Boundary)
	}
	return nil
}
