package core

// SequenceSampler replays predetermined values for each dimension.
// It panics when a dimension runs out, which makes tests fail loudly when
// code under test draws more randomness than expected.
type SequenceSampler struct {
	values1D []float32
	values2D []Vec2
	values3D []Vec3
	index1D  int
	index2D  int
	index3D  int
}

// NewSequenceSampler creates a sampler with predetermined values for each dimension
func NewSequenceSampler(values1D []float32, values2D []Vec2, values3D []Vec3) *SequenceSampler {
	return &SequenceSampler{
		values1D: values1D,
		values2D: values2D,
		values3D: values3D,
	}
}

// Get1D returns the next predetermined 1D value
func (s *SequenceSampler) Get1D() float32 {
	if s.index1D >= len(s.values1D) {
		panic("SequenceSampler ran out of 1D values")
	}
	val := s.values1D[s.index1D]
	s.index1D++
	return val
}

// Get2D returns the next predetermined 2D value
func (s *SequenceSampler) Get2D() Vec2 {
	if s.index2D >= len(s.values2D) {
		panic("SequenceSampler ran out of 2D values")
	}
	val := s.values2D[s.index2D]
	s.index2D++
	return val
}

// Get3D returns the next predetermined 3D value
func (s *SequenceSampler) Get3D() Vec3 {
	if s.index3D >= len(s.values3D) {
		panic("SequenceSampler ran out of 3D values")
	}
	val := s.values3D[s.index3D]
	s.index3D++
	return val
}
