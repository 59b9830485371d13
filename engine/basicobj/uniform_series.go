package basicobj

import (
	"fmt"

	"github.com/karst-gfx/karst/engine/renderer"
	"github.com/karst-gfx/karst/engine/renderer/bind_group_provider"
)

// UniformStride is the byte stride between dynamically offset instance records
// in a uniform series buffer. WebGPU requires dynamic uniform offsets to be
// multiples of 256.
const UniformStride = 256

// defaultSeriesCapacity is the initial record capacity of a uniform series.
const defaultSeriesCapacity = 64

// UniformSeries packs instance records into one uniform buffer at
// UniformStride intervals, for the per-record dynamic-offset draw strategy.
// One bind group holds the whole series; each draw selects its record with a
// dynamic offset.
type UniformSeries[R Record] struct {
	label    string
	group    int
	binding  int
	capacity int

	pipelineKey string
	provider    bind_group_provider.BindGroupProvider

	offsets [NumKinds][]uint32
}

// NewUniformSeries creates an empty uniform series. Init must be called once
// the owning pipeline is registered.
//
// Parameters:
//   - label: debug label for the series' GPU resources
//   - group: the bind group index of the instance uniform in the pipeline layout
//   - binding: the binding index within that group
//
// Returns:
//   - *UniformSeries[R]: the series
func NewUniformSeries[R Record](label string, group, binding int) *UniformSeries[R] {
	return &UniformSeries[R]{
		label:    label,
		group:    group,
		binding:  binding,
		capacity: defaultSeriesCapacity,
	}
}

// Init creates the series' uniform buffer and bind group against a registered
// pipeline's layout.
//
// Parameters:
//   - r: the renderer
//   - pipelineKey: the registered pipeline whose layout declares the instance uniform
//
// Returns:
//   - error: an error if resource creation fails
func (s *UniformSeries[R]) Init(r renderer.Renderer, pipelineKey string) error {
	s.pipelineKey = pipelineKey
	provider := bind_group_provider.NewBindGroupProvider(s.label)
	if err := r.InitBindGroup(provider, pipelineKey, s.group, map[int]uint64{
		s.binding: uint64(s.capacity) * UniformStride,
	}); err != nil {
		return fmt.Errorf("init uniform series %q: %w", s.label, err)
	}
	s.provider = provider
	return nil
}

// Update packs every record in the list into the series buffer, kind by kind,
// and records each one's dynamic offset. The series grows (doubling capacity
// and rebuilding its bind group) when the list outgrows it.
//
// Parameters:
//   - r: the renderer
//   - list: the records to upload
//
// Returns:
//   - error: an error if the series is uninitialized or the upload fails
func (s *UniformSeries[R]) Update(r renderer.Renderer, list *RenderList[R]) error {
	if s.provider == nil {
		return fmt.Errorf("uniform series %q not initialized", s.label)
	}

	total := list.Total()
	if total > s.capacity {
		for s.capacity < total {
			s.capacity *= 2
		}
		s.provider.Release()
		if err := s.Init(r, s.pipelineKey); err != nil {
			return err
		}
	}

	buf := s.provider.Buffer(s.binding)
	next := uint32(0)
	for _, kind := range AllKinds {
		records := list.Records(kind)
		s.offsets[kind.Index()] = s.offsets[kind.Index()][:0]
		for i := range records {
			offset := next * UniformStride
			if err := r.WriteBuffer(buf, uint64(offset), records[i].Marshal()); err != nil {
				return fmt.Errorf("upload %v record: %w", kind, err)
			}
			s.offsets[kind.Index()] = append(s.offsets[kind.Index()], offset)
			next++
		}
	}
	return nil
}

// Provider returns the bind group provider holding the series buffer.
func (s *UniformSeries[R]) Provider() bind_group_provider.BindGroupProvider {
	return s.provider
}

// Group returns the bind group index of the instance uniform.
func (s *UniformSeries[R]) Group() int {
	return s.group
}

// Offsets returns the dynamic offsets recorded for a kind in the last Update.
func (s *UniformSeries[R]) Offsets(kind BasicObj) []uint32 {
	return s.offsets[kind.Index()]
}

// Release releases the series' GPU resources.
func (s *UniformSeries[R]) Release() {
	if s.provider != nil {
		s.provider.Release()
		s.provider = nil
	}
}
