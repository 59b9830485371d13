package basicobj

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/karst-gfx/karst/engine/renderer"
)

// Instancing owns one per-instance vertex buffer per primitive kind, for the
// bulk-instanced draw strategy. Update replaces each buffer's contents
// wholesale from a RenderList, growing buffers lazily; capacity never shrinks.
type Instancing[R Record] struct {
	buffers    [NumKinds]*wgpu.Buffer
	capacities [NumKinds]uint64 // in bytes
	counts     [NumKinds]uint32
	label      string
}

// NewInstancing creates an Instancing aggregate with no GPU buffers yet;
// buffers are allocated on first use by Update.
//
// Parameters:
//   - label: debug label prefix for the created buffers
//
// Returns:
//   - *Instancing[R]: the empty aggregate
func NewInstancing[R Record](label string) *Instancing[R] {
	return &Instancing[R]{label: label}
}

// Update replaces the buffer contents for every kind from the render list.
// Kinds with no records keep their buffer but draw zero instances. Buffers
// grow to the next doubling when the packed records outgrow them.
//
// Parameters:
//   - r: the renderer that owns the GPU buffers
//   - list: the records to upload
//
// Returns:
//   - error: an error if buffer creation or upload fails
func (ins *Instancing[R]) Update(r renderer.Renderer, list *RenderList[R]) error {
	for _, kind := range AllKinds {
		records := list.Records(kind)
		ins.counts[kind.Index()] = uint32(len(records))
		if len(records) == 0 {
			continue
		}

		data := make([]byte, 0, len(records)*records[0].Size())
		for i := range records {
			data = append(data, records[i].Marshal()...)
		}

		if err := ins.ensureCapacity(r, kind, uint64(len(data))); err != nil {
			return err
		}
		if err := r.WriteBuffer(ins.buffers[kind.Index()], 0, data); err != nil {
			return fmt.Errorf("upload %v instances: %w", kind, err)
		}
	}
	return nil
}

// Buffer returns the instance buffer for a kind, or nil if the kind has never
// had records.
func (ins *Instancing[R]) Buffer(kind BasicObj) *wgpu.Buffer {
	return ins.buffers[kind.Index()]
}

// Count returns the number of instances uploaded for a kind in the last Update.
func (ins *Instancing[R]) Count(kind BasicObj) uint32 {
	return ins.counts[kind.Index()]
}

// Release releases every GPU buffer held by the aggregate.
func (ins *Instancing[R]) Release() {
	for i, buf := range ins.buffers {
		if buf != nil {
			buf.Release()
			ins.buffers[i] = nil
			ins.capacities[i] = 0
			ins.counts[i] = 0
		}
	}
}

func (ins *Instancing[R]) ensureCapacity(r renderer.Renderer, kind BasicObj, size uint64) error {
	i := kind.Index()
	if ins.buffers[i] != nil && ins.capacities[i] >= size {
		return nil
	}

	capacity := max(ins.capacities[i], 256)
	for capacity < size {
		capacity *= 2
	}

	buf, err := r.CreateInstanceBuffer(fmt.Sprintf("%s %v Instance Buffer", ins.label, kind), capacity)
	if err != nil {
		return fmt.Errorf("create %v instance buffer: %w", kind, err)
	}
	if ins.buffers[i] != nil {
		ins.buffers[i].Release()
	}
	ins.buffers[i] = buf
	ins.capacities[i] = capacity
	return nil
}
