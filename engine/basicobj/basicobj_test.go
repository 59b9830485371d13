package basicobj

import (
	"math"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/karst-gfx/karst/engine/renderer"
	"github.com/karst-gfx/karst/engine/renderer/bind_group_provider"
	"github.com/karst-gfx/karst/engine/renderer/shader"
)

func TestKindIndexRoundTrip(t *testing.T) {
	if NumKinds != 9 {
		t.Fatalf("NumKinds = %d, want 9", NumKinds)
	}
	for i := 0; i < NumKinds; i++ {
		kind, err := FromIndex(i)
		if err != nil {
			t.Fatalf("FromIndex(%d): %v", i, err)
		}
		if kind.Index() != i {
			t.Errorf("FromIndex(%d).Index() = %d", i, kind.Index())
		}
	}
	if _, err := FromIndex(-1); err == nil {
		t.Error("FromIndex(-1) should fail")
	}
	if _, err := FromIndex(NumKinds); err == nil {
		t.Errorf("FromIndex(%d) should fail", NumKinds)
	}
}

func TestKindStringsUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, kind := range AllKinds {
		s := kind.String()
		if s == "" {
			t.Errorf("kind %d has empty name", kind.Index())
		}
		if seen[s] {
			t.Errorf("duplicate kind name %q", s)
		}
		seen[s] = true
	}
}

func TestGenerateMeshAllKinds(t *testing.T) {
	for _, kind := range AllKinds {
		vertices, indices, err := GenerateMesh(kind)
		if err != nil {
			t.Fatalf("%v: %v", kind, err)
		}
		if len(vertices) == 0 || len(indices) == 0 {
			t.Errorf("%v: empty mesh", kind)
			continue
		}
		if len(indices)%3 != 0 {
			t.Errorf("%v: index count %d not a multiple of 3", kind, len(indices))
		}
		for _, idx := range indices {
			if int(idx) >= len(vertices) {
				t.Errorf("%v: index %d out of range (%d vertices)", kind, idx, len(vertices))
				break
			}
		}
		for i, v := range vertices {
			n := v.Normal
			length := math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2]))
			if math.Abs(length-1) > 1e-4 {
				t.Errorf("%v: vertex %d normal length %v, want 1", kind, i, length)
				break
			}
		}
	}
}

func TestSphereMeshIsUnit(t *testing.T) {
	vertices, _, err := GenerateMesh(Sphere)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range vertices {
		p := v.Position
		length := math.Sqrt(float64(p[0]*p[0] + p[1]*p[1] + p[2]*p[2]))
		if math.Abs(length-1) > 1e-4 {
			t.Fatalf("sphere vertex %d at distance %v from origin, want 1", i, length)
		}
	}
}

func TestVertexLayout(t *testing.T) {
	var v Vertex
	if v.Size() != 24 {
		t.Errorf("Vertex.Size() = %d, want 24", v.Size())
	}
	vertices := []Vertex{
		{Position: [3]float32{1, 2, 3}, Normal: [3]float32{0, 1, 0}},
		{Position: [3]float32{4, 5, 6}, Normal: [3]float32{1, 0, 0}},
	}
	buf := MarshalVertices(vertices)
	if len(buf) != 48 {
		t.Errorf("MarshalVertices length = %d, want 48", len(buf))
	}
}

func TestGPUObjectInstanceLayout(t *testing.T) {
	var g GPUObjectInstance
	if g.Size() != 80 {
		t.Errorf("GPUObjectInstance.Size() = %d, want 80", g.Size())
	}
	if len(g.Marshal()) != 80 {
		t.Errorf("Marshal() length = %d, want 80", len(g.Marshal()))
	}
}

func TestRenderListAddAndClear(t *testing.T) {
	list := NewRenderList[*GPUObjectInstance]()

	list.Add(Cube, &GPUObjectInstance{})
	list.Add(Cube, &GPUObjectInstance{})
	list.Add(Sphere, &GPUObjectInstance{})

	if list.Len(Cube) != 2 {
		t.Errorf("Len(Cube) = %d, want 2", list.Len(Cube))
	}
	if list.Len(Sphere) != 1 {
		t.Errorf("Len(Sphere) = %d, want 1", list.Len(Sphere))
	}
	if list.Total() != 3 {
		t.Errorf("Total() = %d, want 3", list.Total())
	}

	list.Clear()
	for _, kind := range AllKinds {
		if list.Len(kind) != 0 {
			t.Errorf("after Clear, Len(%v) = %d", kind, list.Len(kind))
		}
	}
	if list.Total() != 0 {
		t.Errorf("after Clear, Total() = %d", list.Total())
	}

	// Clear is idempotent.
	list.Clear()
	if list.Total() != 0 {
		t.Error("second Clear changed the list")
	}
}

// captureRenderer records uniform writes and dynamic draw calls; every other
// Renderer method panics through the embedded nil interface.
type captureRenderer struct {
	renderer.Renderer
	writeOffsets []uint64
	draws        []map[int][]uint32
}

func (c *captureRenderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, pipelineKey string, group int, bufferSizeOverrides map[int]uint64) error {
	return nil
}

func (c *captureRenderer) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) error {
	c.writeOffsets = append(c.writeOffsets, offset)
	return nil
}

func (c *captureRenderer) DrawCallDynamic(pipelineKey string, mesh bind_group_provider.BindGroupProvider, groups []bind_group_provider.BindGroupProvider, offsets map[int][]uint32) error {
	c.draws = append(c.draws, offsets)
	return nil
}

// nilMeshes satisfies MeshSource for draws that never dereference the mesh.
type nilMeshes struct{}

func (nilMeshes) Mesh(BasicObj) bind_group_provider.BindGroupProvider { return nil }

func TestInstancingUpdateEmptyList(t *testing.T) {
	ins := NewInstancing[*GPUObjectInstance]("test_objects")
	if err := ins.Update(nil, NewRenderList[*GPUObjectInstance]()); err != nil {
		t.Fatalf("Update with empty list: %v", err)
	}
	for _, kind := range AllKinds {
		if ins.Count(kind) != 0 {
			t.Errorf("Count(%v) = %d, want 0", kind, ins.Count(kind))
		}
		if ins.Buffer(kind) != nil {
			t.Errorf("Buffer(%v) allocated for an empty list", kind)
		}
	}
}

func TestUniformSeriesOffsetsAndDraw(t *testing.T) {
	r := &captureRenderer{}
	series := NewUniformSeries[*GPUObjectInstance]("test_series", 2, 0)
	if err := series.Init(r, "test_pipeline"); err != nil {
		t.Fatal(err)
	}

	list := NewRenderList[*GPUObjectInstance]()
	list.Add(Cube, &GPUObjectInstance{})
	list.Add(Cube, &GPUObjectInstance{})
	list.Add(Sphere, &GPUObjectInstance{})
	if err := series.Update(r, list); err != nil {
		t.Fatal(err)
	}

	if got := series.Offsets(Cube); len(got) != 2 || got[0] != 0 || got[1] != UniformStride {
		t.Errorf("Offsets(Cube) = %v, want [0 %d]", got, UniformStride)
	}
	if got := series.Offsets(Sphere); len(got) != 1 || got[0] != 2*UniformStride {
		t.Errorf("Offsets(Sphere) = %v, want [%d]", got, 2*UniformStride)
	}

	drawable := NewUniformsDrawable(nilMeshes{}, series)
	if drawable.Mode() != shader.InstancingModeUniforms {
		t.Errorf("Mode() = %v, want uniforms", drawable.Mode())
	}
	if err := drawable.Draw(r, "test_pipeline"); err != nil {
		t.Fatal(err)
	}
	if len(r.draws) != 3 {
		t.Fatalf("draw count = %d, want 3 (one per record)", len(r.draws))
	}
	for i, want := range []uint32{0, UniformStride, 2 * UniformStride} {
		got := r.draws[i][series.Group()]
		if len(got) != 1 || got[0] != want {
			t.Errorf("draw %d dynamic offsets = %v, want [%d]", i, got, want)
		}
	}

	// A cleared list updates to zero records and draws nothing.
	list.Clear()
	if err := series.Update(r, list); err != nil {
		t.Fatal(err)
	}
	r.draws = nil
	if err := drawable.Draw(r, "test_pipeline"); err != nil {
		t.Fatal(err)
	}
	if len(r.draws) != 0 {
		t.Errorf("draw count after Clear = %d, want 0", len(r.draws))
	}
}

func TestSceneCoreShape(t *testing.T) {
	core := SceneCore()
	if got := core.InstanceStride(); got != 80 {
		t.Errorf("InstanceStride() = %d, want 80", got)
	}
	var g GPUObjectInstance
	if int(core.InstanceStride()) != g.Size() {
		t.Errorf("instance stride %d does not match record size %d", core.InstanceStride(), g.Size())
	}
	if len(core.Outputs) == 0 {
		t.Error("scene core must declare at least one output")
	}
}
