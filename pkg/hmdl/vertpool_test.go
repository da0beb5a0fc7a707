package hmdl

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/hmdl-cook/pkg/mesh"
)

func TestPoolDedup(t *testing.T) {
	base := mesh.Loop{Vert: 0, Normal: mgl32.Vec3{0, 0, 1}, UVs: []mgl32.Vec2{{0.5, 0.5}}}

	tests := []struct {
		name     string
		mutate   func(l *mesh.Loop, m *mesh.Mesh)
		distinct bool
	}{
		{"identical tuple", func(l *mesh.Loop, m *mesh.Mesh) {}, false},
		{"different position", func(l *mesh.Loop, m *mesh.Mesh) { l.Vert = 1 }, true},
		{"different normal", func(l *mesh.Loop, m *mesh.Mesh) { l.Normal = mgl32.Vec3{0, 1, 0} }, true},
		{"different uv", func(l *mesh.Loop, m *mesh.Mesh) { l.UVs = []mgl32.Vec2{{0.25, 0.5}} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mesh.Mesh{
				Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}},
			}
			second := base
			tt.mutate(&second, m)
			m.Loops = []mesh.Loop{base, second}

			p := NewPool(m, newSkinTable(m))
			same := p.Index(0) == p.Index(1)
			if tt.distinct && same {
				t.Error("differing loops interned to the same pool index")
			}
			if !tt.distinct && !same {
				t.Error("identical loops interned to distinct pool indices")
			}
		})
	}
}

func TestPoolDedup_Weights(t *testing.T) {
	// Same position/normal but different skin groups must split.
	m := &mesh.Mesh{
		Positions: []mgl32.Vec3{{0, 0, 0}, {0, 0, 0}},
		Weights: [][]mesh.Weight{
			{{Bone: 0, Weight: 1}},
			{{Bone: 1, Weight: 1}},
		},
		Loops: []mesh.Loop{
			{Vert: 0, Normal: mgl32.Vec3{0, 0, 1}},
			{Vert: 1, Normal: mgl32.Vec3{0, 0, 1}},
		},
	}
	p := NewPool(m, newSkinTable(m))
	if p.Index(0) == p.Index(1) {
		t.Error("loops with different skin groups interned together")
	}
}

func TestPoolInsertionOrder(t *testing.T) {
	m := &mesh.Mesh{
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}},
		Loops: []mesh.Loop{
			{Vert: 2, Normal: mgl32.Vec3{0, 0, 1}},
			{Vert: 0, Normal: mgl32.Vec3{0, 0, 1}},
			{Vert: 2, Normal: mgl32.Vec3{0, 0, 1}}, // dup of loop 0
			{Vert: 1, Normal: mgl32.Vec3{0, 0, 1}},
		},
	}
	p := NewPool(m, newSkinTable(m))

	if p.Len() != 3 {
		t.Fatalf("pool has %d verts, want 3", p.Len())
	}
	// First-seen wins position: vert 2's attributes sit at pool index 0.
	if p.Index(0) != 0 || p.Index(2) != 0 {
		t.Errorf("duplicate loops got indices %d and %d, want 0 and 0", p.Index(0), p.Index(2))
	}
	if p.Vert(0).Position != (mgl32.Vec3{2, 0, 0}) {
		t.Errorf("pool index 0 holds %v, want first-seen vertex", p.Vert(0).Position)
	}
	if p.Index(1) != 1 || p.Index(3) != 2 {
		t.Errorf("later loops got indices %d and %d, want 1 and 2", p.Index(1), p.Index(3))
	}
}

func TestPoolWriteOut_Framing(t *testing.T) {
	m := &mesh.Mesh{
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}},
		Weights: [][]mesh.Weight{
			{{Bone: 3, Weight: 1}},
			nil,
		},
		Loops: []mesh.Loop{
			{Vert: 0, Normal: mgl32.Vec3{0, 0, 1}, UVs: []mgl32.Vec2{{0, 1}}},
			{Vert: 1, Normal: mgl32.Vec3{0, 0, 1}, UVs: []mgl32.Vec2{{1, 1}}},
		},
	}
	p := NewPool(m, newSkinTable(m))

	var buf bytes.Buffer
	if err := p.WriteOut(&buf); err != nil {
		t.Fatalf("WriteOut: %v", err)
	}

	r := bytes.NewReader(buf.Bytes())
	var vertCount, uvLayers uint32
	binary.Read(r, binary.LittleEndian, &vertCount)
	binary.Read(r, binary.LittleEndian, &uvLayers)
	if vertCount != 2 || uvLayers != 1 {
		t.Fatalf("header %d/%d, want 2/1", vertCount, uvLayers)
	}

	// vert 0: pos+normal+uv (8 f32) + weight count + 1 pair
	var f [8]float32
	binary.Read(r, binary.LittleEndian, &f)
	var wc uint32
	binary.Read(r, binary.LittleEndian, &wc)
	if wc != 1 {
		t.Fatalf("vert 0 weight count %d, want 1", wc)
	}
	var bone uint32
	var weight float32
	binary.Read(r, binary.LittleEndian, &bone)
	binary.Read(r, binary.LittleEndian, &weight)
	if bone != 3 || weight != 1 {
		t.Errorf("vert 0 pair (%d, %f), want (3, 1)", bone, weight)
	}

	// vert 1: unskinned, weight count 0
	binary.Read(r, binary.LittleEndian, &f)
	binary.Read(r, binary.LittleEndian, &wc)
	if wc != 0 {
		t.Fatalf("vert 1 weight count %d, want 0", wc)
	}

	var loopCount uint32
	binary.Read(r, binary.LittleEndian, &loopCount)
	if loopCount != 2 {
		t.Fatalf("loop count %d, want 2", loopCount)
	}
	var idx [2]uint32
	binary.Read(r, binary.LittleEndian, &idx)
	if idx != [2]uint32{0, 1} {
		t.Errorf("index buffer %v, want [0 1]", idx)
	}
	if r.Len() != 0 {
		t.Errorf("%d trailing bytes after pool", r.Len())
	}
}
