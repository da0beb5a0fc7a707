package hmdl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSurfaceFlagsBits(t *testing.T) {
	tests := []struct {
		name  string
		flags SurfaceFlags
		want  uint32
	}{
		{"none", SurfaceFlags{}, 0},
		{"two sided", SurfaceFlags{TwoSided: true}, 1},
		{"passthrough", SurfaceFlags{Passthrough: true}, 2},
		{"camera", SurfaceFlags{CameraPassthrough: true}, 4},
		{"slip", SurfaceFlags{SlipSurface: true}, 8},
		{"all", SurfaceFlags{true, true, true, true}, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.flags.bits(); got != tt.want {
				t.Errorf("bits() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWriteCollision_FlagMismatch(t *testing.T) {
	m := buildMesh([]testVert{{}, {}, {}}, [][3]int{{0, 1, 2}}, nil, nil, false)
	var buf bytes.Buffer
	err := WriteCollision(&buf, m, nil)
	if !errors.Is(err, ErrFlagCountMismatch) {
		t.Fatalf("got err %v, want ErrFlagCountMismatch", err)
	}
}

func TestWriteCollision_SingleTriangle(t *testing.T) {
	verts := []testVert{
		{pos: mgl32.Vec3{0, 0, 0}},
		{pos: mgl32.Vec3{1, 0, 0}},
		{pos: mgl32.Vec3{0, 1, 0}},
	}
	m := buildMesh(verts, [][3]int{{0, 1, 2}}, nil, nil, false)
	m.Seams = [][2]int{{2, 0}} // stored unordered

	var buf bytes.Buffer
	if err := WriteCollision(&buf, m, []SurfaceFlags{{TwoSided: true}}); err != nil {
		t.Fatalf("WriteCollision: %v", err)
	}

	r := bytes.NewReader(buf.Bytes())
	var matCount, bits uint32
	binary.Read(r, binary.LittleEndian, &matCount)
	binary.Read(r, binary.LittleEndian, &bits)
	if matCount != 1 || bits != 1 {
		t.Fatalf("flag table (%d, %d), want (1, 1)", matCount, bits)
	}

	var vertCount uint32
	binary.Read(r, binary.LittleEndian, &vertCount)
	if vertCount != 3 {
		t.Fatalf("vertex count %d, want 3", vertCount)
	}
	var pos [9]float32
	binary.Read(r, binary.LittleEndian, &pos)

	var edgeCount uint32
	binary.Read(r, binary.LittleEndian, &edgeCount)
	if edgeCount != 3 {
		t.Fatalf("edge count %d, want 3", edgeCount)
	}
	type edgeRec struct {
		a, b uint32
		seam uint8
	}
	edges := make([]edgeRec, edgeCount)
	for i := range edges {
		binary.Read(r, binary.LittleEndian, &edges[i].a)
		binary.Read(r, binary.LittleEndian, &edges[i].b)
		binary.Read(r, binary.LittleEndian, &edges[i].seam)
	}
	// Edge order is (min, max) sorted: (0,1) (0,2) (1,2); (0,2) is the seam.
	want := []edgeRec{{0, 1, 0}, {0, 2, 1}, {1, 2, 0}}
	for i := range want {
		if edges[i] != want[i] {
			t.Errorf("edge %d: got %+v, want %+v", i, edges[i], want[i])
		}
	}

	var triCount, matIdx uint32
	binary.Read(r, binary.LittleEndian, &triCount)
	if triCount != 1 {
		t.Fatalf("triangle count %d, want 1", triCount)
	}
	binary.Read(r, binary.LittleEndian, &matIdx)
	if matIdx != 0 {
		t.Errorf("triangle material %d, want 0", matIdx)
	}

	// Corners 0->1, 1->2, 2->0: the last traverses edge (0,2) reversed.
	type refRec struct {
		edge uint32
		flip uint8
	}
	wantRefs := []refRec{{0, 0}, {2, 0}, {1, 1}}
	for i, wr := range wantRefs {
		var ref refRec
		binary.Read(r, binary.LittleEndian, &ref.edge)
		binary.Read(r, binary.LittleEndian, &ref.flip)
		if ref != wr {
			t.Errorf("edge ref %d: got %+v, want %+v", i, ref, wr)
		}
	}
	if r.Len() != 0 {
		t.Errorf("%d trailing bytes", r.Len())
	}
}
