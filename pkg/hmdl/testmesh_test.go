package hmdl

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/hmdl-cook/pkg/mesh"
)

// testVert pairs a position with its raw skin weights.
type testVert struct {
	pos mgl32.Vec3
	w   []mesh.Weight
}

// buildMesh assembles a snapshot from shared vertices: every triangle corner
// becomes a loop with a flat +Z normal and no UVs, so pool identity is
// driven by position and weights alone.
func buildMesh(verts []testVert, tris [][3]int, matOf []int, mats []mesh.Material, skinned bool) *mesh.Mesh {
	m := &mesh.Mesh{Name: "test", Materials: mats}
	for _, v := range verts {
		m.Positions = append(m.Positions, v.pos)
	}
	if skinned {
		m.Weights = make([][]mesh.Weight, len(verts))
		for i, v := range verts {
			m.Weights[i] = v.w
		}
	}
	for ti, tri := range tris {
		var loops [3]int
		for c, vi := range tri {
			loops[c] = len(m.Loops)
			m.Loops = append(m.Loops, mesh.Loop{Vert: vi, Normal: mgl32.Vec3{0, 0, 1}})
		}
		matIdx := 0
		if matOf != nil {
			matIdx = matOf[ti]
		}
		m.Faces = append(m.Faces, mesh.Face{Loops: loops, Material: matIdx})
	}
	if len(m.Materials) == 0 {
		m.Materials = []mesh.Material{{Name: "mat"}}
	}
	return m
}

// boneGroup gives a vertex a single full-strength bone binding, a compact
// way to mint mutually distinct skin groups.
func boneGroup(bone uint32) []mesh.Weight {
	return []mesh.Weight{{Bone: bone, Weight: 1}}
}

// stripVerts returns vertices for n triangles laid out in a strip:
// vertices 0..n+1, triangle i = (i, i+1, i+2).
func stripVerts(n int, group func(i int) []mesh.Weight) ([]testVert, [][3]int) {
	verts := make([]testVert, n+2)
	for i := range verts {
		verts[i] = testVert{pos: mgl32.Vec3{float32(i), float32(i % 2), 0}}
		if group != nil {
			verts[i].w = group(i)
		}
	}
	tris := make([][3]int, n)
	for i := range tris {
		tris[i] = [3]int{i, i + 1, i + 2}
	}
	return verts, tris
}

// surfaceFaceUnion flattens the face lists of a surface set.
func surfaceFaceUnion(surfs []Surface) []int {
	var all []int
	for _, s := range surfs {
		all = append(all, s.Faces...)
	}
	return all
}

// assertPartition checks that surfaces cover exactly the input face set with
// no duplicates and that every surface honors the bank budget.
func assertPartition(t testingT, surfs []Surface, want []int, maxBanks int) {
	t.Helper()
	seen := make(map[int]int)
	for _, fi := range surfaceFaceUnion(surfs) {
		seen[fi]++
	}
	for _, fi := range want {
		if seen[fi] != 1 {
			t.Errorf("face %d appears %d times across surfaces, want exactly 1", fi, seen[fi])
		}
	}
	if len(seen) != len(want) {
		t.Errorf("surfaces cover %d faces, want %d", len(seen), len(want))
	}
	if maxBanks > 0 {
		for i, s := range surfs {
			if len(s.Groups) > maxBanks {
				t.Errorf("surface %d uses %d skin groups, budget %d", i, len(s.Groups), maxBanks)
			}
		}
	}
}

// testingT is the subset of *testing.T the helpers need.
type testingT interface {
	Helper()
	Errorf(format string, args ...any)
}
