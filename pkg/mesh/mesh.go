// Package mesh defines the triangulated mesh snapshot consumed by the cooker.
// A snapshot is a pure value: positions and skin weights per source vertex,
// split attributes per loop (face corner), triangle faces with material
// assignment, and the material table. Nothing in here touches the host scene
// that produced the data.
package mesh

import (
	"errors"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Snapshot errors.
var (
	ErrNotAMesh      = errors.New("object is not a mesh")
	ErrBadLoopRef    = errors.New("face references loop out of range")
	ErrBadVertexRef  = errors.New("loop references vertex out of range")
	ErrUnevenUVCount = errors.New("loops disagree on UV layer count")
)

// Weight binds a bone index to its deform influence on a vertex.
type Weight struct {
	Bone   uint32
	Weight float32
}

// Loop is one face corner with its split attributes.
type Loop struct {
	Vert   int        // Index into Mesh.Positions / Mesh.Weights
	Normal mgl32.Vec3 // Split normal (flat normal when the source had none)
	UVs    []mgl32.Vec2
}

// Face is a triangle referencing three loops.
type Face struct {
	Loops    [3]int
	Material int // Index into Mesh.Materials
}

// IntProp is an integer custom property on a material, in authoring order.
type IntProp struct {
	Key   string
	Value int32
}

// Material describes one material slot.
type Material struct {
	Name        string
	PassIndex   int32 // Render pass ordering key
	Transparent bool  // Depth-sorted at render time
	ShaderSrc   string
	Textures    []string
	IntProps    []IntProp
}

// Prop is a string custom property on the mesh.
type Prop struct {
	Key   string
	Value string
}

// Bone is one joint of an armature.
type Bone struct {
	Name     string
	Head     mgl32.Vec3
	Parent   int // -1 for roots
	Children []int
}

// Armature is a free-form bone tree.
type Armature struct {
	Bones []Bone
}

// Mesh is an immutable triangulated snapshot of one mesh object.
type Mesh struct {
	Name      string
	Positions []mgl32.Vec3
	Weights   [][]Weight // Per source vertex; nil when the mesh has no deform layer
	Loops     []Loop
	Faces     []Face
	Materials []Material
	Props     []Prop
	Seams     [][2]int    // Marked seam edges, as source vertex pairs
	World     *mgl32.Mat4 // Optional object-to-world transform
}

// Skinned reports whether the snapshot carries a deform layer.
func (m *Mesh) Skinned() bool {
	return m.Weights != nil
}

// Validate checks internal index consistency.
func (m *Mesh) Validate() error {
	if m == nil {
		return ErrNotAMesh
	}
	uvLayers := -1
	for _, l := range m.Loops {
		if l.Vert < 0 || l.Vert >= len(m.Positions) {
			return ErrBadVertexRef
		}
		if uvLayers < 0 {
			uvLayers = len(l.UVs)
		} else if len(l.UVs) != uvLayers {
			return ErrUnevenUVCount
		}
	}
	for _, f := range m.Faces {
		for _, li := range f.Loops {
			if li < 0 || li >= len(m.Loops) {
				return ErrBadLoopRef
			}
		}
	}
	return nil
}

// UVLayerCount returns the number of UV layers (0 for an unmapped mesh).
func (m *Mesh) UVLayerCount() int {
	if len(m.Loops) == 0 {
		return 0
	}
	return len(m.Loops[0].UVs)
}

// Bounds returns the axis-aligned bounding box of all vertex positions.
// A mesh with no vertices gets a degenerate box at the origin.
func (m *Mesh) Bounds() (min, max mgl32.Vec3) {
	if len(m.Positions) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	min, max = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for i := 0; i < 3; i++ {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}
	return min, max
}

// edge is an unordered pair of source vertex indices.
type edge struct {
	a, b int
}

func makeEdge(a, b int) edge {
	if a > b {
		a, b = b, a
	}
	return edge{a, b}
}

// faceEdges returns the three topological edges of a face, using source
// vertex indices so that split normals/UVs do not break adjacency.
func (m *Mesh) faceEdges(f Face) [3]edge {
	v0 := m.Loops[f.Loops[0]].Vert
	v1 := m.Loops[f.Loops[1]].Vert
	v2 := m.Loops[f.Loops[2]].Vert
	return [3]edge{makeEdge(v0, v1), makeEdge(v1, v2), makeEdge(v2, v0)}
}

// Adjacency returns, for every face, the indices of faces sharing an edge
// with it.
func (m *Mesh) Adjacency() [][]int {
	byEdge := make(map[edge][]int)
	for fi, f := range m.Faces {
		for _, e := range m.faceEdges(f) {
			byEdge[e] = append(byEdge[e], fi)
		}
	}

	adj := make([][]int, len(m.Faces))
	seen := make(map[int]bool)
	for fi, f := range m.Faces {
		clear(seen)
		for _, e := range m.faceEdges(f) {
			for _, other := range byEdge[e] {
				if other != fi && !seen[other] {
					seen[other] = true
					adj[fi] = append(adj[fi], other)
				}
			}
		}
	}
	return adj
}

// Edges returns every topological edge once, ordered by (min vertex, max
// vertex). Used by the collision exporter.
func (m *Mesh) Edges() [][2]int {
	set := make(map[edge]bool)
	for _, f := range m.Faces {
		for _, e := range m.faceEdges(f) {
			set[e] = true
		}
	}
	out := make([][2]int, 0, len(set))
	for e := range set {
		out = append(out, [2]int{e.a, e.b})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}
