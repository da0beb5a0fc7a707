// glTF 2.0 import into the snapshot model. Primitives are merged into a
// single vertex/loop soup; glTF is already triangulated so no topology work
// happens here beyond flat-normal synthesis for sources without normals.

package mesh

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ImportOptions controls glTF loading.
//
// glTF carries no per-edge data, so Mesh.Seams is always empty after import;
// collision exports built from glTF input write every seam flag as zero.
// Callers with seam information from another source can fill Seams before
// cooking.
type ImportOptions struct {
	Object         string // Node name to load; empty picks the first mesh node
	UseSecondaryUV bool   // Also import TEXCOORD_1 when present
}

// LoadGLTF reads a .gltf/.glb file and returns the snapshot for one mesh
// node plus its armature (nil when the node is unskinned).
func LoadGLTF(path string, opts ImportOptions) (*Mesh, *Armature, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening glTF: %w", err)
	}
	return fromDocument(doc, opts)
}

func fromDocument(doc *gltf.Document, opts ImportOptions) (*Mesh, *Armature, error) {
	node, err := pickNode(doc, opts.Object)
	if err != nil {
		return nil, nil, err
	}

	src := doc.Meshes[*node.Mesh]
	m := &Mesh{Name: nodeName(node, src)}

	if world := nodeMatrix(node); world != mgl32.Ident4() {
		m.World = &world
	}

	prims, uvLayers, skinned, err := readPrimitives(doc, src, opts)
	if err != nil {
		return nil, nil, err
	}

	if skinned {
		m.Weights = [][]Weight{}
	}
	for _, p := range prims {
		appendPrimitive(m, p, uvLayers, skinned)
	}
	if err := m.Validate(); err != nil {
		return nil, nil, err
	}

	var arm *Armature
	if node.Skin != nil {
		arm = readArmature(doc, doc.Skins[*node.Skin])
	}
	return m, arm, nil
}

func pickNode(doc *gltf.Document, name string) (*gltf.Node, error) {
	if name != "" {
		for _, n := range doc.Nodes {
			if n.Name == name {
				if n.Mesh == nil {
					return nil, fmt.Errorf("%q: %w", name, ErrNotAMesh)
				}
				return n, nil
			}
		}
		return nil, fmt.Errorf("%q: %w", name, ErrNotAMesh)
	}
	for _, n := range doc.Nodes {
		if n.Mesh != nil {
			return n, nil
		}
	}
	return nil, ErrNotAMesh
}

func nodeName(n *gltf.Node, m *gltf.Mesh) string {
	if n.Name != "" {
		return n.Name
	}
	return m.Name
}

// nodeMatrix composes the node transform, TRS taking over when the explicit
// matrix is identity.
func nodeMatrix(n *gltf.Node) mgl32.Mat4 {
	var explicit mgl32.Mat4
	for i, v := range n.MatrixOrDefault() {
		explicit[i] = float32(v)
	}
	if explicit != mgl32.Ident4() {
		return explicit
	}
	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	trans := mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2]))
	rot := mgl32.Quat{
		W: float32(r[3]),
		V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])},
	}.Mat4()
	scale := mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2]))
	return trans.Mul4(rot).Mul4(scale)
}

// primitive carries one glTF primitive decoded into flat slices.
type primitive struct {
	positions [][3]float32
	normals   [][3]float32 // May be nil
	uvs       [][][2]float32
	joints    [][4]uint16 // May be nil
	weights   [][4]float32
	indices   []uint32
	material  Material
}

func readPrimitives(doc *gltf.Document, src *gltf.Mesh, opts ImportOptions) ([]primitive, int, bool, error) {
	var out []primitive
	uvLayers := 0
	skinned := false

	for pi, prim := range src.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			return nil, 0, false, fmt.Errorf("primitive %d: non-triangle mode %d", pi, prim.Mode)
		}
		var p primitive
		var err error

		acc, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			return nil, 0, false, fmt.Errorf("primitive %d: missing POSITION", pi)
		}
		if p.positions, err = modeler.ReadPosition(doc, doc.Accessors[acc], nil); err != nil {
			return nil, 0, false, fmt.Errorf("primitive %d: %w", pi, err)
		}
		if acc, ok := prim.Attributes[gltf.NORMAL]; ok {
			if p.normals, err = modeler.ReadNormal(doc, doc.Accessors[acc], nil); err != nil {
				return nil, 0, false, fmt.Errorf("primitive %d: %w", pi, err)
			}
		}
		uvSets := []string{gltf.TEXCOORD_0}
		if opts.UseSecondaryUV {
			uvSets = append(uvSets, gltf.TEXCOORD_1)
		}
		for _, set := range uvSets {
			acc, ok := prim.Attributes[set]
			if !ok {
				break
			}
			uv, err := modeler.ReadTextureCoord(doc, doc.Accessors[acc], nil)
			if err != nil {
				return nil, 0, false, fmt.Errorf("primitive %d: %w", pi, err)
			}
			p.uvs = append(p.uvs, uv)
		}
		if len(p.uvs) > uvLayers {
			uvLayers = len(p.uvs)
		}
		if acc, ok := prim.Attributes[gltf.JOINTS_0]; ok {
			if p.joints, err = modeler.ReadJoints(doc, doc.Accessors[acc], nil); err != nil {
				return nil, 0, false, fmt.Errorf("primitive %d: %w", pi, err)
			}
			wacc, ok := prim.Attributes[gltf.WEIGHTS_0]
			if !ok {
				return nil, 0, false, fmt.Errorf("primitive %d: JOINTS_0 without WEIGHTS_0", pi)
			}
			if p.weights, err = modeler.ReadWeights(doc, doc.Accessors[wacc], nil); err != nil {
				return nil, 0, false, fmt.Errorf("primitive %d: %w", pi, err)
			}
			skinned = true
		}
		if prim.Indices != nil {
			if p.indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
				return nil, 0, false, fmt.Errorf("primitive %d: %w", pi, err)
			}
		} else {
			p.indices = make([]uint32, len(p.positions))
			for i := range p.indices {
				p.indices[i] = uint32(i)
			}
		}
		if len(p.indices)%3 != 0 {
			return nil, 0, false, fmt.Errorf("primitive %d: index count %d not a triangle list", pi, len(p.indices))
		}

		p.material = readMaterial(doc, prim.Material, pi)
		out = append(out, p)
	}
	return out, uvLayers, skinned, nil
}

func readMaterial(doc *gltf.Document, idx *uint32, pi int) Material {
	if idx == nil {
		return Material{Name: fmt.Sprintf("material_%d", pi)}
	}
	src := doc.Materials[*idx]
	mat := Material{
		Name:        src.Name,
		Transparent: src.AlphaMode != gltf.AlphaOpaque,
	}
	if mat.Name == "" {
		mat.Name = fmt.Sprintf("material_%d", *idx)
	}
	if pbr := src.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
		if name := textureName(doc, pbr.BaseColorTexture.Index); name != "" {
			mat.Textures = append(mat.Textures, name)
		}
	}
	applyExtras(&mat, src.Extras)
	return mat
}

func textureName(doc *gltf.Document, tex uint32) string {
	if int(tex) >= len(doc.Textures) || doc.Textures[tex].Source == nil {
		return ""
	}
	img := doc.Images[*doc.Textures[tex].Source]
	if img.Name != "" {
		return img.Name
	}
	return img.URI
}

// applyExtras maps glTF material extras onto cooker fields: "pass_index"
// orders render passes, "shader" carries authored shader source, every other
// integer-valued key becomes a custom property (sorted for determinism).
func applyExtras(mat *Material, extras any) {
	m := extrasMap(extras)
	if m == nil {
		return
	}
	if v, ok := m["pass_index"].(float64); ok {
		mat.PassIndex = int32(v)
	}
	if v, ok := m["shader"].(string); ok {
		mat.ShaderSrc = v
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		if k == "pass_index" || k == "shader" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v, ok := m[k].(float64); ok && v == math.Trunc(v) {
			mat.IntProps = append(mat.IntProps, IntProp{Key: k, Value: int32(v)})
		}
	}
}

func extrasMap(extras any) map[string]any {
	switch v := extras.(type) {
	case map[string]any:
		return v
	case json.RawMessage:
		var m map[string]any
		if json.Unmarshal(v, &m) == nil {
			return m
		}
	}
	return nil
}

// appendPrimitive merges one decoded primitive into the snapshot, offsetting
// vertex references and padding UV layers the primitive lacks.
func appendPrimitive(m *Mesh, p primitive, uvLayers int, skinned bool) {
	matIdx := internMaterial(m, p.material)
	base := len(m.Positions)

	for _, pos := range p.positions {
		m.Positions = append(m.Positions, mgl32.Vec3{pos[0], pos[1], pos[2]})
	}
	if skinned {
		for i := range p.positions {
			m.Weights = append(m.Weights, vertexWeights(p, i))
		}
	}

	for i := 0; i+2 < len(p.indices); i += 3 {
		tri := [3]uint32{p.indices[i], p.indices[i+1], p.indices[i+2]}
		flat := flatNormal(p.positions[tri[0]], p.positions[tri[1]], p.positions[tri[2]])

		var loops [3]int
		for c, vi := range tri {
			loop := Loop{Vert: base + int(vi), Normal: flat}
			if p.normals != nil {
				n := p.normals[vi]
				loop.Normal = mgl32.Vec3{n[0], n[1], n[2]}
			}
			for layer := 0; layer < uvLayers; layer++ {
				var uv mgl32.Vec2
				if layer < len(p.uvs) {
					uv = mgl32.Vec2{p.uvs[layer][vi][0], p.uvs[layer][vi][1]}
				}
				loop.UVs = append(loop.UVs, uv)
			}
			loops[c] = len(m.Loops)
			m.Loops = append(m.Loops, loop)
		}
		m.Faces = append(m.Faces, Face{Loops: loops, Material: matIdx})
	}
}

func vertexWeights(p primitive, i int) []Weight {
	if p.joints == nil {
		return nil
	}
	var out []Weight
	for c := 0; c < 4; c++ {
		if p.weights[i][c] != 0 {
			out = append(out, Weight{Bone: uint32(p.joints[i][c]), Weight: p.weights[i][c]})
		}
	}
	return out
}

func internMaterial(m *Mesh, mat Material) int {
	for i, existing := range m.Materials {
		if existing.Name == mat.Name {
			return i
		}
	}
	m.Materials = append(m.Materials, mat)
	return len(m.Materials) - 1
}

func flatNormal(p0, p1, p2 [3]float32) mgl32.Vec3 {
	a := mgl32.Vec3{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
	b := mgl32.Vec3{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
	n := a.Cross(b)
	if n.Len() == 0 {
		return mgl32.Vec3{0, 0, 1}
	}
	return n.Normalize()
}

// readArmature lifts a glTF skin into the bone tree expected by the skeleton
// writer. Parent/child links are restricted to joints of the skin.
func readArmature(doc *gltf.Document, skin *gltf.Skin) *Armature {
	jointSlot := make(map[uint32]int, len(skin.Joints))
	for slot, node := range skin.Joints {
		jointSlot[node] = slot
	}

	parents := make(map[uint32]uint32)
	for ni, n := range doc.Nodes {
		for _, child := range n.Children {
			parents[child] = uint32(ni)
		}
	}

	arm := &Armature{Bones: make([]Bone, len(skin.Joints))}
	for slot, nodeIdx := range skin.Joints {
		n := doc.Nodes[nodeIdx]
		t := n.TranslationOrDefault()
		bone := Bone{
			Name:   n.Name,
			Head:   mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])},
			Parent: -1,
		}
		if bone.Name == "" {
			bone.Name = fmt.Sprintf("bone_%d", slot)
		}
		if p, ok := parents[nodeIdx]; ok {
			if ps, ok := jointSlot[p]; ok {
				bone.Parent = ps
			}
		}
		for _, child := range n.Children {
			if cs, ok := jointSlot[child]; ok {
				bone.Children = append(bone.Children, cs)
			}
		}
		arm.Bones[slot] = bone
	}
	return arm
}
