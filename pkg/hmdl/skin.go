// Package hmdl cooks a triangulated mesh snapshot into the HMDL binary
// asset: a deduplicated vertex pool, a pass-ordered material table and a set
// of drawable surfaces, each bounded by the hardware skin-bank budget.
package hmdl

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/Faultbox/hmdl-cook/pkg/mesh"
)

// SkinGroup is the canonical set of (bone, weight) pairs deforming a vertex:
// sorted ascending by bone index with zero weights dropped. Two vertices
// belong to the same group iff their canonical pairs are equal.
type SkinGroup struct {
	Pairs []mesh.Weight
}

// ResolveSkinGroup canonicalizes a raw weight list.
func ResolveSkinGroup(weights []mesh.Weight) SkinGroup {
	pairs := make([]mesh.Weight, 0, len(weights))
	for _, w := range weights {
		if w.Weight != 0 {
			pairs = append(pairs, w)
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Bone < pairs[j].Bone })
	return SkinGroup{Pairs: pairs}
}

// Empty reports whether the group carries no deformation.
func (g SkinGroup) Empty() bool {
	return len(g.Pairs) == 0
}

// Key returns a comparable identity for the group. Weights are compared by
// exact bit pattern; inputs come from one authoritative mesh, so no epsilon.
func (g SkinGroup) Key() string {
	buf := make([]byte, 0, len(g.Pairs)*8)
	for _, p := range g.Pairs {
		buf = binary.LittleEndian.AppendUint32(buf, p.Bone)
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(p.Weight))
	}
	return string(buf)
}

// skinTable caches the canonical group of every source vertex for one cook.
type skinTable struct {
	groups []SkinGroup
	keys   []string
}

func newSkinTable(m *mesh.Mesh) *skinTable {
	t := &skinTable{
		groups: make([]SkinGroup, len(m.Positions)),
		keys:   make([]string, len(m.Positions)),
	}
	if !m.Skinned() {
		// Unskinned: every vertex shares the implicit empty group.
		return t
	}
	for v := range m.Positions {
		var raw []mesh.Weight
		if v < len(m.Weights) {
			raw = m.Weights[v]
		}
		t.groups[v] = ResolveSkinGroup(raw)
		t.keys[v] = t.groups[v].Key()
	}
	return t
}

func (t *skinTable) group(vert int) SkinGroup {
	return t.groups[vert]
}

// faceKeys returns the distinct group keys of a face's three vertices, in
// corner order.
func (t *skinTable) faceKeys(m *mesh.Mesh, face int) []string {
	var out []string
	for _, li := range m.Faces[face].Loops {
		k := t.keys[m.Loops[li].Vert]
		if !containsKey(out, k) {
			out = append(out, k)
		}
	}
	return out
}

// newFaceKeys returns a face's group keys not already present in used.
func (t *skinTable) newFaceKeys(m *mesh.Mesh, face int, used map[string]bool) []string {
	var out []string
	for _, li := range m.Faces[face].Loops {
		k := t.keys[m.Loops[li].Vert]
		if !used[k] && !containsKey(out, k) {
			out = append(out, k)
		}
	}
	return out
}

func containsKey(keys []string, k string) bool {
	for _, have := range keys {
		if have == k {
			return true
		}
	}
	return false
}

// ValidateSkinBudget rejects faces whose own three vertices need more
// distinct skin groups than the bank budget allows; neither partitioning
// strategy could ever place such a face.
func ValidateSkinBudget(m *mesh.Mesh, st *skinTable, maxBanks int) error {
	if maxBanks <= 0 {
		return nil
	}
	for fi := range m.Faces {
		if n := len(st.faceKeys(m, fi)); n > maxBanks {
			return fmt.Errorf("face %d needs %d skin groups with budget %d: %w",
				fi, n, maxBanks, ErrSkinBudgetExceeded)
		}
	}
	return nil
}

// sortFacesBySkinGroup orders faces so that faces sharing a skin group
// cluster together, keyed by each face's first corner. Stable, so input
// order survives within a cluster.
func sortFacesBySkinGroup(m *mesh.Mesh, st *skinTable, faces []int) {
	sort.SliceStable(faces, func(i, j int) bool {
		ki := st.keys[m.Loops[m.Faces[faces[i]].Loops[0]].Vert]
		kj := st.keys[m.Loops[m.Faces[faces[j]].Loops[0]].Vert]
		return ki < kj
	})
}
