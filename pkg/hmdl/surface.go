package hmdl

import "github.com/Faultbox/hmdl-cook/pkg/mesh"

// Surface is one drawable unit: a subset of one material's faces whose
// combined skin groups fit the bank budget. Sealed once emitted.
type Surface struct {
	Material int
	Faces    []int       // Face indices into the snapshot
	Groups   []SkinGroup // Distinct groups used, in acceptance order
}

// materialFaces collects the remaining faces of one material slot, in face
// order, pre-sorted by skin group when the mesh is skinned.
func materialFaces(m *mesh.Mesh, st *skinTable, matIdx int) []int {
	var faces []int
	for fi, f := range m.Faces {
		if f.Material == matIdx {
			faces = append(faces, fi)
		}
	}
	if m.Skinned() {
		sortFacesBySkinGroup(m, st, faces)
	}
	return faces
}

// partitionGreedy packs faces into as few surfaces as possible for an opaque
// material. Each pass scans the remaining faces in order, accepting a face
// unless its unseen skin groups would push the surface past the budget;
// rejected faces wait for the next surface. A budget of zero or less means a
// single surface takes everything.
func partitionGreedy(m *mesh.Mesh, st *skinTable, faces []int, matIdx, maxBanks int) []Surface {
	var out []Surface
	rem := faces
	for len(rem) > 0 {
		surf := Surface{Material: matIdx}
		used := make(map[string]bool)
		var deferred []int

		for _, fi := range rem {
			fresh := st.newFaceKeys(m, fi, used)
			if maxBanks > 0 && len(used)+len(fresh) > maxBanks {
				deferred = append(deferred, fi)
				continue
			}
			for _, k := range fresh {
				used[k] = true
				surf.Groups = append(surf.Groups, groupForKey(m, st, fi, k))
			}
			surf.Faces = append(surf.Faces, fi)
		}

		out = append(out, surf)
		rem = deferred
	}
	return out
}

// groupForKey recovers the SkinGroup value behind a key from one of the
// face's own vertices.
func groupForKey(m *mesh.Mesh, st *skinTable, face int, key string) SkinGroup {
	for _, li := range m.Faces[face].Loops {
		v := m.Loops[li].Vert
		if st.keys[v] == key {
			return st.groups[v]
		}
	}
	return SkinGroup{}
}
