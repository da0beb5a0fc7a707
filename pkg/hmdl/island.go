package hmdl

import "github.com/Faultbox/hmdl-cook/pkg/mesh"

// partitionIslands splits a transparent material's faces into spatially
// contiguous islands by flood fill over edge adjacency, under the same bank
// budget as the greedy path. When accepting a face would overflow the
// budget, the whole BFS wave halts and the island is sealed; untouched
// faces seed later islands. Islands are maximal connected subsets subject
// to the constraint, so depth sorting at render time stays correct.
func partitionIslands(m *mesh.Mesh, st *skinTable, adj [][]int, faces []int, matIdx, maxBanks int) []Surface {
	rem := make(map[int]bool, len(faces))
	for _, fi := range faces {
		rem[fi] = true
	}

	var out []Surface
	for _, seed := range faces {
		if !rem[seed] {
			continue
		}
		surf := Surface{Material: matIdx}
		used := make(map[string]bool)
		frontier := []int{seed}

		for len(frontier) > 0 {
			var next []int
			halted := false
			for _, fi := range frontier {
				if !rem[fi] {
					continue // Reached through two neighbors in one wave
				}
				fresh := st.newFaceKeys(m, fi, used)
				if maxBanks > 0 && len(used)+len(fresh) > maxBanks {
					halted = true
					break
				}
				for _, k := range fresh {
					used[k] = true
					surf.Groups = append(surf.Groups, groupForKey(m, st, fi, k))
				}
				surf.Faces = append(surf.Faces, fi)
				delete(rem, fi)

				for _, nb := range adj[fi] {
					if rem[nb] && m.Faces[nb].Material == matIdx {
						next = append(next, nb)
					}
				}
			}
			if halted {
				break
			}
			frontier = next
		}

		out = append(out, surf)
	}
	return out
}
