package hmdl

import (
	"errors"
	"fmt"
	"io"

	"github.com/Faultbox/hmdl-cook/pkg/mesh"
)

// Cook errors.
var (
	// ErrNotAMesh mirrors the snapshot sentinel for callers matching on
	// this package.
	ErrNotAMesh           = mesh.ErrNotAMesh
	ErrSkinBudgetExceeded = errors.New("face exceeds skin bank budget")
)

// ShaderFunc resolves a material to its shader source text and texture
// references. The default uses what the material already carries.
type ShaderFunc func(mat *mesh.Material) (source string, textures []string, err error)

func defaultShader(mat *mesh.Material) (string, []string, error) {
	return mat.ShaderSrc, mat.Textures, nil
}

// Options configures one cook invocation. The zero value cooks a classic
// asset with unlimited skin banks and a single material group.
type Options struct {
	// MaxSkinBanks bounds the distinct bone-weight combinations one draw
	// call may bind; zero or negative lifts the bound.
	MaxSkinBanks int
	// Mode selects the layout variant.
	Mode OutputMode
	// MaterialGroups enables <base>_<group>_<slot> variant resolution when
	// positive; each group must provide a variant for every slot.
	MaterialGroups int
	// Library holds the materials searched for variants.
	Library []mesh.Material
	// Shader overrides the shader hook.
	Shader ShaderFunc
	// WriteWorldMatrix emits the snapshot's world matrix in the header.
	WriteWorldMatrix bool
}

// Cook serializes the snapshot as an HMDL asset onto w. Either the full
// asset is written or an error is returned with nothing usable emitted;
// callers should buffer w and commit only on success.
func Cook(w io.Writer, m *mesh.Mesh, opts Options) error {
	if m == nil {
		return ErrNotAMesh
	}
	if err := m.Validate(); err != nil {
		return err
	}
	shader := opts.Shader
	if shader == nil {
		shader = defaultShader
	}

	st := newSkinTable(m)
	if err := ValidateSkinBudget(m, st, opts.MaxSkinBanks); err != nil {
		return err
	}

	bw := newBinWriter(w)

	// Header: bounding box, then the world matrix when requested.
	bmin, bmax := m.Bounds()
	bw.vec3(bmin)
	bw.vec3(bmax)
	if opts.WriteWorldMatrix && m.World != nil {
		bw.mat4(*m.World)
	}

	sorted := SortMaterialsByPass(m.Materials)

	if err := writeMaterialTable(bw, m, sorted, opts, shader); err != nil {
		return err
	}

	if bw.err != nil {
		return bw.err
	}

	// The full vertex pool precedes every surface; surfaces hold pool
	// indices only.
	pool := NewPool(m, st)
	if err := pool.WriteOut(w); err != nil {
		return err
	}

	var adj [][]int
	for _, matIdx := range sorted {
		if m.Materials[matIdx].Transparent {
			continue
		}
		faces := materialFaces(m, st, matIdx)
		for _, surf := range partitionGreedy(m, st, faces, matIdx, opts.MaxSkinBanks) {
			bw.u8(1)
			writeSurface(bw, pool, m, surf)
		}
	}
	for _, matIdx := range sorted {
		if !m.Materials[matIdx].Transparent {
			continue
		}
		if adj == nil {
			adj = m.Adjacency()
		}
		faces := materialFaces(m, st, matIdx)
		for _, surf := range partitionIslands(m, st, adj, faces, matIdx, opts.MaxSkinBanks) {
			bw.u8(1)
			writeSurface(bw, pool, m, surf)
		}
	}

	// Surface terminator, then mesh custom properties.
	bw.u8(0)

	bw.u32(uint32(len(m.Props)))
	for _, prop := range m.Props {
		bw.str(prop.Key)
		bw.str(prop.Value)
	}

	return bw.err
}

// writeMaterialTable emits the material groups section. With variant groups
// each (group, slot) pair must resolve in the library; otherwise the mesh's
// own slots are written as a single group, in pass order.
func writeMaterialTable(bw *binWriter, m *mesh.Mesh, sorted []int, opts Options, shader ShaderFunc) error {
	if opts.MaterialGroups > 0 {
		bw.u32(uint32(opts.MaterialGroups))
		for grp := 0; grp < opts.MaterialGroups; grp++ {
			bw.u32(uint32(len(sorted)))
			for _, matIdx := range sorted {
				variant, err := FindVariant(opts.Library, grp, matIdx)
				if err != nil {
					return fmt.Errorf("mesh %q: %w", m.Name, err)
				}
				if err := writeMaterial(bw, variant, opts.Mode, shader); err != nil {
					return err
				}
			}
		}
		return bw.err
	}

	bw.u32(1)
	bw.u32(uint32(len(sorted)))
	for _, matIdx := range sorted {
		if err := writeMaterial(bw, &m.Materials[matIdx], opts.Mode, shader); err != nil {
			return err
		}
	}
	return bw.err
}
