package hmdl

import (
	"errors"
	"fmt"
	"io"

	"github.com/Faultbox/hmdl-cook/pkg/mesh"
)

// ErrFlagCountMismatch reports a collision flag table that does not cover
// every material slot.
var ErrFlagCountMismatch = errors.New("collision flags do not match material count")

// SurfaceFlags is the per-material collision property set, packed into a
// fixed bitfield on the wire.
type SurfaceFlags struct {
	TwoSided          bool // Collide against both winding directions
	Passthrough       bool // Projectiles pass through
	CameraPassthrough bool // Camera ignores the surface
	SlipSurface       bool // No standing friction
}

func (f SurfaceFlags) bits() uint32 {
	var v uint32
	if f.TwoSided {
		v |= 1 << 0
	}
	if f.Passthrough {
		v |= 1 << 1
	}
	if f.CameraPassthrough {
		v |= 1 << 2
	}
	if f.SlipSurface {
		v |= 1 << 3
	}
	return v
}

// WriteCollision dumps the snapshot in the collision wire format: the
// per-material flag table, the vertex list, the edge list with seam flags,
// then triangles as edge references with a winding-flip flag. No
// partitioning happens here; collision geometry is consumed whole.
func WriteCollision(w io.Writer, m *mesh.Mesh, flags []SurfaceFlags) error {
	if len(flags) != len(m.Materials) {
		return fmt.Errorf("%d flags for %d materials: %w",
			len(flags), len(m.Materials), ErrFlagCountMismatch)
	}

	bw := newBinWriter(w)

	bw.u32(uint32(len(flags)))
	for _, f := range flags {
		bw.u32(f.bits())
	}

	bw.u32(uint32(len(m.Positions)))
	for _, p := range m.Positions {
		bw.vec3(p)
	}

	edges := m.Edges()
	edgeIdx := make(map[[2]int]uint32, len(edges))
	seams := make(map[[2]int]bool, len(m.Seams))
	for _, s := range m.Seams {
		seams[orderPair(s)] = true
	}
	bw.u32(uint32(len(edges)))
	for i, e := range edges {
		edgeIdx[e] = uint32(i)
		bw.u32(uint32(e[0]))
		bw.u32(uint32(e[1]))
		bw.u8(boolByte(seams[e]))
	}

	bw.u32(uint32(len(m.Faces)))
	for _, f := range m.Faces {
		bw.u32(uint32(f.Material))
		for c := 0; c < 3; c++ {
			a := m.Loops[f.Loops[c]].Vert
			b := m.Loops[f.Loops[(c+1)%3]].Vert
			bw.u32(edgeIdx[orderPair([2]int{a, b})])
			// Flip when the face traverses the edge against its stored
			// (min, max) direction.
			bw.u8(boolByte(a > b))
		}
	}
	return bw.err
}

func orderPair(p [2]int) [2]int {
	if p[0] > p[1] {
		return [2]int{p[1], p[0]}
	}
	return p
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
