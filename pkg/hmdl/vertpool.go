package hmdl

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/hmdl-cook/pkg/mesh"
)

// PoolVert is one unique attribute combination in the pool.
type PoolVert struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UVs      []mgl32.Vec2
	Weights  []mesh.Weight // Canonical (sorted, zero-free)
}

// Pool collapses the per-loop attribute soup into a minimal table of unique
// vertices. Identity is the exact tuple (position, normal, UV layers, skin
// weights); insertion order is first-seen. The pool lives for one cook
// invocation only.
type Pool struct {
	verts    []PoolVert
	loopIdx  []uint32 // Per loop: index into verts
	uvLayers int
}

// NewPool interns every loop of the snapshot.
func NewPool(m *mesh.Mesh, st *skinTable) *Pool {
	p := &Pool{
		loopIdx:  make([]uint32, len(m.Loops)),
		uvLayers: m.UVLayerCount(),
	}
	lookup := make(map[string]uint32, len(m.Loops))
	for li, loop := range m.Loops {
		group := st.group(loop.Vert)
		key := loopKey(m.Positions[loop.Vert], loop, group)
		idx, ok := lookup[key]
		if !ok {
			idx = uint32(len(p.verts))
			lookup[key] = idx
			p.verts = append(p.verts, PoolVert{
				Position: m.Positions[loop.Vert],
				Normal:   loop.Normal,
				UVs:      loop.UVs,
				Weights:  group.Pairs,
			})
		}
		p.loopIdx[li] = idx
	}
	return p
}

// loopKey encodes the full attribute tuple; float bits keep the comparison
// exact.
func loopKey(pos mgl32.Vec3, loop mesh.Loop, group SkinGroup) string {
	buf := make([]byte, 0, 24+len(loop.UVs)*8+len(group.Pairs)*8)
	buf = appendVec3(buf, pos)
	buf = appendVec3(buf, loop.Normal)
	for _, uv := range loop.UVs {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(uv[0]))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(uv[1]))
	}
	for _, w := range group.Pairs {
		buf = binary.LittleEndian.AppendUint32(buf, w.Bone)
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(w.Weight))
	}
	return string(buf)
}

func appendVec3(buf []byte, v mgl32.Vec3) []byte {
	for i := 0; i < 3; i++ {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v[i]))
	}
	return buf
}

// Len returns the number of unique vertices.
func (p *Pool) Len() int {
	return len(p.verts)
}

// Index returns the pool index a loop was interned to.
func (p *Pool) Index(loop int) uint32 {
	return p.loopIdx[loop]
}

// Vert returns the pooled vertex at idx.
func (p *Pool) Vert(idx uint32) PoolVert {
	return p.verts[idx]
}

// UVLayers returns the pool's UV layer count.
func (p *Pool) UVLayers() int {
	return p.uvLayers
}

// WriteOut emits the vertex and element buffers:
//
//	vert_count:u32, uv_layer_count:u32
//	per vertex: position 3xf32, normal 3xf32, uv 2xf32 per layer,
//	            weight_count:u32, (bone:u32, weight:f32) per pair
//	loop_count:u32, pool index u32 per loop
func (p *Pool) WriteOut(w io.Writer) error {
	bw := newBinWriter(w)
	bw.u32(uint32(len(p.verts)))
	bw.u32(uint32(p.uvLayers))
	for _, v := range p.verts {
		bw.vec3(v.Position)
		bw.vec3(v.Normal)
		for _, uv := range v.UVs {
			bw.f32(uv[0])
			bw.f32(uv[1])
		}
		bw.u32(uint32(len(v.Weights)))
		for _, pair := range v.Weights {
			bw.u32(pair.Bone)
			bw.f32(pair.Weight)
		}
	}
	bw.u32(uint32(len(p.loopIdx)))
	for _, idx := range p.loopIdx {
		bw.u32(idx)
	}
	return bw.err
}
