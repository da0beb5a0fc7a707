package hmdl

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/hmdl-cook/pkg/mesh"
)

// OutputMode selects the asset layout variant.
type OutputMode int

const (
	// OutputModeClassic is the original layout.
	OutputModeClassic OutputMode = iota
	// OutputModeExtended additionally writes a transparency flag per material.
	OutputModeExtended
)

// ErrUnknownOutputMode reports an unrecognized mode name.
var ErrUnknownOutputMode = errors.New("unknown output mode")

// ParseOutputMode maps a config/CLI string to an OutputMode.
func ParseOutputMode(s string) (OutputMode, error) {
	switch s {
	case "", "classic":
		return OutputModeClassic, nil
	case "extended":
		return OutputModeExtended, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrUnknownOutputMode)
	}
}

// String returns the mode's config name.
func (m OutputMode) String() string {
	if m == OutputModeExtended {
		return "extended"
	}
	return "classic"
}

// binWriter wraps an io.Writer with little-endian primitives and a sticky
// error, so serialization code reads like the layout it produces.
type binWriter struct {
	w   io.Writer
	err error
}

func newBinWriter(w io.Writer) *binWriter {
	return &binWriter{w: w}
}

func (b *binWriter) u8(v uint8) {
	if b.err == nil {
		b.err = binary.Write(b.w, binary.LittleEndian, v)
	}
}

func (b *binWriter) i8(v int8) {
	if b.err == nil {
		b.err = binary.Write(b.w, binary.LittleEndian, v)
	}
}

func (b *binWriter) u32(v uint32) {
	if b.err == nil {
		b.err = binary.Write(b.w, binary.LittleEndian, v)
	}
}

func (b *binWriter) i32(v int32) {
	if b.err == nil {
		b.err = binary.Write(b.w, binary.LittleEndian, v)
	}
}

func (b *binWriter) f32(v float32) {
	b.u32(math.Float32bits(v))
}

func (b *binWriter) vec3(v mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		b.f32(v[i])
	}
}

func (b *binWriter) mat4(m mgl32.Mat4) {
	for i := 0; i < 16; i++ {
		b.f32(m[i])
	}
}

// str writes a u32 length prefix followed by the raw bytes.
func (b *binWriter) str(s string) {
	b.u32(uint32(len(s)))
	if b.err == nil {
		_, b.err = io.WriteString(b.w, s)
	}
}

// writeMaterial emits one material table entry. Shader source and texture
// references come from the shader hook.
func writeMaterial(bw *binWriter, mat *mesh.Material, mode OutputMode, shader ShaderFunc) error {
	src, texs, err := shader(mat)
	if err != nil {
		return fmt.Errorf("shader for %q: %w", mat.Name, err)
	}
	bw.str(mat.Name)
	bw.str(src)
	bw.u32(uint32(len(texs)))
	for _, tex := range texs {
		bw.str(tex)
	}
	bw.u32(uint32(len(mat.IntProps)))
	for _, prop := range mat.IntProps {
		bw.str(prop.Key)
		bw.i32(prop.Value)
	}
	if mode == OutputModeExtended {
		var flag int8
		if mat.Transparent {
			flag = 1
		}
		bw.i8(flag)
	}
	return bw.err
}

// writeSurface emits one surface payload: material index, the skin groups
// the surface binds, then its faces as pool index triples.
func writeSurface(bw *binWriter, pool *Pool, m *mesh.Mesh, surf Surface) {
	bw.u32(uint32(surf.Material))
	bw.u32(uint32(len(surf.Groups)))
	for _, g := range surf.Groups {
		bw.u32(uint32(len(g.Pairs)))
		for _, pair := range g.Pairs {
			bw.u32(pair.Bone)
			bw.f32(pair.Weight)
		}
	}
	bw.u32(uint32(len(surf.Faces)))
	for _, fi := range surf.Faces {
		for _, li := range m.Faces[fi].Loops {
			bw.u32(pool.Index(li))
		}
	}
}
