package hmdl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/hmdl-cook/pkg/mesh"
)

// Inspection errors.
var (
	ErrTruncatedAsset = errors.New("truncated HMDL data")
	ErrBadTerminator  = errors.New("missing surface terminator")
)

// MaterialInfo is one parsed material table entry.
type MaterialInfo struct {
	Name        string
	ShaderSrc   string
	Textures    []string
	IntProps    []mesh.IntProp
	Transparent bool // Extended mode only
}

// SurfaceInfo summarizes one parsed surface.
type SurfaceInfo struct {
	Material   uint32
	SkinGroups int
	FaceCount  int
}

// Info is the parsed summary of a cooked asset.
type Info struct {
	BBoxMin, BBoxMax mgl32.Vec3
	World            *mgl32.Mat4
	Groups           [][]MaterialInfo
	VertCount        int
	UVLayers         int
	LoopCount        int
	Surfaces         []SurfaceInfo
	Props            []mesh.Prop
}

// Inspect parses a cooked HMDL asset back into a summary, validating the
// section framing and terminator along the way. The layout is not
// self-describing, so the caller must say which mode produced it and
// whether the header carries a world matrix.
func Inspect(data []byte, mode OutputMode, worldMatrix bool) (*Info, error) {
	r := bytes.NewReader(data)
	info := &Info{}

	if err := readVec3(r, &info.BBoxMin); err != nil {
		return nil, err
	}
	if err := readVec3(r, &info.BBoxMax); err != nil {
		return nil, err
	}
	if worldMatrix {
		var world mgl32.Mat4
		for i := 0; i < 16; i++ {
			if err := readF32(r, &world[i]); err != nil {
				return nil, err
			}
		}
		info.World = &world
	}

	groupCount, err := readU32(r)
	if err != nil {
		return nil, err
	}
	for g := uint32(0); g < groupCount; g++ {
		matCount, err := readU32(r)
		if err != nil {
			return nil, err
		}
		var mats []MaterialInfo
		for i := uint32(0); i < matCount; i++ {
			mat, err := readMaterial(r, mode)
			if err != nil {
				return nil, fmt.Errorf("group %d material %d: %w", g, i, err)
			}
			mats = append(mats, mat)
		}
		info.Groups = append(info.Groups, mats)
	}

	if err := readPool(r, info); err != nil {
		return nil, err
	}

	for {
		marker, err := r.ReadByte()
		if err != nil {
			return nil, ErrBadTerminator
		}
		if marker == 0 {
			break
		}
		surf, err := readSurface(r)
		if err != nil {
			return nil, fmt.Errorf("surface %d: %w", len(info.Surfaces), err)
		}
		info.Surfaces = append(info.Surfaces, surf)
	}

	propCount, err := readU32(r)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < propCount; i++ {
		key, err := readString(r)
		if err != nil {
			return nil, err
		}
		val, err := readString(r)
		if err != nil {
			return nil, err
		}
		info.Props = append(info.Props, mesh.Prop{Key: key, Value: val})
	}

	return info, nil
}

func readMaterial(r *bytes.Reader, mode OutputMode) (MaterialInfo, error) {
	var mat MaterialInfo
	var err error
	if mat.Name, err = readString(r); err != nil {
		return mat, err
	}
	if mat.ShaderSrc, err = readString(r); err != nil {
		return mat, err
	}
	texCount, err := readU32(r)
	if err != nil {
		return mat, err
	}
	for i := uint32(0); i < texCount; i++ {
		tex, err := readString(r)
		if err != nil {
			return mat, err
		}
		mat.Textures = append(mat.Textures, tex)
	}
	propCount, err := readU32(r)
	if err != nil {
		return mat, err
	}
	for i := uint32(0); i < propCount; i++ {
		key, err := readString(r)
		if err != nil {
			return mat, err
		}
		var val int32
		if err := binary.Read(r, binary.LittleEndian, &val); err != nil {
			return mat, ErrTruncatedAsset
		}
		mat.IntProps = append(mat.IntProps, mesh.IntProp{Key: key, Value: val})
	}
	if mode == OutputModeExtended {
		flag, err := r.ReadByte()
		if err != nil {
			return mat, ErrTruncatedAsset
		}
		mat.Transparent = flag != 0
	}
	return mat, nil
}

func readPool(r *bytes.Reader, info *Info) error {
	vertCount, err := readU32(r)
	if err != nil {
		return err
	}
	uvLayers, err := readU32(r)
	if err != nil {
		return err
	}
	info.VertCount = int(vertCount)
	info.UVLayers = int(uvLayers)

	for v := uint32(0); v < vertCount; v++ {
		// position + normal + uv layers
		if err := skipF32(r, 6+2*int(uvLayers)); err != nil {
			return err
		}
		weightCount, err := readU32(r)
		if err != nil {
			return err
		}
		if err := skipF32(r, 2*int(weightCount)); err != nil {
			return err
		}
	}

	loopCount, err := readU32(r)
	if err != nil {
		return err
	}
	info.LoopCount = int(loopCount)
	return skipF32(r, int(loopCount))
}

func readSurface(r *bytes.Reader) (SurfaceInfo, error) {
	var surf SurfaceInfo
	var err error
	if surf.Material, err = readU32(r); err != nil {
		return surf, err
	}
	groupCount, err := readU32(r)
	if err != nil {
		return surf, err
	}
	surf.SkinGroups = int(groupCount)
	for g := uint32(0); g < groupCount; g++ {
		pairCount, err := readU32(r)
		if err != nil {
			return surf, err
		}
		if err := skipF32(r, 2*int(pairCount)); err != nil {
			return surf, err
		}
	}
	faceCount, err := readU32(r)
	if err != nil {
		return surf, err
	}
	surf.FaceCount = int(faceCount)
	return surf, skipF32(r, 3*int(faceCount))
}

func readU32(r *bytes.Reader) (uint32, error) {
	var v uint32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, ErrTruncatedAsset
	}
	return v, nil
}

func readF32(r *bytes.Reader, out *float32) error {
	if err := binary.Read(r, binary.LittleEndian, out); err != nil {
		return ErrTruncatedAsset
	}
	return nil
}

func readVec3(r *bytes.Reader, out *mgl32.Vec3) error {
	for i := 0; i < 3; i++ {
		if err := readF32(r, &out[i]); err != nil {
			return err
		}
	}
	return nil
}

// skipF32 skips n 4-byte fields.
func skipF32(r *bytes.Reader, n int) error {
	if r.Len() < n*4 {
		return ErrTruncatedAsset
	}
	_, err := r.Seek(int64(n)*4, 1)
	return err
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	if int(n) > r.Len() {
		return "", ErrTruncatedAsset
	}
	if n == 0 {
		// A zero-length read at end of buffer would report io.EOF.
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := r.Read(buf); err != nil {
		return "", ErrTruncatedAsset
	}
	return string(buf), nil
}
