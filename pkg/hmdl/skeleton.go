package hmdl

import (
	"hash/crc32"
	"io"

	"github.com/Faultbox/hmdl-cook/pkg/mesh"
)

// boneRecordSize returns the serialized size of one bone record in bytes.
func boneRecordSize(b *mesh.Bone) uint32 {
	// hash + head + parent + child count + children
	return 4 + 12 + 4 + 4 + 4*uint32(len(b.Children))
}

// HashBone returns the wire identifier for a bone name.
func HashBone(name string) uint32 {
	return crc32.ChecksumIEEE([]byte(name))
}

// WriteSkeleton emits the free-form bone tree: bone count, a table of byte
// offsets to each record (relative to the section start), then per bone its
// name hash, head position, parent index (-1 for roots) and child indices.
func WriteSkeleton(w io.Writer, arm *mesh.Armature) error {
	bw := newBinWriter(w)
	bw.u32(uint32(len(arm.Bones)))

	offset := uint32(len(arm.Bones))*4 + 4
	for i := range arm.Bones {
		bw.u32(offset)
		offset += boneRecordSize(&arm.Bones[i])
	}

	for i := range arm.Bones {
		b := &arm.Bones[i]
		bw.u32(HashBone(b.Name))
		bw.vec3(b.Head)
		bw.i32(int32(b.Parent))
		bw.u32(uint32(len(b.Children)))
		for _, child := range b.Children {
			bw.u32(uint32(child))
		}
	}
	return bw.err
}
