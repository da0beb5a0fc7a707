package hmdl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/hmdl-cook/pkg/mesh"
)

// Material errors.
var (
	ErrUnevenMaterialSet     = errors.New("uneven material variant set")
	ErrMalformedMaterialName = errors.New("malformed material variant name")
)

// SortMaterialsByPass returns material slot indices ordered by ascending
// pass index. Ties resolve to the smaller slot index so repeated cooks of
// the same mesh stay byte-identical.
func SortMaterialsByPass(mats []mesh.Material) []int {
	remaining := make([]bool, len(mats))
	for i := range remaining {
		remaining[i] = true
	}

	sorted := make([]int, 0, len(mats))
	for range mats {
		min := -1
		for idx, ok := range remaining {
			if !ok {
				continue
			}
			if min < 0 || mats[idx].PassIndex < mats[min].PassIndex {
				min = idx
			}
		}
		sorted = append(sorted, min)
		remaining[min] = false
	}
	return sorted
}

// VariantName is a parsed <base>_<group>_<slot> material name.
type VariantName struct {
	Base  string
	Group int
	Slot  int
}

// ParseVariantName splits a multi-variant material name. The last two
// underscore tokens must be unsigned integers; the base may itself contain
// underscores.
func ParseVariantName(name string) (VariantName, error) {
	tokens := strings.Split(name, "_")
	if len(tokens) < 3 {
		return VariantName{}, fmt.Errorf("%q: %w", name, ErrMalformedMaterialName)
	}
	group, err := strconv.ParseUint(tokens[len(tokens)-2], 10, 32)
	if err != nil {
		return VariantName{}, fmt.Errorf("%q: %w", name, ErrMalformedMaterialName)
	}
	slot, err := strconv.ParseUint(tokens[len(tokens)-1], 10, 32)
	if err != nil {
		return VariantName{}, fmt.Errorf("%q: %w", name, ErrMalformedMaterialName)
	}
	return VariantName{
		Base:  strings.Join(tokens[:len(tokens)-2], "_"),
		Group: int(group),
		Slot:  int(slot),
	}, nil
}

// FindVariant locates the library material for a (group, slot) pair by its
// name suffix. A missing variant is a hard cook failure.
func FindVariant(library []mesh.Material, group, slot int) (*mesh.Material, error) {
	suffix := fmt.Sprintf("_%d_%d", group, slot)
	for i := range library {
		if !strings.HasSuffix(library[i].Name, suffix) {
			continue
		}
		if _, err := ParseVariantName(library[i].Name); err != nil {
			return nil, err
		}
		return &library[i], nil
	}
	return nil, fmt.Errorf("group %d slot %d: %w", group, slot, ErrUnevenMaterialSet)
}
