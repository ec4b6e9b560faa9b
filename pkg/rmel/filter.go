// Package rmel removes selected elements from DICOM files in place: by
// explicit tag, by value representation, by group number, or all private
// tags at once.
package rmel

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jpfielding/dcmrmel.go/pkg/dicom"
	"github.com/jpfielding/dcmrmel.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmrmel.go/pkg/dicom/vr"
)

// Filter is the set of removal selectors for one run. It is resolved once
// from the command line and applied unchanged to every file.
type Filter struct {
	Private bool
	VRs     []string
	Groups  []uint16
	Tags    []tag.Tag
}

// ParseVRs validates and normalizes user-supplied VR codes (e.g. "DA")
func ParseVRs(args []string) ([]string, error) {
	vrs := make([]string, 0, len(args))
	for _, s := range args {
		code := strings.ToUpper(strings.TrimSpace(s))
		if !vr.Valid(code) {
			return nil, fmt.Errorf("unknown VR %q", s)
		}
		vrs = append(vrs, code)
	}
	return vrs, nil
}

// ParseGroups converts hex group strings such as "0x0010" to group numbers
func ParseGroups(args []string) ([]uint16, error) {
	groups := make([]uint16, 0, len(args))
	for _, s := range args {
		hex := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
		v, err := strconv.ParseUint(hex, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid group %q: %w", s, err)
		}
		groups = append(groups, uint16(v))
	}
	return groups, nil
}

// ParseTags resolves user-supplied tag strings, each either a dictionary
// keyword (e.g. RepetitionTime) or a combined group/element hex literal
// (e.g. 0x00180080)
func ParseTags(args []string) ([]tag.Tag, error) {
	tags := make([]tag.Tag, 0, len(args))
	for _, s := range args {
		t, err := tag.Parse(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// Apply runs the removal passes over a parsed file in fixed order: private
// tags, then VRs, then groups, then explicit tags. The order makes repeated
// runs idempotent and must not change. The VR, group and tag passes also
// cover the File Meta group; private-tag stripping does not, since file
// meta carries no private elements by convention. Deleting an already
// absent element is a no-op, so Apply never fails.
func (f Filter) Apply(file *dicom.File) {
	if f.Private {
		file.Dataset.RemovePrivateTags()
	}
	if len(f.VRs) > 0 {
		match := func(e *dicom.Element) bool { return slices.Contains(f.VRs, e.VR) }
		file.Dataset.RemoveIf(match)
		file.Meta.RemoveIf(match)
	}
	if len(f.Groups) > 0 {
		match := func(e *dicom.Element) bool { return slices.Contains(f.Groups, e.Tag.Group) }
		file.Dataset.RemoveIf(match)
		file.Meta.RemoveIf(match)
	}
	if len(f.Tags) > 0 {
		match := func(e *dicom.Element) bool { return slices.Contains(f.Tags, e.Tag) }
		file.Dataset.RemoveIf(match)
		file.Meta.RemoveIf(match)
	}
}
