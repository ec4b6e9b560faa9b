package dicom

import (
	"strings"

	"github.com/jpfielding/dcmrmel.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmrmel.go/pkg/dicom/vr"
)

// Element represents a single DICOM element. Non-sequence values are kept
// as the raw bytes read from disk so untouched elements re-serialize
// byte-identically. Sequence elements carry parsed items instead.
type Element struct {
	Tag   Tag
	VR    string
	Value []byte
	Items []*Dataset // sequence items when VR is SQ

	// undefinedLength marks an element read with VL 0xFFFFFFFF. For
	// encapsulated pixel data, Value then includes the item framing and
	// trailing sequence delimiter, re-emitted verbatim. For sequences it
	// records the length form so write-back keeps the original framing.
	undefinedLength bool
}

// Tag alias to avoid duplication
type Tag = tag.Tag

// NewElement creates an element carrying raw value bytes, padding an odd
// length to even per the standard (NUL for UI and binary VRs, space for
// other string VRs).
func NewElement(t Tag, vrCode string, value []byte) *Element {
	if len(value)%2 != 0 {
		pad := byte(' ')
		if v := vr.VR(vrCode); v.IsBinary() || v == vr.UI {
			pad = 0
		}
		value = append(append([]byte{}, value...), pad)
	}
	return &Element{Tag: t, VR: vrCode, Value: value}
}

// NewStringElement creates an element from a string value
func NewStringElement(t Tag, vrCode, value string) *Element {
	return NewElement(t, vrCode, []byte(value))
}

// NewSequence creates an SQ element with the given items, encoded with
// undefined length and defined-length items
func NewSequence(t Tag, items ...*Dataset) *Element {
	return &Element{Tag: t, VR: string(vr.SQ), Items: items, undefinedLength: true}
}

// IsSequence returns true if this element is a sequence of items
func (e *Element) IsSequence() bool {
	return vr.VR(e.VR).IsSequence()
}

// StringValue returns the value as a string with trailing padding removed
func (e *Element) StringValue() string {
	return strings.TrimRight(string(e.Value), " \x00")
}
