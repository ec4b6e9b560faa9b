package dicom

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/jpfielding/dcmrmel.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmrmel.go/pkg/dicom/transfer"
	"github.com/jpfielding/dcmrmel.go/pkg/dicom/vr"
)

// Write serializes a file in its original transfer syntax: preamble, DICM
// magic, File Meta Information (always Explicit VR Little Endian, group
// length recomputed) and the main dataset. The whole file is encoded in
// memory before a single write to w.
func Write(w io.Writer, f *File) error {
	var out bytes.Buffer
	out.Write(f.Preamble[:])
	out.WriteString(magic)

	if err := writeMeta(&out, f.Meta); err != nil {
		return err
	}

	syntax := f.syntax
	if syntax == "" {
		syntax = transfer.ExplicitVRLittleEndian
	}
	if syntax.IsDeflated() {
		var body bytes.Buffer
		bw := newWriter(&body, transfer.ExplicitVRLittleEndian)
		if err := bw.writeDataset(f.Dataset); err != nil {
			return err
		}
		zw, err := flate.NewWriter(&out, flate.DefaultCompression)
		if err != nil {
			return err
		}
		if _, err := zw.Write(body.Bytes()); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return err
		}
	} else {
		dw := newWriter(&out, syntax)
		if err := dw.writeDataset(f.Dataset); err != nil {
			return err
		}
	}

	_, err := w.Write(out.Bytes())
	return err
}

// writeMeta writes the File Meta Information group. The group length
// element (0002,0000), when present, is recomputed from the encoded length
// of the elements that follow it, so the meta stays consistent after
// removal passes have touched group 0002.
func writeMeta(out *bytes.Buffer, meta *Dataset) error {
	var body bytes.Buffer
	bw := newWriter(&body, transfer.ExplicitVRLittleEndian)
	for _, e := range meta.Elements {
		if e.Tag == tag.FileMetaInformationGroupLength {
			continue
		}
		if err := bw.writeElement(e); err != nil {
			return fmt.Errorf("failed to write file meta element %v: %w", e.Tag, err)
		}
	}
	if _, ok := meta.Find(tag.FileMetaInformationGroupLength); ok {
		var gl [4]byte
		binary.LittleEndian.PutUint32(gl[:], uint32(body.Len()))
		gw := newWriter(out, transfer.ExplicitVRLittleEndian)
		elem := NewElement(tag.FileMetaInformationGroupLength, string(vr.UL), gl[:])
		if err := gw.writeElement(elem); err != nil {
			return err
		}
	}
	out.Write(body.Bytes())
	return nil
}

// writer encodes a dataset in one transfer syntax
type writer struct {
	w          *bytes.Buffer
	explicitVR bool
	order      binary.ByteOrder
}

func newWriter(w *bytes.Buffer, syntax transfer.Syntax) *writer {
	order := binary.ByteOrder(binary.LittleEndian)
	if !syntax.IsLittleEndian() {
		order = binary.BigEndian
	}
	return &writer{
		w:          w,
		explicitVR: syntax.IsExplicitVR(),
		order:      order,
	}
}

func (w *writer) writeDataset(ds *Dataset) error {
	for _, e := range ds.Elements {
		if err := w.writeElement(e); err != nil {
			return fmt.Errorf("failed to write element %v: %w", e.Tag, err)
		}
	}
	return nil
}

func (w *writer) writeElement(e *Element) error {
	w.writeTag(e.Tag)
	switch {
	case e.IsSequence():
		return w.writeSequence(e)
	case e.undefinedLength:
		if err := w.writeVRLength(e.VR, undefinedLength); err != nil {
			return err
		}
		w.w.Write(e.Value)
		return nil
	default:
		if len(e.Value)%2 != 0 {
			return fmt.Errorf("odd value length %d", len(e.Value))
		}
		if err := w.writeVRLength(e.VR, uint32(len(e.Value))); err != nil {
			return err
		}
		w.w.Write(e.Value)
		return nil
	}
}

func (w *writer) writeTag(t Tag) {
	var b [4]byte
	w.order.PutUint16(b[0:2], t.Group)
	w.order.PutUint16(b[2:4], t.Element)
	w.w.Write(b[:])
}

func (w *writer) writeVRLength(vrCode string, vl uint32) error {
	if !w.explicitVR {
		// Implicit VR: VL is always 4 bytes, no VR on the wire
		var b [4]byte
		w.order.PutUint32(b[:], vl)
		w.w.Write(b[:])
		return nil
	}
	if len(vrCode) != 2 {
		return fmt.Errorf("invalid VR %q", vrCode)
	}
	w.w.WriteString(vrCode)
	if vr.VR(vrCode).IsExplicitLength() {
		if vl > 0xFFFF {
			return fmt.Errorf("value too long for VR %s: %d bytes", vrCode, vl)
		}
		var b [2]byte
		w.order.PutUint16(b[:], uint16(vl))
		w.w.Write(b[:])
		return nil
	}
	// Reserved 2 bytes (0x00), then a 4-byte VL
	var b [6]byte
	w.order.PutUint32(b[2:6], vl)
	w.w.Write(b[:])
	return nil
}

// writeSequence emits an SQ element, keeping the length form the sequence
// and each of its items were read with
func (w *writer) writeSequence(e *Element) error {
	var body bytes.Buffer
	sq := &writer{w: &body, explicitVR: w.explicitVR, order: w.order}
	for _, item := range e.Items {
		var ibody bytes.Buffer
		iw := &writer{w: &ibody, explicitVR: w.explicitVR, order: w.order}
		if err := iw.writeDataset(item); err != nil {
			return fmt.Errorf("failed to encode sequence item: %w", err)
		}
		sq.writeTag(tag.Item)
		var b [4]byte
		if item.undefinedLength {
			sq.order.PutUint32(b[:], undefinedLength)
			body.Write(b[:])
			body.Write(ibody.Bytes())
			sq.writeTag(tag.ItemDelimitationItem)
			body.Write([]byte{0, 0, 0, 0})
			continue
		}
		sq.order.PutUint32(b[:], uint32(ibody.Len()))
		body.Write(b[:])
		body.Write(ibody.Bytes())
	}
	if e.undefinedLength {
		if err := w.writeVRLength(e.VR, undefinedLength); err != nil {
			return err
		}
		w.w.Write(body.Bytes())
		w.writeTag(tag.SequenceDelimitationItem)
		w.w.Write([]byte{0, 0, 0, 0})
		return nil
	}
	if err := w.writeVRLength(e.VR, uint32(body.Len())); err != nil {
		return err
	}
	w.w.Write(body.Bytes())
	return nil
}
