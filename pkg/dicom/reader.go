package dicom

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/jpfielding/dcmrmel.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmrmel.go/pkg/dicom/transfer"
	"github.com/jpfielding/dcmrmel.go/pkg/dicom/vr"
)

const magic = "DICM"

const undefinedLength = 0xFFFFFFFF

// reader decodes a dataset in one transfer syntax
type reader struct {
	r          *bufio.Reader
	explicitVR bool
	order      binary.ByteOrder
}

func newReader(r io.Reader, syntax transfer.Syntax) *reader {
	order := binary.ByteOrder(binary.LittleEndian)
	if !syntax.IsLittleEndian() {
		order = binary.BigEndian
	}
	return &reader{
		r:          bufio.NewReader(r),
		explicitVR: syntax.IsExplicitVR(),
		order:      order,
	}
}

// Parse reads a complete DICOM file: preamble, DICM magic, File Meta
// Information and the main dataset in whatever transfer syntax the meta
// declares
func Parse(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)

	f := &File{Meta: NewDataset(), Dataset: NewDataset()}
	if _, err := io.ReadFull(br, f.Preamble[:]); err != nil {
		return nil, fmt.Errorf("failed to read preamble: %w", err)
	}
	var m [4]byte
	if _, err := io.ReadFull(br, m[:]); err != nil {
		return nil, fmt.Errorf("failed to read DICM magic: %w", err)
	}
	if string(m[:]) != magic {
		return nil, errors.New("invalid DICOM file: missing DICM magic")
	}

	// Group 0002 (File Meta Information) is ALWAYS Explicit VR Little Endian
	mr := &reader{r: br, explicitVR: true, order: binary.LittleEndian}
	for {
		head, err := br.Peek(2)
		if len(head) < 2 {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to read file meta: %w", err)
		}
		if !tag.New(binary.LittleEndian.Uint16(head), 0).IsFileMeta() {
			break
		}
		elem, err := mr.readElement()
		if err != nil {
			return nil, fmt.Errorf("failed to read file meta: %w", err)
		}
		f.Meta.Add(elem)
	}

	// Default to Implicit VR if the meta carries no Transfer Syntax UID
	f.syntax = transfer.ImplicitVRLittleEndian
	if e, ok := f.Meta.Find(tag.TransferSyntaxUID); ok {
		f.syntax = transfer.FromUID(e.StringValue())
	}

	body := io.Reader(br)
	syntax := f.syntax
	if syntax.IsDeflated() {
		// Deflated datasets are a raw flate stream of Explicit VR Little Endian
		body = flate.NewReader(br)
		syntax = transfer.ExplicitVRLittleEndian
	}
	if err := newReader(body, syntax).readDataset(f.Dataset); err != nil {
		return nil, err
	}
	return f, nil
}

// readDataset reads elements until the input is exhausted
func (r *reader) readDataset(ds *Dataset) error {
	for {
		t, err := r.readTag()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tag: %w", err)
		}
		elem, err := r.readElementWithTag(t)
		if err != nil {
			return fmt.Errorf("failed to read element %v: %w", t, err)
		}
		ds.Add(elem)
	}
}

func (r *reader) readElement() (*Element, error) {
	t, err := r.readTag()
	if err != nil {
		return nil, err
	}
	return r.readElementWithTag(t)
}

// readElementWithTag reads a DICOM element after the tag has been read
func (r *reader) readElementWithTag(t Tag) (*Element, error) {
	vrCode, vl, err := r.readVRLength(t)
	if err != nil {
		return nil, err
	}

	switch {
	case vrCode == string(vr.SQ):
		items, err := r.readSequence(vl)
		if err != nil {
			return nil, err
		}
		return &Element{Tag: t, VR: vrCode, Items: items, undefinedLength: vl == undefinedLength}, nil
	case vl == undefinedLength:
		// Encapsulated pixel data: the item framing is carried through
		// verbatim, delimiter included
		raw, err := r.readUndefinedLengthValue()
		if err != nil {
			return nil, err
		}
		return &Element{Tag: t, VR: vrCode, Value: raw, undefinedLength: true}, nil
	default:
		data := make([]byte, vl)
		if _, err := io.ReadFull(r.r, data); err != nil {
			return nil, err
		}
		return &Element{Tag: t, VR: vrCode, Value: data}, nil
	}
}

// readTag reads a DICOM tag
func (r *reader) readTag() (Tag, error) {
	var b [4]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return Tag{}, err
	}
	return Tag{Group: r.order.Uint16(b[0:2]), Element: r.order.Uint16(b[2:4])}, nil
}

// readVRLength reads the VR and value length that follow a tag
func (r *reader) readVRLength(t Tag) (string, uint32, error) {
	if !r.explicitVR {
		// Implicit VR: VL is always 4 bytes, VR comes from the dictionary
		var b [4]byte
		if _, err := io.ReadFull(r.r, b[:]); err != nil {
			return "", 0, err
		}
		vl := r.order.Uint32(b[:])
		vrCode := implicitVR(t)
		if vl == undefinedLength && t != tag.PixelData {
			// Undefined length outside pixel data means a sequence
			vrCode = string(vr.SQ)
		}
		return vrCode, vl, nil
	}

	var vrBytes [2]byte
	if _, err := io.ReadFull(r.r, vrBytes[:]); err != nil {
		return "", 0, err
	}
	vrCode := string(vrBytes[:])
	if vr.VR(vrCode).IsExplicitLength() {
		// VL is 2 bytes
		var b [2]byte
		if _, err := io.ReadFull(r.r, b[:]); err != nil {
			return "", 0, err
		}
		return vrCode, uint32(r.order.Uint16(b[:])), nil
	}
	// Reserved 2 bytes, then a 4-byte VL
	var b [6]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return "", 0, err
	}
	return vrCode, r.order.Uint32(b[2:6]), nil
}

// implicitVR resolves an element's VR from the data dictionary when the
// transfer syntax carries none
func implicitVR(t Tag) string {
	if info, ok := tag.Find(t); ok {
		return info.VR
	}
	return string(vr.UN)
}

// readSequence reads the items of an SQ element, defined or undefined length
func (r *reader) readSequence(vl uint32) ([]*Dataset, error) {
	if vl == undefinedLength {
		return r.readSequenceItems()
	}
	// Defined-length sequence: items occupy exactly vl bytes
	data := make([]byte, vl)
	if _, err := io.ReadFull(r.r, data); err != nil {
		return nil, err
	}
	sub := &reader{r: bufio.NewReader(bytes.NewReader(data)), explicitVR: r.explicitVR, order: r.order}
	return sub.readSequenceItems()
}

// readSequenceItems reads items until the Sequence Delimitation Item
// (FFFE,E0DD) or the end of the input
func (r *reader) readSequenceItems() ([]*Dataset, error) {
	var items []*Dataset
	for {
		t, err := r.readTag()
		if err == io.EOF {
			return items, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading sequence item tag: %w", err)
		}
		var b [4]byte
		if _, err := io.ReadFull(r.r, b[:]); err != nil {
			return nil, fmt.Errorf("reading item length: %w", err)
		}
		vl := r.order.Uint32(b[:])

		switch t {
		case tag.SequenceDelimitationItem:
			return items, nil
		case tag.Item:
			item, err := r.readItem(vl)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		default:
			return nil, fmt.Errorf("expected item tag, got %v", t)
		}
	}
}

// readItem reads a single sequence item as a nested dataset
func (r *reader) readItem(vl uint32) (*Dataset, error) {
	item := NewDataset()
	if vl == undefinedLength {
		// Undefined length item: elements until Item Delimitation (FFFE,E00D)
		item.undefinedLength = true
		for {
			t, err := r.readTag()
			if err != nil {
				return nil, fmt.Errorf("reading item element tag: %w", err)
			}
			if t == tag.ItemDelimitationItem {
				var b [4]byte
				if _, err := io.ReadFull(r.r, b[:]); err != nil {
					return nil, err
				}
				return item, nil
			}
			elem, err := r.readElementWithTag(t)
			if err != nil {
				return nil, err
			}
			item.Add(elem)
		}
	}

	data := make([]byte, vl)
	if _, err := io.ReadFull(r.r, data); err != nil {
		return nil, err
	}
	sub := &reader{r: bufio.NewReader(bytes.NewReader(data)), explicitVR: r.explicitVR, order: r.order}
	if err := sub.readDataset(item); err != nil {
		return nil, err
	}
	return item, nil
}

// readUndefinedLengthValue captures an encapsulated pixel data value as the
// raw item stream, including the trailing sequence delimiter
func (r *reader) readUndefinedLengthValue() ([]byte, error) {
	var buf bytes.Buffer
	for {
		t, err := r.readTag()
		if err != nil {
			return nil, fmt.Errorf("reading pixel data item tag: %w", err)
		}
		var b [4]byte
		if _, err := io.ReadFull(r.r, b[:]); err != nil {
			return nil, fmt.Errorf("reading pixel data item length: %w", err)
		}
		vl := r.order.Uint32(b[:])

		var tb [4]byte
		r.order.PutUint16(tb[0:2], t.Group)
		r.order.PutUint16(tb[2:4], t.Element)
		buf.Write(tb[:])
		buf.Write(b[:])

		if t == tag.SequenceDelimitationItem {
			return buf.Bytes(), nil
		}
		if t != tag.Item {
			return nil, fmt.Errorf("expected item tag, got %v", t)
		}
		if _, err := io.CopyN(&buf, r.r, int64(vl)); err != nil {
			return nil, fmt.Errorf("reading pixel data frame: %w", err)
		}
	}
}
