// Package dicom provides a native Go implementation for reading and writing
// DICOM Part 10 files.
//
// This package supplies the file-format concerns the dcmrmel tool depends
// on:
//   - Format sniffing (preamble + DICM magic)
//   - Low-level parsing and writing preserving the original transfer syntax
//   - Ordered datasets with recursive sequence items
//   - Element tree traversal and in-place deletion
//
// Basic usage:
//
//	// Read a DICOM file
//	f, err := dicom.ReadFile("/path/to/file.dcm")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Strip person names, then write back in the original encoding
//	f.Dataset.RemoveIf(func(e *dicom.Element) bool { return e.VR == "PN" })
//	err = dicom.WriteFile("/path/to/file.dcm", f)
package dicom

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/jpfielding/dcmrmel.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmrmel.go/pkg/dicom/transfer"
)

// Re-export commonly used types from subpackages
type (
	// TransferSyntax represents a DICOM transfer syntax
	TransferSyntax = transfer.Syntax
)

// SOP Class UIDs this package treats specially
const (
	// MediaStorageDirectoryStorage identifies a DICOMDIR file-set index
	MediaStorageDirectoryStorage = "1.2.840.10008.1.3.10"
)

// File is a parsed DICOM Part 10 file: the 128-byte preamble, the File Meta
// Information group and the main dataset
type File struct {
	Preamble [128]byte
	Meta     *Dataset
	Dataset  *Dataset

	syntax transfer.Syntax
}

// NewFile creates an empty file whose dataset will be encoded with the
// given transfer syntax
func NewFile(syntax transfer.Syntax) *File {
	return &File{
		Meta:    NewDataset(),
		Dataset: NewDataset(),
		syntax:  syntax,
	}
}

// TransferSyntax returns the transfer syntax the dataset was read with
// (and will be written with)
func (f *File) TransferSyntax() transfer.Syntax {
	return f.syntax
}

// MediaStorageSOPClass returns the Media Storage SOP Class UID from the
// file meta, or "" if absent
func (f *File) MediaStorageSOPClass() string {
	if e, ok := f.Meta.Find(tag.MediaStorageSOPClassUID); ok {
		return e.StringValue()
	}
	return ""
}

// IsDirectoryIndex returns true if the file is a DICOMDIR file-set index
func (f *File) IsDirectoryIndex() bool {
	return f.MediaStorageSOPClass() == MediaStorageDirectoryStorage
}

// IsDICOMFile reports whether the file at path looks like a DICOM Part 10
// file, judged by the DICM magic after the 128-byte preamble
func IsDICOMFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	var probe [132]byte
	if _, err := io.ReadFull(f, probe[:]); err != nil {
		return false
	}
	return bytes.Equal(probe[128:132], []byte(magic))
}

// ReadFile reads and parses a DICOM file from disk. The whole file is read
// into memory; there is no streaming
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// ReadBuffer parses a DICOM file from a byte slice
func ReadBuffer(data []byte) (*File, error) {
	return Parse(bytes.NewReader(data))
}

// WriteFile serializes a file to disk in its original transfer syntax
func WriteFile(path string, f *File) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(out, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
