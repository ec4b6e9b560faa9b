package rmel

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jpfielding/dcmrmel.go/pkg/dicom"
)

// The two fatal discovery conditions. Everything else (non-DICOM files in
// a directory) is silently skipped.
var (
	ErrNotFileOrDir = errors.New("is neither a file nor a directory")
	ErrNoDICOMFiles = errors.New("no valid DICOM files found")
)

// Discover returns the DICOM files under path, in directory-walk order.
// A single file is returned iff it sniffs as DICOM; a directory is walked
// recursively with non-DICOM files skipped.
func Discover(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s %w", path, ErrNotFileOrDir)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !(info.Mode().IsRegular() || info.IsDir()) {
		return nil, fmt.Errorf("%s %w", path, ErrNotFileOrDir)
	}

	if !info.IsDir() {
		if !dicom.IsDICOMFile(path) {
			return nil, ErrNoDICOMFiles
		}
		return []string{path}, nil
	}

	var files []string
	walk := func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && dicom.IsDICOMFile(p) {
			files = append(files, p)
		}
		return nil
	}
	if err := filepath.WalkDir(path, walk); err != nil {
		return nil, fmt.Errorf("walking %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, ErrNoDICOMFiles
	}
	return files, nil
}
