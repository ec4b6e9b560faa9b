package rmel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfielding/dcmrmel.go/pkg/dicom"
)

func TestDiscover_MissingPath(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "no-such-path"))
	assert.ErrorIs(t, err, ErrNotFileOrDir)
}

func TestDiscover_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.dcm")
	require.NoError(t, dicom.WriteFile(path, testDICOM()))

	files, err := Discover(path)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestDiscover_SingleFileNotDICOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("not a dicom file"), 0o644))

	_, err := Discover(path)
	assert.ErrorIs(t, err, ErrNoDICOMFiles)
}

func TestDiscover_Directory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "series1")
	require.NoError(t, os.Mkdir(sub, 0o755))

	a := filepath.Join(dir, "a.dcm")
	b := filepath.Join(sub, "b.dcm")
	require.NoError(t, dicom.WriteFile(a, testDICOM()))
	require.NoError(t, dicom.WriteFile(b, testDICOM()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "not_dicom"), []byte("nope"), 0o644))

	files, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, files)
}

func TestDiscover_DirectoryWithoutDICOM(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme"), []byte("hi"), 0o644))

	_, err := Discover(dir)
	assert.ErrorIs(t, err, ErrNoDICOMFiles)
}

func TestDiscover_StatFailure(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	// a path routed through a regular file fails stat with ENOTDIR,
	// which is a stat failure, not a missing path
	_, err := Discover(filepath.Join(file, "child"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFileOrDir)
	assert.ErrorContains(t, err, "stat")
}
