package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfielding/dcmrmel.go/pkg/dicom"
	"github.com/jpfielding/dcmrmel.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmrmel.go/pkg/dicom/transfer"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRoot(context.Background(), "test")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeScan(t *testing.T, path string) {
	t.Helper()
	f := dicom.NewFile(transfer.ExplicitVRLittleEndian)
	f.Meta.Add(
		dicom.NewElement(tag.FileMetaInformationGroupLength, "UL", make([]byte, 4)),
		dicom.NewStringElement(tag.MediaStorageSOPClassUID, "UI", "1.2.840.10008.5.1.4.1.1.4"),
		dicom.NewStringElement(tag.MediaStorageSOPInstanceUID, "UI", "1.2.3.4"),
		dicom.NewStringElement(tag.TransferSyntaxUID, "UI", string(transfer.ExplicitVRLittleEndian)),
	)
	f.Dataset.Add(
		dicom.NewStringElement(tag.PatientName, "PN", "SURNAME^Firstname"),
		dicom.NewStringElement(tag.RepetitionTime, "DS", "2000"),
	)
	require.NoError(t, dicom.WriteFile(path, f))
}

func TestRoot_NoArgsShowsHelp(t *testing.T) {
	out, err := run(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "dcmrmel [flags] FILE-or-DIR")
}

func TestRoot_RemoveTag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.dcm")
	writeScan(t, path)

	out, err := run(t, path, "--rm-tag", "PatientName")
	require.NoError(t, err)
	assert.Contains(t, out, "* removing tags from 1 files")

	f, err := dicom.ReadFile(path)
	require.NoError(t, err)
	_, ok := f.Dataset.Find(tag.PatientName)
	assert.False(t, ok)
	_, ok = f.Dataset.Find(tag.RepetitionTime)
	assert.True(t, ok)
	assert.FileExists(t, path+".bak")
}

func TestRoot_NoBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.dcm")
	writeScan(t, path)

	_, err := run(t, path, "--no-backup", "--rm-group", "0x0018")
	require.NoError(t, err)
	assert.NoFileExists(t, path+".bak")
}

func TestRoot_BadSelectors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.dcm")
	writeScan(t, path)

	_, err := run(t, path, "--rm-group", "zz")
	assert.ErrorContains(t, err, "invalid group")

	_, err = run(t, path, "--rm-vr", "XX")
	assert.ErrorContains(t, err, "unknown VR")

	_, err = run(t, path, "--rm-tag", "NoSuchKeyword")
	assert.ErrorContains(t, err, "unknown tag")

	// selector errors abort before any file is touched
	assert.NoFileExists(t, path+".bak")
}

func TestRoot_MissingPath(t *testing.T) {
	_, err := run(t, filepath.Join(t.TempDir(), "nope"))
	assert.ErrorContains(t, err, "neither a file nor a directory")
}

func TestRoot_InvalidLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.dcm")
	writeScan(t, path)

	// a bogus level falls back to INFO with a warning; the run proceeds
	_, err := run(t, path, "--log-level", "bogus", "--rm-tag", "PatientName")
	require.NoError(t, err)

	f, err := dicom.ReadFile(path)
	require.NoError(t, err)
	_, ok := f.Dataset.Find(tag.PatientName)
	assert.False(t, ok)
}
