package rmel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfielding/dcmrmel.go/pkg/dicom"
	"github.com/jpfielding/dcmrmel.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmrmel.go/pkg/dicom/transfer"
)

func TestParseVRs(t *testing.T) {
	vrs, err := ParseVRs([]string{"da", "PN"})
	require.NoError(t, err)
	assert.Equal(t, []string{"DA", "PN"}, vrs)

	_, err = ParseVRs([]string{"XX"})
	assert.ErrorContains(t, err, "unknown VR")
}

func TestParseGroups(t *testing.T) {
	groups, err := ParseGroups([]string{"0x0018", "0010"})
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x0018, 0x0010}, groups)

	_, err = ParseGroups([]string{"zz"})
	assert.ErrorContains(t, err, "invalid group")

	_, err = ParseGroups([]string{"0x10000"})
	assert.Error(t, err)
}

func TestParseTags(t *testing.T) {
	tags, err := ParseTags([]string{"PatientName", "0x00180080"})
	require.NoError(t, err)
	assert.Equal(t, []tag.Tag{tag.PatientName, tag.RepetitionTime}, tags)

	_, err = ParseTags([]string{"NoSuchKeyword"})
	assert.Error(t, err)
}

func testDICOM() *dicom.File {
	f := dicom.NewFile(transfer.ExplicitVRLittleEndian)
	f.Meta.Add(
		dicom.NewElement(tag.FileMetaInformationGroupLength, "UL", make([]byte, 4)),
		dicom.NewStringElement(tag.MediaStorageSOPClassUID, "UI", "1.2.840.10008.5.1.4.1.1.4"),
		dicom.NewStringElement(tag.MediaStorageSOPInstanceUID, "UI", "1.2.3.4"),
		dicom.NewStringElement(tag.TransferSyntaxUID, "UI", string(transfer.ExplicitVRLittleEndian)),
		dicom.NewStringElement(tag.ImplementationVersionName, "SH", "report"),
	)
	f.Dataset.Add(
		dicom.NewStringElement(tag.StudyDate, "DA", "20220101"),
		dicom.NewStringElement(tag.PatientName, "PN", "SURNAME^Firstname"),
		dicom.NewStringElement(tag.PatientID, "LO", "ABC12345678"),
		dicom.NewStringElement(tag.PatientBirthDate, "DA", "19800101"),
		dicom.NewStringElement(tag.RepetitionTime, "DS", "2000"),
		dicom.NewStringElement(tag.EchoTime, "DS", "10"),
		dicom.NewStringElement(tag.New(0x1001, 0x0010), "LO", "Test"),
	)
	return f
}

func TestApply_Tags(t *testing.T) {
	f := testDICOM()
	filter := Filter{Tags: []tag.Tag{tag.RepetitionTime, tag.EchoTime}}
	filter.Apply(f)

	_, ok := f.Dataset.Find(tag.RepetitionTime)
	assert.False(t, ok)
	_, ok = f.Dataset.Find(tag.EchoTime)
	assert.False(t, ok)
	_, ok = f.Dataset.Find(tag.PatientName)
	assert.True(t, ok)
}

func TestApply_VRs(t *testing.T) {
	f := testDICOM()
	filter := Filter{VRs: []string{"DA"}}
	filter.Apply(f)

	_, ok := f.Dataset.Find(tag.StudyDate)
	assert.False(t, ok)
	_, ok = f.Dataset.Find(tag.PatientBirthDate)
	assert.False(t, ok)
	_, ok = f.Dataset.Find(tag.PatientID)
	assert.True(t, ok)
}

func TestApply_VRsReachMeta(t *testing.T) {
	f := testDICOM()
	filter := Filter{VRs: []string{"SH"}}
	filter.Apply(f)

	_, ok := f.Meta.Find(tag.ImplementationVersionName)
	assert.False(t, ok)
	_, ok = f.Meta.Find(tag.TransferSyntaxUID)
	assert.True(t, ok)
}

func TestApply_Groups(t *testing.T) {
	f := testDICOM()
	filter := Filter{Groups: []uint16{0x0018}}
	filter.Apply(f)

	_, ok := f.Dataset.Find(tag.RepetitionTime)
	assert.False(t, ok)
	_, ok = f.Dataset.Find(tag.EchoTime)
	assert.False(t, ok)
	_, ok = f.Dataset.Find(tag.StudyDate)
	assert.True(t, ok)
}

func TestApply_Private(t *testing.T) {
	f := testDICOM()
	filter := Filter{Private: true}
	filter.Apply(f)

	_, ok := f.Dataset.Find(tag.New(0x1001, 0x0010))
	assert.False(t, ok)
	_, ok = f.Dataset.Find(tag.PatientName)
	assert.True(t, ok)
}

func TestApply_Idempotent(t *testing.T) {
	f := testDICOM()
	filter := Filter{Private: true, VRs: []string{"DA"}, Groups: []uint16{0x0018}, Tags: []tag.Tag{tag.PatientName}}

	filter.Apply(f)
	var first bytes.Buffer
	require.NoError(t, dicom.Write(&first, f))

	filter.Apply(f)
	var second bytes.Buffer
	require.NoError(t, dicom.Write(&second, f))

	assert.Equal(t, first.Bytes(), second.Bytes())
}
