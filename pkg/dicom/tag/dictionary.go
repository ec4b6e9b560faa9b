package tag

import (
	"fmt"
	"strconv"
	"strings"
)

// Info is a data-dictionary entry for a standard tag.
type Info struct {
	Tag     Tag
	Keyword string
	VR      string
}

// The dictionary covers the tags this library reads under Implicit VR and
// the keywords users commonly pass on the command line. Unknown tags fall
// back to VR "UN" and pass through untouched.
var entries = []Info{
	{FileMetaInformationGroupLength, "FileMetaInformationGroupLength", "UL"},
	{FileMetaInformationVersion, "FileMetaInformationVersion", "OB"},
	{MediaStorageSOPClassUID, "MediaStorageSOPClassUID", "UI"},
	{MediaStorageSOPInstanceUID, "MediaStorageSOPInstanceUID", "UI"},
	{TransferSyntaxUID, "TransferSyntaxUID", "UI"},
	{ImplementationClassUID, "ImplementationClassUID", "UI"},
	{ImplementationVersionName, "ImplementationVersionName", "SH"},
	{SpecificCharacterSet, "SpecificCharacterSet", "CS"},

	{ImageType, "ImageType", "CS"},
	{InstanceCreationDate, "InstanceCreationDate", "DA"},
	{InstanceCreationTime, "InstanceCreationTime", "TM"},
	{SOPClassUID, "SOPClassUID", "UI"},
	{SOPInstanceUID, "SOPInstanceUID", "UI"},
	{StudyDate, "StudyDate", "DA"},
	{SeriesDate, "SeriesDate", "DA"},
	{ContentDate, "ContentDate", "DA"},
	{StudyTime, "StudyTime", "TM"},
	{SeriesTime, "SeriesTime", "TM"},
	{ContentTime, "ContentTime", "TM"},
	{AccessionNumber, "AccessionNumber", "SH"},
	{Modality, "Modality", "CS"},
	{Manufacturer, "Manufacturer", "LO"},
	{InstitutionName, "InstitutionName", "LO"},
	{ReferringPhysicianName, "ReferringPhysicianName", "PN"},
	{StationName, "StationName", "SH"},
	{StudyDescription, "StudyDescription", "LO"},
	{SeriesDescription, "SeriesDescription", "LO"},
	{ManufacturerModelName, "ManufacturerModelName", "LO"},
	{ReferencedSeriesSequence, "ReferencedSeriesSequence", "SQ"},
	{ReferencedImageSequence, "ReferencedImageSequence", "SQ"},
	{ReferencedSOPClassUID, "ReferencedSOPClassUID", "UI"},
	{ReferencedSOPInstanceUID, "ReferencedSOPInstanceUID", "UI"},

	{PatientName, "PatientName", "PN"},
	{PatientID, "PatientID", "LO"},
	{PatientBirthDate, "PatientBirthDate", "DA"},
	{PatientSex, "PatientSex", "CS"},
	{PatientAge, "PatientAge", "AS"},
	{PatientComments, "PatientComments", "LT"},

	{SliceThickness, "SliceThickness", "DS"},
	{KVP, "KVP", "DS"},
	{RepetitionTime, "RepetitionTime", "DS"},
	{EchoTime, "EchoTime", "DS"},
	{DeviceSerialNumber, "DeviceSerialNumber", "LO"},
	{SoftwareVersions, "SoftwareVersions", "LO"},
	{ExposureTime, "ExposureTime", "IS"},

	{StudyInstanceUID, "StudyInstanceUID", "UI"},
	{SeriesInstanceUID, "SeriesInstanceUID", "UI"},
	{StudyID, "StudyID", "SH"},
	{SeriesNumber, "SeriesNumber", "IS"},
	{InstanceNumber, "InstanceNumber", "IS"},
	{ImagePositionPatient, "ImagePositionPatient", "DS"},
	{ImageOrientationPatient, "ImageOrientationPatient", "DS"},
	{FrameOfReferenceUID, "FrameOfReferenceUID", "UI"},
	{PositionReferenceIndicator, "PositionReferenceIndicator", "LO"},
	{SliceLocation, "SliceLocation", "DS"},
	{ImageComments, "ImageComments", "LT"},

	{SamplesPerPixel, "SamplesPerPixel", "US"},
	{PhotometricInterpretation, "PhotometricInterpretation", "CS"},
	{NumberOfFrames, "NumberOfFrames", "IS"},
	{Rows, "Rows", "US"},
	{Columns, "Columns", "US"},
	{PixelSpacing, "PixelSpacing", "DS"},
	{BitsAllocated, "BitsAllocated", "US"},
	{BitsStored, "BitsStored", "US"},
	{HighBit, "HighBit", "US"},
	{PixelRepresentation, "PixelRepresentation", "US"},
	{WindowCenter, "WindowCenter", "DS"},
	{WindowWidth, "WindowWidth", "DS"},
	{RescaleIntercept, "RescaleIntercept", "DS"},
	{RescaleSlope, "RescaleSlope", "DS"},

	{PerformedProcedureStepDescription, "PerformedProcedureStepDescription", "LO"},
	{PixelData, "PixelData", "OW"},
}

var (
	byKeyword = make(map[string]Info, len(entries))
	byTag     = make(map[Tag]Info, len(entries))
)

func init() {
	for _, e := range entries {
		byKeyword[e.Keyword] = e
		byTag[e.Tag] = e
	}
}

// Find returns the dictionary entry for a tag
func Find(t Tag) (Info, bool) {
	info, ok := byTag[t]
	return info, ok
}

// FindByKeyword returns the dictionary entry for a keyword
func FindByKeyword(keyword string) (Info, bool) {
	info, ok := byKeyword[keyword]
	return info, ok
}

// Parse resolves a user-supplied tag string: either a data-dictionary
// keyword (e.g. RepetitionTime) or a combined group/element hex literal
// (e.g. 0x00180080).
func Parse(s string) (Tag, error) {
	if info, ok := FindByKeyword(s); ok {
		return info.Tag, nil
	}
	hex := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(hex) == 8 {
		if v, err := strconv.ParseUint(hex, 16, 32); err == nil {
			return New(uint16(v>>16), uint16(v)), nil
		}
	}
	return Tag{}, fmt.Errorf("unknown tag %q", s)
}
