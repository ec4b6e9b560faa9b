// Package tag defines standard DICOM tags and the data dictionary used
// to resolve keywords and implicit-VR lookups.
package tag

import "fmt"

// Tag represents a DICOM tag with Group and Element
type Tag struct {
	Group   uint16
	Element uint16
}

// New creates a new Tag
func New(group, element uint16) Tag {
	return Tag{Group: group, Element: element}
}

// Equals compares two tags
func (t Tag) Equals(other Tag) bool {
	return t.Group == other.Group && t.Element == other.Element
}

// IsPrivate returns true if this is a private tag (odd group number)
func (t Tag) IsPrivate() bool {
	return t.Group%2 == 1
}

// IsFileMeta returns true if this tag is in the File Meta Information group
func (t Tag) IsFileMeta() bool {
	return t.Group == 0x0002
}

// String renders the tag in the conventional (gggg,eeee) form
func (t Tag) String() string {
	return fmt.Sprintf("(%04x,%04x)", t.Group, t.Element)
}

// Standard DICOM Tags - File Meta Information (Group 0002)
var (
	FileMetaInformationGroupLength = Tag{0x0002, 0x0000}
	FileMetaInformationVersion     = Tag{0x0002, 0x0001}
	MediaStorageSOPClassUID        = Tag{0x0002, 0x0002}
	MediaStorageSOPInstanceUID     = Tag{0x0002, 0x0003}
	TransferSyntaxUID              = Tag{0x0002, 0x0010}
	ImplementationClassUID         = Tag{0x0002, 0x0012}
	ImplementationVersionName      = Tag{0x0002, 0x0013}
	SpecificCharacterSet           = Tag{0x0008, 0x0005}
)

// Patient Module (Group 0010)
var (
	PatientName      = Tag{0x0010, 0x0010}
	PatientID        = Tag{0x0010, 0x0020}
	PatientBirthDate = Tag{0x0010, 0x0030}
	PatientSex       = Tag{0x0010, 0x0040}
	PatientAge       = Tag{0x0010, 0x1010}
	PatientComments  = Tag{0x0010, 0x4000}
)

// General Study Module (Group 0008, 0020)
var (
	StudyDate              = Tag{0x0008, 0x0020}
	StudyTime              = Tag{0x0008, 0x0030}
	AccessionNumber        = Tag{0x0008, 0x0050}
	ReferringPhysicianName = Tag{0x0008, 0x0090}
	StudyDescription       = Tag{0x0008, 0x1030}
	StudyInstanceUID       = Tag{0x0020, 0x000D}
	StudyID                = Tag{0x0020, 0x0010}
)

// General Series Module
var (
	Modality          = Tag{0x0008, 0x0060}
	SeriesInstanceUID = Tag{0x0020, 0x000E}
	SeriesNumber      = Tag{0x0020, 0x0011}
	InstanceNumber    = Tag{0x0020, 0x0013}
	SeriesDescription = Tag{0x0008, 0x103E}
	SeriesDate        = Tag{0x0008, 0x0021}
	SeriesTime        = Tag{0x0008, 0x0031}
)

// General Equipment Module
var (
	Manufacturer          = Tag{0x0008, 0x0070}
	InstitutionName       = Tag{0x0008, 0x0080}
	StationName           = Tag{0x0008, 0x1010}
	ManufacturerModelName = Tag{0x0008, 0x1090}
	DeviceSerialNumber    = Tag{0x0018, 0x1000}
	SoftwareVersions      = Tag{0x0018, 0x1020}
)

// SOP Common Module
var (
	SOPClassUID          = Tag{0x0008, 0x0016}
	SOPInstanceUID       = Tag{0x0008, 0x0018}
	InstanceCreationDate = Tag{0x0008, 0x0012}
	InstanceCreationTime = Tag{0x0008, 0x0013}
)

// Frame of Reference Module
var (
	FrameOfReferenceUID        = Tag{0x0020, 0x0052}
	PositionReferenceIndicator = Tag{0x0020, 0x1040}
)

// Image Pixel Module (Group 0028)
var (
	SamplesPerPixel           = Tag{0x0028, 0x0002}
	PhotometricInterpretation = Tag{0x0028, 0x0004}
	Rows                      = Tag{0x0028, 0x0010}
	Columns                   = Tag{0x0028, 0x0011}
	BitsAllocated             = Tag{0x0028, 0x0100}
	BitsStored                = Tag{0x0028, 0x0101}
	HighBit                   = Tag{0x0028, 0x0102}
	PixelRepresentation       = Tag{0x0028, 0x0103}
	PixelData                 = Tag{0x7FE0, 0x0010}
	NumberOfFrames            = Tag{0x0028, 0x0008}
)

// Acquisition Parameters (Group 0018)
var (
	KVP            = Tag{0x0018, 0x0060}
	RepetitionTime = Tag{0x0018, 0x0080}
	EchoTime       = Tag{0x0018, 0x0081}
	SliceThickness = Tag{0x0018, 0x0050}
	ExposureTime   = Tag{0x0018, 0x1150}
)

// Image Position/Orientation
var (
	ImagePositionPatient    = Tag{0x0020, 0x0032}
	ImageOrientationPatient = Tag{0x0020, 0x0037}
	PixelSpacing            = Tag{0x0028, 0x0030}
	SliceLocation           = Tag{0x0020, 0x1041}
)

// Display and rescale
var (
	WindowCenter     = Tag{0x0028, 0x1050}
	WindowWidth      = Tag{0x0028, 0x1051}
	RescaleIntercept = Tag{0x0028, 0x1052}
	RescaleSlope     = Tag{0x0028, 0x1053}
)

// Content Date/Time
var (
	ImageType     = Tag{0x0008, 0x0008}
	ContentDate   = Tag{0x0008, 0x0023}
	ContentTime   = Tag{0x0008, 0x0033}
	ImageComments = Tag{0x0020, 0x4000}
)

// Procedure Step (Group 0040)
var (
	PerformedProcedureStepDescription = Tag{0x0040, 0x0254}
)

// Referenced instances
var (
	ReferencedSOPClassUID    = Tag{0x0008, 0x1150}
	ReferencedSOPInstanceUID = Tag{0x0008, 0x1155}
	ReferencedSeriesSequence = Tag{0x0008, 0x1115}
	ReferencedImageSequence  = Tag{0x0008, 0x1140}
)

// Sequence delimiters
var (
	Item                     = Tag{0xFFFE, 0xE000}
	ItemDelimitationItem     = Tag{0xFFFE, 0xE00D}
	SequenceDelimitationItem = Tag{0xFFFE, 0xE0DD}
)
