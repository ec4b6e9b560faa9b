package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Tag
	}{
		{"PatientName", Tag{0x0010, 0x0010}},
		{"RepetitionTime", Tag{0x0018, 0x0080}},
		{"00180081", Tag{0x0018, 0x0081}},
		{"0x00100020", Tag{0x0010, 0x0020}},
		{"7FE00010", Tag{0x7FE0, 0x0010}},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "NotARealKeyword", "0018", "0018008", "zzzzzzzz"} {
		_, err := Parse(in)
		assert.Error(t, err, in)
	}
}

func TestFind(t *testing.T) {
	info, ok := Find(EchoTime)
	require.True(t, ok)
	assert.Equal(t, "EchoTime", info.Keyword)
	assert.Equal(t, "DS", info.VR)

	_, ok = Find(New(0x1001, 0x1001))
	assert.False(t, ok)
}

func TestIsPrivate(t *testing.T) {
	assert.True(t, New(0x1001, 0x0010).IsPrivate())
	assert.True(t, New(0x0009, 0x0001).IsPrivate())
	assert.False(t, PatientName.IsPrivate())
	assert.False(t, New(0x0002, 0x0010).IsPrivate())
}

func TestString(t *testing.T) {
	assert.Equal(t, "(0010,0010)", PatientName.String())
	assert.Equal(t, "(fffe,e000)", Item.String())
}
