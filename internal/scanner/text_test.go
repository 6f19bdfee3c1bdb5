package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlevchenko/riskscan/internal/risk"
)

func TestScanCaption_PhoneAndEmail(t *testing.T) {
	dets := ScanCaption("Call me at 704-555-0199 or email a@b.com")

	require.Len(t, dets, 2)

	bySignal := map[risk.Signal]string{}
	for _, d := range dets {
		bySignal[d.Signal] = d.Value
	}
	assert.Equal(t, "a@b.com", bySignal[risk.SignalEmail])
	assert.Equal(t, "704-555-0199", bySignal[risk.SignalPhone])
}

func TestScanCaption_Address(t *testing.T) {
	dets := ScanCaption("come by 123 Main Street after class")

	require.Len(t, dets, 1)
	assert.Equal(t, risk.SignalAddress, dets[0].Signal)
	assert.Equal(t, "123 Main Street", dets[0].Value)
}

func TestScanCaption_Clean(t *testing.T) {
	assert.Empty(t, ScanCaption("nothing sensitive here"))
	assert.Empty(t, ScanCaption(""))
}

func TestScanCaption_MultipleOccurrences(t *testing.T) {
	dets := ScanCaption("a@b.com c@d.net e@f.org")

	require.Len(t, dets, 3)
	for _, d := range dets {
		assert.Equal(t, risk.SignalEmail, d.Signal)
	}
}

func TestScanImageGPS_NotAnImage(t *testing.T) {
	// Garbage input must degrade to no detection, not an error.
	det := ScanImageGPS(strings.NewReader("definitely not a jpeg"))
	assert.Nil(t, det)
}
