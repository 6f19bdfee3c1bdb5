package scanner

import (
	"fmt"
	"io"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/mlevchenko/riskscan/internal/risk"
)

// ScanImageGPS reads EXIF metadata from an uploaded image and, when GPS
// coordinates are embedded, returns a gps detection with the formatted
// coordinate pair. Images without EXIF or without GPS tags, and images
// that fail to parse at all, yield no detection.
func ScanImageGPS(r io.Reader) *risk.Detection {
	x, err := exif.Decode(r)
	if err != nil {
		return nil
	}

	lat, long, err := x.LatLong()
	if err != nil {
		return nil
	}

	return &risk.Detection{
		Signal: risk.SignalGPS,
		Value:  fmt.Sprintf("%.6f,%.6f", lat, long),
	}
}
