// Package scanner holds the first-party upload scanners: caption PII
// patterns and image GPS metadata. Parse failures degrade to "no
// detection" rather than propagate.
package scanner

import (
	"regexp"

	"github.com/mlevchenko/riskscan/internal/risk"
)

var (
	emailRe   = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRe   = regexp.MustCompile(`\b(?:\+?1[-.\s]?)?(?:\(?\d{3}\)?[-.\s]?)?\d{3}[-.\s]?\d{4}\b`)
	addressRe = regexp.MustCompile(`(?i)\b\d{1,5}\s+[A-Za-z0-9.'-]+\s+(?:St|Street|Ave|Avenue|Rd|Road|Blvd|Lane|Ln|Drive|Dr|Court|Ct)\b`)
)

// ScanCaption extracts email, phone and street-address occurrences from
// a caption. Every occurrence is reported so count-based scoring works.
func ScanCaption(caption string) []risk.Detection {
	var dets []risk.Detection

	for _, m := range emailRe.FindAllString(caption, -1) {
		dets = append(dets, risk.Detection{Signal: risk.SignalEmail, Value: m})
	}
	for _, m := range phoneRe.FindAllString(caption, -1) {
		dets = append(dets, risk.Detection{Signal: risk.SignalPhone, Value: m})
	}
	for _, m := range addressRe.FindAllString(caption, -1) {
		dets = append(dets, risk.Detection{Signal: risk.SignalAddress, Value: m})
	}

	return dets
}
