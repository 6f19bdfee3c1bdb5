package risk

import (
	"fmt"
	"sort"
	"strings"
)

// Signal is a class of privacy-exposure evidence found in content.
type Signal string

// Platform-ingestion signals (caption pattern classes).
const (
	SignalLocation  Signal = "possible_location"
	SignalContact   Signal = "contact_info"
	SignalSchedule  Signal = "schedule_time"
	SignalWorkplace Signal = "workplace"
)

// Direct-upload signals (PII scanners plus image GPS metadata).
const (
	SignalEmail   Signal = "email"
	SignalPhone   Signal = "phone"
	SignalAddress Signal = "address"
	SignalGPS     Signal = "gps"
)

// Band is the discrete severity classification derived from a score.
type Band string

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// Detection is one piece of evidence: the signal class and the matched
// text (or coordinate string for GPS).
type Detection struct {
	Signal Signal
	Value  string
}

// Policy is a scoring strategy: a weight table, an occurrence cap and
// band thresholds. The two historically divergent scoring modes are
// expressed as two instances of this one type.
type Policy struct {
	Name string
	// Weights maps each scoreable signal to its contribution.
	Weights map[Signal]float64
	// CountCap limits how many occurrences of one signal count toward
	// the score. Zero means presence-only: a signal contributes its
	// weight once no matter how often it matched.
	CountCap int
	// MediumAt and HighAt are inclusive lower bounds for the medium and
	// high bands.
	MediumAt float64
	HighAt   float64
}

// PlatformPolicy scores captions of platform-ingested videos. Each
// present signal class contributes a fixed weight once.
var PlatformPolicy = Policy{
	Name: "platform",
	Weights: map[Signal]float64{
		SignalLocation:  40,
		SignalContact:   25,
		SignalSchedule:  20,
		SignalWorkplace: 15,
	},
	MediumAt: 20,
	HighAt:   50,
}

// UploadPolicy scores directly-uploaded captions plus image GPS
// metadata. Occurrences count, capped at three per signal.
var UploadPolicy = Policy{
	Name: "upload",
	Weights: map[Signal]float64{
		SignalEmail:   20,
		SignalPhone:   20,
		SignalAddress: 30,
		SignalGPS:     40,
	},
	CountCap: 3,
	MediumAt: 60,
	HighAt:   90,
}

// Score sums the detections under this policy. It returns the total and
// one human-readable reason per contributing signal, in a stable order.
func (p Policy) Score(dets []Detection) (float64, []string) {
	counts := make(map[Signal]int)
	for _, d := range dets {
		if _, ok := p.Weights[d.Signal]; !ok {
			continue
		}
		counts[d.Signal]++
	}

	signals := make([]Signal, 0, len(counts))
	for s := range counts {
		signals = append(signals, s)
	}
	sort.Slice(signals, func(i, j int) bool { return signals[i] < signals[j] })

	var total float64
	reasons := make([]string, 0, len(signals))
	for _, s := range signals {
		c := counts[s]
		effective := 1
		if p.CountCap > 0 {
			effective = c
			if effective > p.CountCap {
				effective = p.CountCap
			}
		}
		add := p.Weights[s] * float64(effective)
		total += add
		reasons = append(reasons, fmt.Sprintf("%s detected x%d (+%.0f)", strings.ToUpper(string(s)), c, add))
	}

	return total, reasons
}

// Band classifies a score under this policy's thresholds.
func (p Policy) Band(score float64) Band {
	switch {
	case score >= p.HighAt:
		return BandHigh
	case score >= p.MediumAt:
		return BandMedium
	default:
		return BandLow
	}
}
