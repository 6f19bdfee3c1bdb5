package risk

// Remediation texts. Platform-mode texts derive from the detected
// classes; upload-mode texts derive from the band alone.
const (
	RecGeneralize = "Generalize locations and times in captions; avoid naming places or posting schedules."
	RecContact    = "Remove contact details (handles, phone numbers, emails) from captions."
	RecTighten    = "Tighten your account privacy settings and limit who can view your videos."
	RecGeneric    = "No issues detected. Keep captions generic and avoid contact/location details."
)

const maxRecommendations = 4

// Recommend derives remediation guidance from detected platform signal
// classes, in priority order, with duplicates removed and the output
// capped at four entries.
func Recommend(dets []Detection) []string {
	present := make(map[Signal]bool, len(dets))
	for _, d := range dets {
		present[d.Signal] = true
	}

	var recs []string
	if present[SignalLocation] || present[SignalSchedule] {
		recs = append(recs, RecGeneralize)
	}
	if present[SignalContact] {
		recs = append(recs, RecContact)
	}
	if len(present) > 0 {
		recs = append(recs, RecTighten)
	}
	if len(recs) == 0 {
		recs = append(recs, RecGeneric)
	}

	recs = dedupe(recs)
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

// RecommendForBand is the upload-mode variant carried over from the
// first-party scan flow, which keys guidance off the band alone.
func RecommendForBand(band Band) []string {
	switch band {
	case BandHigh:
		return []string{"Strip EXIF data and remove address/contacts before posting."}
	case BandMedium:
		return []string{"Remove contact details from caption (email/phone)."}
	default:
		return []string{"Looks safe. Double-check caption for sensitive context."}
	}
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
