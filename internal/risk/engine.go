// Package risk extracts privacy-exposure signals from content and turns
// them into a numeric score, a severity band and remediation guidance.
// Evaluation is pure and deterministic: the same caption always yields
// the same assessment.
package risk

// Assessment is the full scoring result for one piece of content.
type Assessment struct {
	Score           float64
	Band            Band
	Detections      []string
	Recommendations []string
	Reasons         []string
}

// Evaluate runs caption analysis and scoring under the platform policy.
func Evaluate(caption string) Assessment {
	return EvaluateWithPolicy(PlatformPolicy, AnalyzeCaption(caption))
}

// EvaluateWithPolicy scores pre-extracted detections under the given
// policy. Platform detections get class-derived recommendations; any
// other policy falls back to band-derived ones.
func EvaluateWithPolicy(policy Policy, dets []Detection) Assessment {
	score, reasons := policy.Score(dets)
	band := policy.Band(score)

	var recs []string
	if policy.Name == PlatformPolicy.Name {
		recs = Recommend(dets)
	} else {
		recs = RecommendForBand(band)
	}

	tags := make([]string, 0, len(dets))
	seen := make(map[Signal]bool, len(dets))
	for _, d := range dets {
		if seen[d.Signal] {
			continue
		}
		seen[d.Signal] = true
		tags = append(tags, string(d.Signal))
	}

	return Assessment{
		Score:           score,
		Band:            band,
		Detections:      tags,
		Recommendations: recs,
		Reasons:         reasons,
	}
}
