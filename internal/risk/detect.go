package risk

import (
	"regexp"
	"strings"
)

// Caption pattern classes for platform-ingested videos. Each class is
// presence-based: one hit is enough, repeats do not add weight.
var (
	placeNameRe = regexp.MustCompile(`(?i)\b(uncc|noda|uptown|south ?end|plaza midwood|ballantyne|campus|downtown|midtown)\b`)
	streetRe    = regexp.MustCompile(`\b\d{1,5}\s+[A-Za-z][A-Za-z.'-]{2,}\b`)

	handleRe = regexp.MustCompile(`@[A-Za-z0-9_.]{2,}`)
	phoneRe  = regexp.MustCompile(`\(?\d{3}\)?[-.\s]\d{3}[-.\s]\d{4}\b`)
	emailRe  = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	weekdayRe   = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	clockRe     = regexp.MustCompile(`(?i)\b\d{1,2}(:\d{2})?\s?(am|pm)\b`)
	recurringRe = regexp.MustCompile(`(?i)\b(every|tonight)\b`)

	workplaceRe = regexp.MustCompile(`(?i)\b(shift|work|working|works|job|boss|manager|office|store|shop|barista|intern)\b`)
)

const pinEmoji = "\U0001F4CD"

// AnalyzeCaption extracts the platform signal classes present in a
// caption. The result is in a fixed order: location, contact, schedule,
// workplace. An empty caption yields no detections.
func AnalyzeCaption(caption string) []Detection {
	if strings.TrimSpace(caption) == "" {
		return nil
	}

	var dets []Detection

	if v := firstLocationHit(caption); v != "" {
		dets = append(dets, Detection{Signal: SignalLocation, Value: v})
	}
	if v := firstContactHit(caption); v != "" {
		dets = append(dets, Detection{Signal: SignalContact, Value: v})
	}
	if v := firstScheduleHit(caption); v != "" {
		dets = append(dets, Detection{Signal: SignalSchedule, Value: v})
	}
	if v := workplaceRe.FindString(caption); v != "" {
		dets = append(dets, Detection{Signal: SignalWorkplace, Value: v})
	}

	return dets
}

func firstLocationHit(caption string) string {
	if strings.Contains(caption, pinEmoji) {
		return pinEmoji
	}
	if v := placeNameRe.FindString(caption); v != "" {
		return v
	}
	return streetRe.FindString(caption)
}

func firstContactHit(caption string) string {
	// Email first so a handle match does not claim the address part.
	if v := emailRe.FindString(caption); v != "" {
		return v
	}
	if v := phoneRe.FindString(caption); v != "" {
		return v
	}
	return handleRe.FindString(caption)
}

func firstScheduleHit(caption string) string {
	if weekdayRe.MatchString(caption) && clockRe.MatchString(caption) {
		return weekdayRe.FindString(caption)
	}
	return recurringRe.FindString(caption)
}
