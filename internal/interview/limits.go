package interview

import "github.com/alexanderramin/elicit/internal/domain"

// Boundary limits applied before any turn logic runs.
const (
	TranscriptWindow   = 20
	MaxMessageChars    = 4000
	MaxRawContextChars = 8000
)

// Window returns the most recent TranscriptWindow messages, oldest first.
func Window(transcript []domain.InterviewMessage) []domain.InterviewMessage {
	if len(transcript) <= TranscriptWindow {
		return transcript
	}
	return transcript[len(transcript)-TranscriptWindow:]
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// truncateTail keeps the last max runes, used for the background narrative
// where the newest context matters most.
func truncateTail(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[len(r)-max:])
}
