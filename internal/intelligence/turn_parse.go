package intelligence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/alexanderramin/elicit/internal/llm"
)

// rawTurn defers decoding of every field so one malformed part does not
// discard the rest of the response.
type rawTurn struct {
	Message           json.RawMessage `json:"message"`
	QuestionAddressed json.RawMessage `json:"questionAddressed"`
	PhaseTransition   json.RawMessage `json:"phaseTransition"`
	ProfileUpdates    json.RawMessage `json:"profileUpdates"`
	ShouldConclude    json.RawMessage `json:"shouldConclude"`
	TopicsExplored    json.RawMessage `json:"topicsExplored"`
	Contradiction     json.RawMessage `json:"contradiction"`
}

type rawProfileUpdate struct {
	FieldID json.RawMessage `json:"fieldId"`
	Value   json.RawMessage `json:"value"`
	Status  json.RawMessage `json:"status"`
}

// ParseTurnResponse turns raw model output into a TurnResponse. Only an
// unrecoverable message fails the parse; any other invalid part is dropped
// and the valid parts are kept.
func ParseTurnResponse(raw string) (TurnResponse, error) {
	rt, err := llm.ExtractJSON[rawTurn](raw, nil)
	if err != nil {
		return TurnResponse{}, err
	}

	var resp TurnResponse

	msg, ok := decodeString(rt.Message)
	msg = strings.TrimSpace(msg)
	if !ok || msg == "" {
		return TurnResponse{}, fmt.Errorf("%w: message field is missing or empty", llm.ErrInvalidOutput)
	}
	resp.Message = msg

	if !isAbsent(rt.QuestionAddressed) {
		if idx, ok := decodeIndex(rt.QuestionAddressed); ok {
			resp.QuestionAddressed = &idx
		} else {
			resp.Dropped = append(resp.Dropped, "questionAddressed")
		}
	}

	if !isAbsent(rt.PhaseTransition) {
		s, ok := decodeString(rt.PhaseTransition)
		phase := normalizePhase(s)
		switch {
		case ok && s == "":
		case ok && domain.ValidPhase(phase):
			resp.PhaseTransition = &phase
		default:
			resp.Dropped = append(resp.Dropped, "phaseTransition")
		}
	}

	if !isAbsent(rt.ProfileUpdates) {
		updates, dropped := decodeProfileUpdates(rt.ProfileUpdates)
		resp.ProfileUpdates = updates
		resp.Dropped = append(resp.Dropped, dropped...)
	}

	if !isAbsent(rt.ShouldConclude) {
		var b bool
		if err := json.Unmarshal(rt.ShouldConclude, &b); err == nil {
			resp.ShouldConclude = b
		} else {
			resp.Dropped = append(resp.Dropped, "shouldConclude")
		}
	}

	if !isAbsent(rt.TopicsExplored) {
		var topics []string
		if s, ok := decodeString(rt.TopicsExplored); ok {
			topics = []string{s}
		} else if err := json.Unmarshal(rt.TopicsExplored, &topics); err != nil {
			resp.Dropped = append(resp.Dropped, "topicsExplored")
		}
		for _, t := range topics {
			if t = strings.TrimSpace(t); t != "" {
				resp.TopicsExplored = append(resp.TopicsExplored, t)
			}
		}
	}

	if !isAbsent(rt.Contradiction) {
		if s, ok := decodeString(rt.Contradiction); ok {
			resp.Contradiction = strings.TrimSpace(s)
		} else {
			resp.Dropped = append(resp.Dropped, "contradiction")
		}
	}

	return resp, nil
}

func decodeProfileUpdates(data json.RawMessage) ([]ProfileUpdate, []string) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, []string{"profileUpdates"}
	}

	var updates []ProfileUpdate
	var dropped []string
	for i, item := range items {
		var ru rawProfileUpdate
		if err := json.Unmarshal(item, &ru); err != nil {
			dropped = append(dropped, fmt.Sprintf("profileUpdates[%d]", i))
			continue
		}
		fieldID, ok := decodeString(ru.FieldID)
		if !ok || strings.TrimSpace(fieldID) == "" {
			dropped = append(dropped, fmt.Sprintf("profileUpdates[%d].fieldId", i))
			continue
		}
		statusStr, _ := decodeString(ru.Status)
		status := domain.FieldStatus(strings.ToLower(strings.TrimSpace(statusStr)))
		if !domain.ValidUpdateStatus(status) {
			dropped = append(dropped, fmt.Sprintf("profileUpdates[%d].status", i))
			continue
		}
		updates = append(updates, ProfileUpdate{
			FieldID: strings.TrimSpace(fieldID),
			Value:   decodeScalar(ru.Value),
			Status:  status,
		})
	}
	return updates, dropped
}

func isAbsent(data json.RawMessage) bool {
	d := bytes.TrimSpace(data)
	return len(d) == 0 || bytes.Equal(d, []byte("null"))
}

func decodeString(data json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", false
	}
	return s, true
}

// decodeIndex accepts integral JSON numbers and numeric strings.
func decodeIndex(data json.RawMessage) (int, bool) {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		s, ok := decodeString(data)
		if !ok {
			return 0, false
		}
		if _, err := fmt.Sscanf(strings.TrimSpace(s), "%g", &f); err != nil {
			return 0, false
		}
	}
	if f != math.Trunc(f) || f < 0 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// decodeScalar returns strings as-is and other scalars in their JSON text
// form. Null, objects and arrays yield nil.
func decodeScalar(data json.RawMessage) *string {
	if isAbsent(data) {
		return nil
	}
	if s, ok := decodeString(data); ok {
		return &s
	}
	d := bytes.TrimSpace(data)
	if d[0] == '{' || d[0] == '[' {
		return nil
	}
	s := string(d)
	return &s
}

// normalizePhase maps near-miss spellings like "Core_Questions" to the
// canonical phase name.
func normalizePhase(s string) domain.InterviewPhase {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)
	switch s {
	case "wrapup":
		s = string(domain.PhaseWrapUp)
	case "corequestions", "core":
		s = string(domain.PhaseCoreQuestions)
	}
	return domain.InterviewPhase(s)
}
