package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProfileFieldValue is the extraction state of one schema field.
type ProfileFieldValue struct {
	FieldID     string      `json:"field_id"`
	Value       *string     `json:"value"`
	Status      FieldStatus `json:"status"`
	ExtractedAt *time.Time  `json:"extracted_at,omitempty"`
}

// ParticipantProfile holds one value per schema field, in schema order, plus
// the background narrative gathered during the background phase.
type ParticipantProfile struct {
	ID         string              `json:"id"`
	Fields     []ProfileFieldValue `json:"fields"`
	RawContext string              `json:"raw_context"`
	CreatedAt  time.Time           `json:"created_at"`
}

// NewParticipantProfile initializes a profile with every schema field pending.
func NewParticipantProfile(schema []ProfileField, now time.Time) *ParticipantProfile {
	fields := make([]ProfileFieldValue, 0, len(schema))
	for _, f := range schema {
		fields = append(fields, ProfileFieldValue{
			FieldID: f.ID,
			Status:  FieldPending,
		})
	}
	return &ParticipantProfile{
		ID:        uuid.New().String(),
		Fields:    fields,
		CreatedAt: now,
	}
}

// ApplyUpdate overwrites the value and status of fieldID. Unknown field ids
// and statuses that ValidUpdateStatus rejects are ignored and reported as
// false; collaborator output is untrusted.
// Allowed-value sets on the schema are advisory and not enforced here.
func (p *ParticipantProfile) ApplyUpdate(fieldID string, value *string, status FieldStatus, now time.Time) bool {
	if !ValidUpdateStatus(status) {
		return false
	}
	for i := range p.Fields {
		if p.Fields[i].FieldID != fieldID {
			continue
		}
		var v *string
		if value != nil {
			cp := *value
			v = &cp
		}
		ts := now
		p.Fields[i].Value = v
		p.Fields[i].Status = status
		p.Fields[i].ExtractedAt = &ts
		return true
	}
	return false
}

// AppendRawContext adds text to the background narrative, separated from any
// existing narrative by a single newline.
func (p *ParticipantProfile) AppendRawContext(text string) {
	if text == "" {
		return
	}
	if p.RawContext == "" {
		p.RawContext = text
		return
	}
	p.RawContext += "\n" + text
}

// Field returns the value for fieldID.
func (p *ParticipantProfile) Field(fieldID string) (ProfileFieldValue, bool) {
	for _, f := range p.Fields {
		if f.FieldID == fieldID {
			return f, true
		}
	}
	return ProfileFieldValue{}, false
}

// PendingRequired returns the ids of required fields still pending. Completion
// never depends on this being empty.
func (p *ParticipantProfile) PendingRequired(schema []ProfileField) []string {
	var ids []string
	for _, f := range schema {
		if !f.Required {
			continue
		}
		if v, ok := p.Field(f.ID); ok && v.Status == FieldPending {
			ids = append(ids, f.ID)
		}
	}
	return ids
}
