package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() []ProfileField {
	return []ProfileField{
		{ID: "role", Label: "Job role", Required: true},
		{ID: "tenure", Label: "Years in role", Options: []string{"<1", "1-5", "5+"}},
		{ID: "team_size", Label: "Team size"},
	}
}

func strPtr(s string) *string { return &s }

func TestNewParticipantProfile_AllPending(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	p := NewParticipantProfile(testSchema(), now)

	require.Len(t, p.Fields, 3)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, now, p.CreatedAt)
	for i, f := range p.Fields {
		assert.Equal(t, testSchema()[i].ID, f.FieldID, "schema order is kept")
		assert.Equal(t, FieldPending, f.Status)
		assert.Nil(t, f.Value)
		assert.Nil(t, f.ExtractedAt)
	}
}

func TestNewParticipantProfile_FreshIDs(t *testing.T) {
	now := time.Now()
	a := NewParticipantProfile(testSchema(), now)
	b := NewParticipantProfile(testSchema(), now)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestApplyUpdate_EachFieldOnce(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	p := NewParticipantProfile(testSchema(), now)

	assert.True(t, p.ApplyUpdate("role", strPtr("nurse"), FieldExtracted, now))
	assert.True(t, p.ApplyUpdate("tenure", strPtr("a while"), FieldVague, now))
	assert.True(t, p.ApplyUpdate("team_size", nil, FieldRefused, now))

	got := make(map[string]FieldStatus, len(p.Fields))
	for _, f := range p.Fields {
		got[f.FieldID] = f.Status
	}
	want := map[string]FieldStatus{
		"role":      FieldExtracted,
		"tenure":    FieldVague,
		"team_size": FieldRefused,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("field statuses mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, p.Fields, 3)
}

func TestApplyUpdate_UnknownFieldIgnored(t *testing.T) {
	now := time.Now()
	p := NewParticipantProfile(testSchema(), now)
	before := append([]ProfileFieldValue(nil), p.Fields...)

	assert.False(t, p.ApplyUpdate("salary", strPtr("lots"), FieldExtracted, now))
	if diff := cmp.Diff(before, p.Fields); diff != "" {
		t.Errorf("unknown update changed fields (-before +after):\n%s", diff)
	}
}

func TestApplyUpdate_LastWriteWins(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	p := NewParticipantProfile(testSchema(), t1)

	p.ApplyUpdate("role", strPtr("nurse"), FieldVague, t1)
	p.ApplyUpdate("role", strPtr("charge nurse"), FieldExtracted, t2)

	f, ok := p.Field("role")
	require.True(t, ok)
	assert.Equal(t, "charge nurse", *f.Value)
	assert.Equal(t, FieldExtracted, f.Status)
	assert.Equal(t, t2, *f.ExtractedAt)
}

func TestApplyUpdate_AllowedValuesNotEnforced(t *testing.T) {
	p := NewParticipantProfile(testSchema(), time.Now())

	assert.True(t, p.ApplyUpdate("tenure", strPtr("twelve years"), FieldExtracted, time.Now()))
	f, _ := p.Field("tenure")
	assert.Equal(t, "twelve years", *f.Value)
}

func TestApplyUpdate_CopiesValue(t *testing.T) {
	p := NewParticipantProfile(testSchema(), time.Now())
	v := "nurse"
	p.ApplyUpdate("role", &v, FieldExtracted, time.Now())
	v = "changed"

	f, _ := p.Field("role")
	assert.Equal(t, "nurse", *f.Value)
}

func TestAppendRawContext(t *testing.T) {
	p := NewParticipantProfile(nil, time.Now())

	p.AppendRawContext("")
	assert.Equal(t, "", p.RawContext)

	p.AppendRawContext("I work nights.")
	assert.Equal(t, "I work nights.", p.RawContext)

	p.AppendRawContext("Mostly in the ICU.")
	assert.Equal(t, "I work nights.\nMostly in the ICU.", p.RawContext)
}

func TestPendingRequired(t *testing.T) {
	p := NewParticipantProfile(testSchema(), time.Now())
	assert.Equal(t, []string{"role"}, p.PendingRequired(testSchema()))

	p.ApplyUpdate("role", strPtr("nurse"), FieldExtracted, time.Now())
	assert.Empty(t, p.PendingRequired(testSchema()))
}

func TestApplyUpdate_InvalidStatusIgnored(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	p := NewParticipantProfile(testSchema(), now)

	assert.False(t, p.ApplyUpdate("role", strPtr("nurse"), FieldPending, now))
	assert.False(t, p.ApplyUpdate("role", strPtr("nurse"), FieldStatus("guessed"), now))

	f, ok := p.Field("role")
	require.True(t, ok)
	assert.Equal(t, FieldPending, f.Status)
	assert.Nil(t, f.Value)
	assert.Nil(t, f.ExtractedAt)
}
