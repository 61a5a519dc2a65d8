package formatter

import (
	"testing"
	"time"

	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/alexanderramin/elicit/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFormatStudyList(t *testing.T) {
	now := time.Now()
	open := testutil.NewTestStudy("Remote work")
	open.CreatedAt = now.Add(-2 * time.Hour)
	locked := testutil.NewTestStudy("Commuting", testutil.WithLocked(4))
	locked.CreatedAt = now.AddDate(0, 0, -3)

	out := stripANSI(FormatStudyList([]*domain.StudyConfig{open, locked}, now))
	assert.Contains(t, out, "Remote work")
	assert.Contains(t, out, "Commuting")
	assert.Contains(t, out, "locked")
	assert.Contains(t, out, "open")
	assert.Contains(t, out, "2h ago")
	assert.Contains(t, out, "3d ago")
}

func TestFormatStudyList_Empty(t *testing.T) {
	assert.Contains(t, stripANSI(FormatStudyList(nil, time.Now())), "No studies yet")
}

func TestFormatStudy(t *testing.T) {
	s := testutil.NewTestStudy("Remote work")
	s.Lineage = &domain.Lineage{ParentID: "parent-1", ParentName: "Office life", GeneratedFrom: domain.GeneratedFromSynthesis}

	out := stripANSI(FormatStudy(s))
	assert.Contains(t, out, "Remote work")
	assert.Contains(t, out, "1. Walk me through a typical day.")
	assert.Contains(t, out, "daily routine")
	assert.Contains(t, out, "Role *")
	assert.Contains(t, out, "[<1 year, 1-5 years, 5+ years]")
	assert.Contains(t, out, "Office life")
}

func TestFormatLink(t *testing.T) {
	exp := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	out := stripANSI(FormatLink("tok.en.value", "Remote work", &exp))
	assert.Contains(t, out, "tok.en.value")
	assert.Contains(t, out, "2026-05-01T00:00:00Z")

	assert.Contains(t, stripANSI(FormatLink("t", "x", nil)), "never")
}
