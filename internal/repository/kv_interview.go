package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/alexanderramin/elicit/internal/kv"
)

// KVInterviewRepo implements InterviewRepo on a kv.Store.
type KVInterviewRepo struct {
	store kv.Store
}

// NewKVInterviewRepo creates a new KVInterviewRepo.
func NewKVInterviewRepo(store kv.Store) *KVInterviewRepo {
	return &KVInterviewRepo{store: store}
}

// Save indexes the session before writing it, so a record that was written
// is always listed. A dangling index entry from a failed write is skipped by
// readers.
func (r *KVInterviewRepo) Save(ctx context.Context, rec *domain.SessionRecord) error {
	if err := domain.ValidateIdentifier("session", rec.ID); err != nil {
		return err
	}
	if err := domain.ValidateIdentifier("study", rec.StudyID); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding session record: %w", err)
	}
	if err := r.store.SAdd(ctx, interviewIndexKey(rec.StudyID), rec.ID); err != nil {
		return fmt.Errorf("indexing session record: %w", err)
	}
	wrote, err := r.store.SetIfAbsent(ctx, interviewKey(rec.StudyID, rec.ID), data)
	if err != nil {
		return fmt.Errorf("saving session record: %w", err)
	}
	if !wrote {
		return fmt.Errorf("session %s: %w", rec.ID, ErrAlreadyExists)
	}
	return nil
}

func (r *KVInterviewRepo) GetByID(ctx context.Context, studyID, sessionID string) (*domain.SessionRecord, error) {
	var rec domain.SessionRecord
	if err := getJSON(ctx, r.store, interviewKey(studyID, sessionID), "session "+sessionID, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *KVInterviewRepo) ListIDs(ctx context.Context, studyID string) ([]string, error) {
	ids, err := r.store.SMembers(ctx, interviewIndexKey(studyID))
	if err != nil {
		return nil, fmt.Errorf("listing sessions of %s: %w", studyID, err)
	}
	return ids, nil
}
