package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/alexanderramin/elicit/internal/kv"
)

// KVStudyRepo implements StudyRepo on a kv.Store.
type KVStudyRepo struct {
	store kv.Store
}

// NewKVStudyRepo creates a new KVStudyRepo.
func NewKVStudyRepo(store kv.Store) *KVStudyRepo {
	return &KVStudyRepo{store: store}
}

func (r *KVStudyRepo) Create(ctx context.Context, s *domain.StudyConfig) error {
	if err := domain.ValidateIdentifier("study", s.ID); err != nil {
		return err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding study: %w", err)
	}
	wrote, err := r.store.SetIfAbsent(ctx, studyKey(s.ID), data)
	if err != nil {
		return fmt.Errorf("creating study: %w", err)
	}
	if !wrote {
		return fmt.Errorf("study %s: %w", s.ID, ErrAlreadyExists)
	}
	if err := r.store.SAdd(ctx, studiesIndexKey, s.ID); err != nil {
		return fmt.Errorf("indexing study: %w", err)
	}
	return nil
}

func (r *KVStudyRepo) GetByID(ctx context.Context, id string) (*domain.StudyConfig, error) {
	var s domain.StudyConfig
	if err := getJSON(ctx, r.store, studyKey(id), "study "+id, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns every indexed study, newest first.
func (r *KVStudyRepo) List(ctx context.Context) ([]*domain.StudyConfig, error) {
	ids, err := r.store.SMembers(ctx, studiesIndexKey)
	if err != nil {
		return nil, fmt.Errorf("listing studies: %w", err)
	}
	studies := make([]*domain.StudyConfig, 0, len(ids))
	for _, id := range ids {
		s, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		studies = append(studies, s)
	}
	sort.SliceStable(studies, func(i, j int) bool {
		return studies[i].CreatedAt.After(studies[j].CreatedAt)
	})
	return studies, nil
}

func (r *KVStudyRepo) Update(ctx context.Context, s *domain.StudyConfig) error {
	if _, err := r.store.Get(ctx, studyKey(s.ID)); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return fmt.Errorf("study %s: %w", s.ID, ErrNotFound)
		}
		return fmt.Errorf("loading study: %w", err)
	}
	return r.put(ctx, s)
}

func (r *KVStudyRepo) put(ctx context.Context, s *domain.StudyConfig) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding study: %w", err)
	}
	if err := r.store.Set(ctx, studyKey(s.ID), data); err != nil {
		return fmt.Errorf("updating study: %w", err)
	}
	return nil
}

// RecordCompletion is a plain read-modify-write: two completions racing on
// the same study may both read the same count.
func (r *KVStudyRepo) RecordCompletion(ctx context.Context, id string) error {
	s, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	s.InterviewCount++
	s.Locked = true
	s.UpdatedAt = time.Now().UTC()
	return r.put(ctx, s)
}
