package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/alexanderramin/elicit/internal/kv"
)

// KVSynthesisRepo keeps the latest aggregate synthesis per study.
type KVSynthesisRepo struct {
	store kv.Store
}

// NewKVSynthesisRepo creates a new KVSynthesisRepo.
func NewKVSynthesisRepo(store kv.Store) *KVSynthesisRepo {
	return &KVSynthesisRepo{store: store}
}

// Save replaces any earlier aggregate for the study.
func (r *KVSynthesisRepo) Save(ctx context.Context, agg *domain.AggregateSynthesisResult) error {
	if err := domain.ValidateIdentifier("study", agg.StudyID); err != nil {
		return err
	}
	data, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("encoding aggregate synthesis: %w", err)
	}
	if err := r.store.Set(ctx, synthesisKey(agg.StudyID), data); err != nil {
		return fmt.Errorf("saving aggregate synthesis: %w", err)
	}
	return nil
}

func (r *KVSynthesisRepo) Get(ctx context.Context, studyID string) (*domain.AggregateSynthesisResult, error) {
	var agg domain.AggregateSynthesisResult
	if err := getJSON(ctx, r.store, synthesisKey(studyID), "aggregate synthesis "+studyID, &agg); err != nil {
		return nil, err
	}
	return &agg, nil
}
