package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/elicit/internal/kv"
)

// Key layout. Study and session ids are validated identifiers, so they never
// contain the ':' separator.
const studiesIndexKey = "studies"

func studyKey(id string) string { return "study:" + id }
func interviewKey(studyID, id string) string { return "interview:" + studyID + ":" + id }
func interviewIndexKey(studyID string) string { return "study:" + studyID + ":interviews" }
func synthesisKey(studyID string) string { return "synthesis:" + studyID }

// getJSON loads key into v, mapping a missing key to ErrNotFound.
func getJSON(ctx context.Context, store kv.Store, key, what string, v any) error {
	data, err := store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("loading %s: %w", what, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", what, err)
	}
	return nil
}
