package mongo

import (
	"context"
	"errors"
	"testing"

	"github.com/edumeal/backoffice/services/backoffice/internal/backoffice"
)

func TestSelectionRepoNotStarted(t *testing.T) {
	repo := NewSelectionRepo(nil, nil)
	ctx := context.Background()

	if _, err := repo.Load(ctx, "u-1"); !errors.Is(err, errNotStarted) {
		t.Errorf("Load() error = %v, want errNotStarted", err)
	}
	if err := repo.Save(ctx, &backoffice.ChildSelection{UserID: "u-1"}); !errors.Is(err, errNotStarted) {
		t.Errorf("Save() error = %v, want errNotStarted", err)
	}
	if err := repo.Clear(ctx, "u-1"); !errors.Is(err, errNotStarted) {
		t.Errorf("Clear() error = %v, want errNotStarted", err)
	}
	if err := repo.Stop(ctx); err != nil {
		t.Errorf("Stop() before Start error = %v", err)
	}
}
