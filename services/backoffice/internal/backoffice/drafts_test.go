package backoffice

import (
	"testing"
	"time"

	"github.com/edumeal/backoffice/services/backoffice/internal/planning"
)

func TestDraftStoreGet(t *testing.T) {
	store := NewDraftStore(time.Hour)
	now := time.Date(2024, 1, 4, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	d, created := store.Get("s1")
	if !created {
		t.Error("first Get() created = false, want true")
	}
	if got := d.view().WeekStart; got != "2024-01-01" {
		t.Errorf("new draft week = %s, want 2024-01-01", got)
	}

	again, created := store.Get("s1")
	if created || again != d {
		t.Error("second Get() returned a different draft")
	}
	if store.Count() != 1 {
		t.Errorf("Count() = %d, want 1", store.Count())
	}

	store.Delete("s1")
	if store.Count() != 0 {
		t.Errorf("Count() after Delete = %d, want 0", store.Count())
	}
}

func TestDraftStoreCleanupExpired(t *testing.T) {
	store := NewDraftStore(time.Hour)
	now := time.Date(2024, 1, 4, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Get("old")
	busy, _ := store.Get("busy")
	busy.submitting = true

	now = now.Add(2 * time.Hour)
	store.Get("fresh")

	if n := store.CleanupExpired(); n != 1 {
		t.Errorf("CleanupExpired() = %d, want 1", n)
	}
	if store.Count() != 2 {
		t.Errorf("Count() = %d, want 2 (busy and fresh)", store.Count())
	}
}

func TestDraftViewCopiesCells(t *testing.T) {
	week, _ := planning.ParseWeekWindow("2024-01-01")
	d := newDraft(week, time.Now())
	d.grid.AddDish(planning.Dish{FoodID: 1}, planning.Monday, "Lunch")

	view := d.view()
	view.Cells[0].Dishes[0].FoodID = 99

	if got := d.view().Cells[0].Dishes[0].FoodID; got != 1 {
		t.Errorf("view mutation leaked into draft: food id %d", got)
	}
}
