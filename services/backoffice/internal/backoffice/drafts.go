package backoffice

import (
	"context"
	"sync"
	"time"

	"github.com/edumeal/backoffice/services/backoffice/internal/planning"
)

// Draft is one user's in-progress weekly menu. Every access goes through
// its mutex.
type Draft struct {
	mu           sync.Mutex
	grid         *planning.Grid
	offDaysStale bool
	submitting   bool
	touchedAt    time.Time
}

func newDraft(week planning.WeekWindow, now time.Time) *Draft {
	return &Draft{grid: planning.NewGrid(week), touchedAt: now}
}

// DraftView is a consistent snapshot of a draft.
type DraftView struct {
	WeekStart    string          `json:"weekStart"`
	WeekEnd      string          `json:"weekEnd"`
	OffDays      []string        `json:"offDays"`
	OffDaysStale bool            `json:"offDaysStale"`
	Submitting   bool            `json:"submitting"`
	Cells        []planning.Cell `json:"cells"`
}

func (d *Draft) view() DraftView {
	week := d.grid.Week()
	return DraftView{
		WeekStart:    week.StartDate(),
		WeekEnd:      week.EndDate(),
		OffDays:      d.grid.OffDays().Dates(),
		OffDaysStale: d.offDaysStale,
		Submitting:   d.submitting,
		Cells:        d.grid.Cells(),
	}
}

// DraftStore keeps drafts keyed by session id.
type DraftStore struct {
	drafts  map[string]*Draft
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	sweeper *sweeper
}

func NewDraftStore(ttl time.Duration) *DraftStore {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	store := &DraftStore{
		drafts: make(map[string]*Draft),
		ttl:    ttl,
		now:    time.Now,
	}
	store.sweeper = newSweeper(10*time.Minute, func() { store.CleanupExpired() })
	return store
}

// Get returns the session's draft. The second result reports whether the
// draft was created by this call, in which case it starts on the current week.
func (s *DraftStore) Get(sessionID string) (*Draft, bool) {
	now := s.now()

	s.mu.RLock()
	d, ok := s.drafts[sessionID]
	s.mu.RUnlock()
	if ok {
		d.mu.Lock()
		d.touchedAt = now
		d.mu.Unlock()
		return d, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.drafts[sessionID]; ok {
		return d, false
	}
	d = newDraft(planning.CurrentWeek(now), now)
	s.drafts[sessionID] = d
	return d, true
}

func (s *DraftStore) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.drafts, sessionID)
	s.mu.Unlock()
}

// CleanupExpired drops drafts untouched for longer than the TTL. Drafts in
// the middle of a submit are kept.
func (s *DraftStore) CleanupExpired() int {
	cutoff := s.now().Add(-s.ttl)
	count := 0

	s.mu.Lock()
	for id, d := range s.drafts {
		d.mu.Lock()
		expired := d.touchedAt.Before(cutoff) && !d.submitting
		d.mu.Unlock()
		if expired {
			delete(s.drafts, id)
			count++
		}
	}
	s.mu.Unlock()

	return count
}

func (s *DraftStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}

func (s *DraftStore) Start(ctx context.Context) error {
	s.sweeper.start()
	return nil
}

func (s *DraftStore) Stop(ctx context.Context) error {
	s.sweeper.stop()
	return nil
}
