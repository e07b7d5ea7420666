package backoffice

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/edumeal/backoffice/pkg/enums/role"
	"github.com/edumeal/backoffice/services/backoffice/internal/edumeal"
	"github.com/edumeal/backoffice/services/backoffice/internal/health"
)

func childrenOf(ids ...int) func(ctx context.Context) ([]edumeal.Student, error) {
	return func(ctx context.Context) ([]edumeal.Student, error) {
		var out []edumeal.Student
		for _, id := range ids {
			out = append(out, edumeal.Student{ID: id, FullName: "Bé An", ClassName: "Lá 1"})
		}
		return out, nil
	}
}

func TestSelectedChild(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{ChildrenFunc: childrenOf(5)})
	cookie := env.session(t, role.Roles.Parent)

	rec := env.do(t, http.MethodGet, "/parent/selected-child", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var sel *ChildSelection
	decodeData(t, rec, &sel)
	if sel != nil {
		t.Errorf("selection = %+v, want null", sel)
	}

	rec = env.do(t, http.MethodPut, "/parent/selected-child", selectChildRequest{StudentID: 9}, cookie)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign student: status = %d, want 403", rec.Code)
	}

	rec = env.do(t, http.MethodPut, "/parent/selected-child", selectChildRequest{StudentID: 0}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero student: status = %d, want 400", rec.Code)
	}

	rec = env.do(t, http.MethodPut, "/parent/selected-child", selectChildRequest{StudentID: 5}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("select: status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/parent/selected-child", nil, cookie)
	decodeData(t, rec, &sel)
	if sel == nil || sel.StudentID != 5 || sel.StudentName != "Bé An" || sel.UserID != "user-1" {
		t.Errorf("selection = %+v", sel)
	}

	rec = env.do(t, http.MethodDelete, "/parent/selected-child", nil, cookie)
	if rec.Code != http.StatusNoContent {
		t.Errorf("clear: status = %d, want 204", rec.Code)
	}
	if _, err := env.h.selections.Load(context.Background(), "user-1"); !errors.Is(err, ErrSelectionNotFound) {
		t.Errorf("Load() after clear error = %v, want ErrSelectionNotFound", err)
	}
}

func TestSelectedChildStorageFailure(t *testing.T) {
	storageErr := errors.New("mongo: no reachable servers")
	repo := &fakeSelectionRepo{
		LoadFunc: func(ctx context.Context, userID string) (*ChildSelection, error) {
			return nil, storageErr
		},
		SaveFunc: func(ctx context.Context, selection *ChildSelection) error {
			return storageErr
		},
	}
	backend := &fakeBackend{ChildrenFunc: childrenOf(5)}
	h := NewHandler(HandlerDeps{Backend: backend, Selections: repo})
	env := &testEnv{h: h, backend: backend, publisher: &MockPublisher{}}
	env.router = newRouter(h)
	cookie := env.session(t, role.Roles.Parent)

	rec := env.do(t, http.MethodGet, "/parent/selected-child", nil, cookie)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("load: status = %d, want 503", rec.Code)
	}

	rec = env.do(t, http.MethodPut, "/parent/selected-child", selectChildRequest{StudentID: 5}, cookie)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("save: status = %d, want 503", rec.Code)
	}
}

func TestGetBMISeries(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := func(ctx context.Context, studentID int) ([]health.Measurement, error) {
		return []health.Measurement{
			{Date: start, HeightCm: 100, WeightKg: 16},
			{Date: start.AddDate(0, 0, 14), HeightCm: 100, WeightKg: 18},
		}, nil
	}

	t.Run("parentOwnChild", func(t *testing.T) {
		env := newTestEnv(t, &fakeBackend{ChildrenFunc: childrenOf(5), HealthRecordsFunc: records})
		cookie := env.session(t, role.Roles.Parent)

		rec := env.do(t, http.MethodGet, "/students/5/bmi-series?step=7", nil, cookie)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
		}
		var resp bmiSeriesResponse
		decodeData(t, rec, &resp)
		if resp.StepDays != 7 || len(resp.Points) != 3 {
			t.Fatalf("response = %+v, want 3 points at step 7", resp)
		}
		mid := resp.Points[1]
		if !mid.Interpolated || mid.Date != "2024-01-08" || mid.BMI != 17 {
			t.Errorf("middle point = %+v, want interpolated 17 on 2024-01-08", mid)
		}
	})

	t.Run("parentOtherChild", func(t *testing.T) {
		env := newTestEnv(t, &fakeBackend{ChildrenFunc: childrenOf(5), HealthRecordsFunc: records})
		cookie := env.session(t, role.Roles.Parent)

		rec := env.do(t, http.MethodGet, "/students/6/bmi-series", nil, cookie)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
		if n := env.backend.Calls("HealthRecords"); n != 0 {
			t.Errorf("HealthRecords called %d times, want 0", n)
		}
	})

	t.Run("wardenSkipsOwnership", func(t *testing.T) {
		env := newTestEnv(t, &fakeBackend{HealthRecordsFunc: records})
		cookie := env.session(t, role.Roles.Warden)

		rec := env.do(t, http.MethodGet, "/students/6/bmi-series", nil, cookie)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if n := env.backend.Calls("Children"); n != 0 {
			t.Errorf("Children called %d times, want 0", n)
		}
	})

	t.Run("invalidStep", func(t *testing.T) {
		env := newTestEnv(t, &fakeBackend{HealthRecordsFunc: records})
		cookie := env.session(t, role.Roles.Admin)

		rec := env.do(t, http.MethodGet, "/students/6/bmi-series?step=0", nil, cookie)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}
