package history

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type captureRepo struct {
	mu      sync.Mutex
	created []*StationAction
}

func (r *captureRepo) Create(ctx context.Context, action *StationAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, action)
	return nil
}

func (r *captureRepo) GetByFilter(ctx context.Context, filter ActionFilter) ([]StationAction, int64, error) {
	return nil, 0, nil
}

// last waits for the background write to land.
func (r *captureRepo) last(t *testing.T) *StationAction {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		var got *StationAction
		if n := len(r.created); n > 0 {
			got = r.created[n-1]
		}
		r.mu.Unlock()
		if got != nil {
			return got
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("no station action recorded")
	return nil
}

func TestRecordAsyncStoresJSONDetails(t *testing.T) {
	repo := &captureRepo{}
	svc := NewService(repo)

	svc.RecordAsync("usher1", "ev1", ActionPersonUpdate, "success", map[string]interface{}{"person_id": "p1"})

	got := repo.last(t)
	require.Equal(t, ActionPersonUpdate, got.Action)
	require.Equal(t, "success", got.Outcome)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(got.Details, &decoded), "details must land as a jsonb document")
	require.Equal(t, "p1", decoded["person_id"])
}

func TestRecordAsyncNilDetailsStoresEmptyObject(t *testing.T) {
	repo := &captureRepo{}
	svc := NewService(repo)

	svc.RecordAsync("usher1", "ev1", ActionEventClose, "success", nil)

	require.Equal(t, "{}", string(repo.last(t).Details))
}
