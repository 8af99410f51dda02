package auditlog

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type captureRepo struct {
	created []*AuditLog
}

func (r *captureRepo) Create(ctx context.Context, log *AuditLog) error {
	r.created = append(r.created, log)
	return nil
}

func (r *captureRepo) GetByFilter(ctx context.Context, filter AuditLogFilter) ([]AuditLog, int64, error) {
	return nil, 0, nil
}

func (r *captureRepo) GetByID(ctx context.Context, id uint) (*AuditLog, error) {
	return nil, nil
}

func TestLogActionStoresJSONDetails(t *testing.T) {
	repo := &captureRepo{}
	svc := NewService(repo)

	err := svc.LogAction(context.Background(), "admin1", "ev1", "login", map[string]interface{}{"username": "admin1"}, "10.0.0.5", "success")
	require.NoError(t, err)
	require.Len(t, repo.created, 1)

	entry := repo.created[0]
	require.Equal(t, "login", entry.Action)
	require.Equal(t, "10.0.0.5", entry.IPAddress)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(entry.Details, &decoded), "details must land as a jsonb document")
	require.Equal(t, "admin1", decoded["username"])
}

func TestLogActionNilDetailsStoresEmptyObject(t *testing.T) {
	repo := &captureRepo{}
	svc := NewService(repo)

	require.NoError(t, svc.LogAction(context.Background(), "", "", "login_failed", nil, "10.0.0.5", "failure"))
	require.Len(t, repo.created, 1)
	require.Equal(t, "{}", string(repo.created[0].Details))
}
