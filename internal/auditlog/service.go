package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"

	"gorm.io/datatypes"

	"github.com/sharmila-j/church-checkin-gateway/utils"
)

type Service interface {
	LogAction(ctx context.Context, operator, eventID, action string, details map[string]interface{}, ip string, status string) error
	GetAuditLogs(ctx context.Context, filter AuditLogFilter) (*PaginatedAuditLogs, error)
	GetAuditLogByID(ctx context.Context, id uint) (*AuditLog, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// LogAction persists an audit entry locally and publishes it to the
// audit topic. The Kafka publish is best-effort; the local row is the
// durable record.
func (s *service) LogAction(ctx context.Context, operator, eventID, action string, details map[string]interface{}, ip string, status string) error {
	if details == nil {
		details = make(map[string]interface{})
	}

	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	entry := &AuditLog{
		Operator:  operator,
		EventID:   eventID,
		Action:    action,
		Details:   datatypes.JSON(detailsJSON),
		IPAddress: ip,
		Status:    status,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return err
	}

	if err := utils.PublishAuditEvent(ctx, action, map[string]interface{}{
		"operator":   operator,
		"event_id":   eventID,
		"details":    details,
		"ip_address": ip,
		"status":     status,
	}); err != nil {
		log.Printf("⚠️ Failed to publish audit event %s: %v", action, err)
	}

	return nil
}

// GetAuditLogs retrieves paginated audit logs with filters
func (s *service) GetAuditLogs(ctx context.Context, filter AuditLogFilter) (*PaginatedAuditLogs, error) {
	logs, total, err := s.repo.GetByFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	if filter.Limit == 0 {
		totalPages = 0
	}

	return &PaginatedAuditLogs{
		Data:       logs,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

// GetAuditLogByID retrieves a specific audit log by ID
func (s *service) GetAuditLogByID(ctx context.Context, id uint) (*AuditLog, error) {
	log, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("audit log not found: %w", err)
	}
	return log, nil
}
