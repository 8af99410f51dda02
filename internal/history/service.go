package history

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"time"

	"gorm.io/datatypes"

	"github.com/sharmila-j/church-checkin-gateway/utils"
)

// Action labels stored in the history table.
const (
	ActionCheckIn             = "check_in"
	ActionCheckOut            = "check_out"
	ActionPersonCreate        = "person_create"
	ActionPersonUpdate        = "person_update"
	ActionPersonDelete        = "person_delete"
	ActionConsolidation       = "consolidation_create"
	ActionConsolidationRemove = "consolidation_remove"
	ActionEventClose          = "event_close"
	ActionEventReopen         = "event_reopen"
)

type Service interface {
	Record(ctx context.Context, action *StationAction) error
	RecordToggle(operator, eventID, personID, personName, direction, outcome string)
	RecordAsync(operator, eventID, action, outcome string, details map[string]interface{})
	GetActions(ctx context.Context, filter ActionFilter) (*PaginatedActions, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Record(ctx context.Context, action *StationAction) error {
	return s.repo.Create(ctx, action)
}

// RecordToggle satisfies the check-in handler's recorder hook.
// Fire-and-forget: a history write failure never blocks or fails the
// toggle itself.
func (s *service) RecordToggle(operator, eventID, personID, personName, direction, outcome string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := s.repo.Create(ctx, &StationAction{
			Operator:   operator,
			EventID:    eventID,
			PersonID:   personID,
			PersonName: personName,
			Action:     direction,
			Outcome:    outcome,
		})
		if err != nil {
			log.Printf("⚠️ Failed to record toggle history: %v", err)
		}
	}()
}

// RecordAsync writes any other station action in the background and
// publishes it to the audit topic, which feeds the notification
// consumer.
func (s *service) RecordAsync(operator, eventID, action, outcome string, details map[string]interface{}) {
	detailsJSON := datatypes.JSON([]byte("{}"))
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			detailsJSON = datatypes.JSON(b)
		}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := s.repo.Create(ctx, &StationAction{
			Operator: operator,
			EventID:  eventID,
			Action:   action,
			Outcome:  outcome,
			Details:  detailsJSON,
		})
		if err != nil {
			log.Printf("⚠️ Failed to record station action %s: %v", action, err)
		}

		if err := utils.PublishAuditEvent(ctx, action, map[string]interface{}{
			"operator": operator,
			"event_id": eventID,
			"details":  details,
			"status":   outcome,
		}); err != nil {
			log.Printf("⚠️ Failed to publish station action %s: %v", action, err)
		}
	}()
}

func (s *service) GetActions(ctx context.Context, filter ActionFilter) (*PaginatedActions, error) {
	actions, total, err := s.repo.GetByFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	if filter.Limit == 0 {
		totalPages = 0
	}

	return &PaginatedActions{
		Data:       actions,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}
