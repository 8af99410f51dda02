package consolidation

import (
	"context"
	"log"
	"strings"

	"github.com/sharmila-j/church-checkin-gateway/internal/api"
	"github.com/sharmila-j/church-checkin-gateway/internal/checkin"
	"github.com/sharmila-j/church-checkin-gateway/internal/directory"
	"github.com/sharmila-j/church-checkin-gateway/internal/history"
	"github.com/sharmila-j/church-checkin-gateway/utils"
)

// Service records follow-up decisions for people reached during an
// event and assigns a leader to walk with them.
type Service struct {
	Client  *api.Client
	Engine  *checkin.Engine
	DirSvc  *directory.Service
	History history.Service
}

func NewService(client *api.Client, engine *checkin.Engine, dirSvc *directory.Service, hist history.Service) *Service {
	return &Service{Client: client, Engine: engine, DirSvc: dirSvc, History: hist}
}

// CreateRequest is one consolidation decision.
type CreateRequest struct {
	EventID    string `json:"event_id" binding:"required"`
	PersonID   string `json:"person_id"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email"`
	Decision   string `json:"decision" binding:"required"`
	AssignedTo string `json:"assigned_to"`
	Notes      string `json:"notes"`
	// Force skips the duplicate guard after the operator confirms.
	Force bool `json:"force"`
}

// CreateResult reports the outcome, including a duplicate warning the
// station surfaces as a confirm dialog.
type CreateResult struct {
	Consolidation *checkin.Consolidation `json:"consolidation,omitempty"`
	Duplicate     bool                   `json:"duplicate,omitempty"`
	Message       string                 `json:"message,omitempty"`
}

// Create records the decision upstream. The duplicate guard is a
// station-side fast path over already-loaded state; the upstream
// still enforces whatever uniqueness it wants.
func (s *Service) Create(ctx context.Context, req CreateRequest, operator string) (*CreateResult, error) {
	if !req.Force {
		if dup, msg := s.duplicateCheck(req); dup {
			return &CreateResult{Duplicate: true, Message: msg}, nil
		}
	}

	raw, err := s.Client.CreateConsolidation(ctx, api.CreateConsolidationRequest{
		EventID:    req.EventID,
		PersonID:   req.PersonID,
		Name:       req.Name,
		Email:      req.Email,
		Decision:   req.Decision,
		AssignedTo: req.AssignedTo,
		Notes:      req.Notes,
	})
	if err != nil {
		s.History.RecordAsync(operator, req.EventID, history.ActionConsolidation, "failure", map[string]interface{}{"name": req.Name})
		return nil, err
	}

	joined := checkin.JoinConsolidation(req.EventID, *raw, s.DirSvc.Cache)

	s.History.RecordAsync(operator, req.EventID, history.ActionConsolidation, "success", map[string]interface{}{
		"name": joined.Name, "decision": joined.Decision, "assigned_to": joined.AssignedTo,
	})

	s.notifyLeader(joined, req.EventID)

	// Pull fresh server truth so the consolidated modal shows the new
	// row without waiting for the next poll.
	go func() {
		if err := s.Engine.RefreshRealtime(context.Background()); err != nil {
			log.Printf("⚠️ Post-consolidation refresh failed: %v", err)
		}
	}()

	return &CreateResult{Consolidation: &joined}, nil
}

// duplicateCheck scans the loaded consolidation list and the person's
// directory stage. Best-effort only: it sees what the station has in
// memory, nothing more.
func (s *Service) duplicateCheck(req CreateRequest) (bool, string) {
	_, _, consolidations := s.Engine.Realtime()
	wantName := strings.ToLower(strings.TrimSpace(req.Name))
	for _, c := range consolidations {
		if req.PersonID != "" && c.PersonID == req.PersonID {
			return true, c.Name + " already has a consolidation for this event"
		}
		if wantName != "" && strings.ToLower(strings.TrimSpace(c.Name)) == wantName {
			return true, c.Name + " already has a consolidation for this event"
		}
	}

	if req.PersonID != "" {
		if p, ok := s.DirSvc.Cache.ByID(req.PersonID); ok {
			if strings.EqualFold(p.Stage, "consolidated") {
				return true, p.FullName() + " is already marked consolidated in the directory"
			}
		}
	}

	return false, ""
}

// notifyLeader emails the assigned leader when an address is known.
// Delivery failure is logged, never surfaced to the operator.
func (s *Service) notifyLeader(c checkin.Consolidation, eventID string) {
	if c.AssignedEmail == "" || c.AssignedTo == "" {
		return
	}

	eventName := eventID
	if ev, ok := s.Engine.EventByID(eventID); ok {
		eventName = ev.Name
	}

	go func() {
		if err := utils.SendConsolidationAssignmentEmail(c.AssignedEmail, c.AssignedTo, c.Name, c.Decision, eventName); err != nil {
			log.Printf("⚠️ Consolidation assignment email failed: %v", err)
		}
	}()
}

// Remove takes a decision back, the mirror of Create for a record made
// at the wrong event or for the wrong person.
func (s *Service) Remove(ctx context.Context, eventID, personID, operator string) error {
	if err := s.Client.RemoveFromCheckin(ctx, eventID, personID, "consolidation"); err != nil {
		s.History.RecordAsync(operator, eventID, history.ActionConsolidationRemove, "failure", map[string]interface{}{"person_id": personID})
		return err
	}

	s.History.RecordAsync(operator, eventID, history.ActionConsolidationRemove, "success", map[string]interface{}{"person_id": personID})

	go func() {
		if err := s.Engine.RefreshRealtime(context.Background()); err != nil {
			log.Printf("⚠️ Post-removal refresh failed: %v", err)
		}
	}()
	return nil
}

// List returns the loaded consolidations for the selected event.
func (s *Service) List() []checkin.Consolidation {
	_, _, consolidations := s.Engine.Realtime()
	return consolidations
}
