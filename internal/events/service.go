package events

import (
	"context"
	"log"
	"strings"

	"github.com/sharmila-j/church-checkin-gateway/internal/api"
	"github.com/sharmila-j/church-checkin-gateway/internal/checkin"
	"github.com/sharmila-j/church-checkin-gateway/internal/history"
	"github.com/sharmila-j/church-checkin-gateway/utils"
)

// Service handles event lifecycle actions: closing out an event at the
// end of the night and reopening one closed by mistake.
type Service struct {
	Client  *api.Client
	Engine  *checkin.Engine
	History history.Service

	// recipients for the close summary email, may be empty
	closeRecipients []string
}

func NewService(client *api.Client, engine *checkin.Engine, hist history.Service, closeRecipients string) *Service {
	var recipients []string
	for _, r := range strings.Split(closeRecipients, ",") {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	return &Service{Client: client, Engine: engine, History: hist, closeRecipients: recipients}
}

// CloseResult reports a close or reopen outcome.
type CloseResult struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
	// AlreadyClosed marks the idempotent case: someone at another
	// station closed it first. Their attribution is kept.
	AlreadyClosed bool   `json:"already_closed,omitempty"`
	ClosedBy      string `json:"closed_by,omitempty"`
	ClosedAt      string `json:"closed_at,omitempty"`
}

// Close marks the event complete upstream. Closing an already-closed
// event succeeds without overwriting who closed it first.
func (s *Service) Close(ctx context.Context, eventID, operator string) (*CloseResult, error) {
	res, err := s.Client.ToggleEventStatus(ctx, eventID, checkin.EventStatusComplete, operator)
	if err != nil {
		s.History.RecordAsync(operator, eventID, history.ActionEventClose, "failure", nil)
		return nil, err
	}

	result := &CloseResult{
		EventID:       eventID,
		Status:        res.Status,
		AlreadyClosed: res.AlreadyClosed,
		ClosedBy:      res.ClosedBy,
		ClosedAt:      res.ClosedAt,
	}
	if result.ClosedBy == "" && !res.AlreadyClosed {
		result.ClosedBy = operator
	}

	s.Engine.PatchEventStatus(eventID, checkin.EventStatusComplete, result.ClosedBy, result.ClosedAt)
	s.History.RecordAsync(operator, eventID, history.ActionEventClose, "success", map[string]interface{}{
		"already_closed": res.AlreadyClosed,
	})

	if !res.AlreadyClosed {
		s.sendCloseSummary(eventID, result.ClosedBy)
	}

	return result, nil
}

// Reopen returns a closed event to the incomplete state so check-ins
// can resume.
func (s *Service) Reopen(ctx context.Context, eventID, operator string) (*CloseResult, error) {
	res, err := s.Client.ToggleEventStatus(ctx, eventID, checkin.EventStatusIncomplete, operator)
	if err != nil {
		s.History.RecordAsync(operator, eventID, history.ActionEventReopen, "failure", nil)
		return nil, err
	}

	s.Engine.PatchEventStatus(eventID, checkin.EventStatusIncomplete, "", "")
	s.History.RecordAsync(operator, eventID, history.ActionEventReopen, "success", nil)

	return &CloseResult{EventID: eventID, Status: res.Status}, nil
}

// sendCloseSummary emails the night's headline numbers to the
// configured recipients.
func (s *Service) sendCloseSummary(eventID, closedBy string) {
	if len(s.closeRecipients) == 0 {
		return
	}

	ev, ok := s.Engine.EventByID(eventID)
	if !ok {
		return
	}

	attendance := ev.AttendanceCount
	if ev.ID == s.Engine.SelectedEventID() {
		// The live counter is fresher than the joined list for the
		// selected event.
		attendance = s.Engine.PresentCount()
	}

	for _, recipient := range s.closeRecipients {
		to := recipient
		go func() {
			if err := utils.SendEventClosedEmail(to, closedBy, ev.Name, attendance, ev.NewPeopleCount, ev.ConsolidatedCount); err != nil {
				log.Printf("⚠️ Event close summary email to %s failed: %v", to, err)
			}
		}()
	}
}
