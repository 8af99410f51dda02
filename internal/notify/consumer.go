package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/sharmila-j/church-checkin-gateway/utils"
)

// Consumer turns audit events from the Kafka topic into feed entries.
// Only headline actions become notifications; routine toggles would
// drown the feed.
type Consumer struct {
	service Service
}

func NewConsumer(service Service) *Consumer {
	return &Consumer{service: service}
}

// Start consumes the audit topic until ctx is cancelled. Without
// Kafka configured it logs once and returns.
func (c *Consumer) Start(ctx context.Context) {
	reader := utils.NewAuditReader("checkin-gateway-feed")
	if reader == nil {
		log.Println("⚠️ Kafka not configured, notification feed consumer disabled")
		return
	}

	go func() {
		defer reader.Close()
		log.Println("✅ Notification feed consumer started")

		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("⚠️ Audit topic read error: %v", err)
				continue
			}

			action := string(msg.Key)
			var event auditEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("⚠️ Skipping malformed audit event: %v", err)
				continue
			}

			n, ok := feedEntryFor(action, event)
			if !ok {
				continue
			}
			if err := c.service.Notify(ctx, n); err != nil {
				log.Printf("⚠️ Failed to store notification: %v", err)
			}
		}
	}()
}

// feedEntryFor maps an audit action to a feed entry, or reports that
// the action is below the feed's noise floor.
func feedEntryFor(action string, event auditEvent) (*Notification, bool) {
	if event.Status != "success" {
		return nil, false
	}

	switch action {
	case "event_close":
		return &Notification{
			Title:   "Event closed",
			Body:    fmt.Sprintf("%s closed the event", event.Operator),
			Action:  action,
			EventID: event.EventID,
		}, true
	case "event_reopen":
		return &Notification{
			Title:   "Event reopened",
			Body:    fmt.Sprintf("%s reopened the event", event.Operator),
			Action:  action,
			EventID: event.EventID,
		}, true
	case "consolidation_create":
		name, _ := event.Details["name"].(string)
		assignedTo, _ := event.Details["assigned_to"].(string)
		body := fmt.Sprintf("%s recorded a decision for %s", event.Operator, name)
		if assignedTo != "" {
			body += ", assigned to " + assignedTo
		}
		return &Notification{
			Title:   "New consolidation",
			Body:    body,
			Action:  action,
			EventID: event.EventID,
		}, true
	case "person_delete":
		return &Notification{
			Title:   "Person removed",
			Body:    fmt.Sprintf("%s deleted a person from the directory", event.Operator),
			Action:  action,
			EventID: event.EventID,
		}, true
	}
	return nil, false
}
