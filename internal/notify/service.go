package notify

import (
	"context"
	"fmt"
	"log"

	"firebase.google.com/go/v4/messaging"

	"github.com/sharmila-j/church-checkin-gateway/utils"
)

type Service interface {
	List(ctx context.Context, limit int, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, id uint) error
	MarkAllRead(ctx context.Context) error
	UnreadCount(ctx context.Context) (int64, error)
	Notify(ctx context.Context, n *Notification) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, limit int, unreadOnly bool) ([]Notification, error) {
	return s.repo.ListRecent(ctx, limit, unreadOnly)
}

func (s *service) MarkRead(ctx context.Context, id uint) error {
	return s.repo.MarkRead(ctx, id)
}

func (s *service) MarkAllRead(ctx context.Context) error {
	return s.repo.MarkAllRead(ctx)
}

func (s *service) UnreadCount(ctx context.Context) (int64, error) {
	return s.repo.UnreadCount(ctx)
}

// Notify stores a feed entry and, when Firebase is configured, pushes
// it to the station devices subscribed to the broadcast topic.
func (s *service) Notify(ctx context.Context, n *Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	if utils.IsFCMEnabled() {
		go s.push(n)
	}
	return nil
}

func (s *service) push(n *Notification) {
	client := utils.GetFCMClient()
	if client == nil {
		return
	}

	msg := &messaging.Message{
		Topic: "station-broadcast",
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: map[string]string{
			"action":   n.Action,
			"event_id": n.EventID,
			"feed_id":  fmt.Sprintf("%d", n.ID),
		},
	}

	if _, err := client.Send(context.Background(), msg); err != nil {
		log.Printf("⚠️ FCM push failed: %v", err)
	}
}
