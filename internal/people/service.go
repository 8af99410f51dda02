package people

import (
	"context"
	"log"
	"strings"

	"github.com/sharmila-j/church-checkin-gateway/internal/api"
	"github.com/sharmila-j/church-checkin-gateway/internal/checkin"
	"github.com/sharmila-j/church-checkin-gateway/internal/directory"
	"github.com/sharmila-j/church-checkin-gateway/internal/history"
)

// Service handles person mutations. The upstream owns the person
// records; every write goes there first, then the local cache is
// patched immediately and re-synced in the background so the next
// grid render shows the change without waiting for the full refresh.
type Service struct {
	Client  *api.Client
	DirSvc  *directory.Service
	Engine  *checkin.Engine
	History history.Service
}

func NewService(client *api.Client, dirSvc *directory.Service, engine *checkin.Engine, hist history.Service) *Service {
	return &Service{Client: client, DirSvc: dirSvc, Engine: engine, History: hist}
}

// PersonRequest carries the editable person fields.
type PersonRequest struct {
	FirstName    string `json:"first_name" binding:"required"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	LeaderAt1    string `json:"leader_at_1"`
	LeaderAt12   string `json:"leader_at_12"`
	LeaderAt144  string `json:"leader_at_144"`
	LeaderAt1728 string `json:"leader_at_1728"`
	Gender       string `json:"gender"`
	Address      string `json:"address"`
	BirthDate    string `json:"birth_date"`
	InvitedBy    string `json:"invited_by"`
	Stage        string `json:"stage"`
}

func (r PersonRequest) toPerson(id string) api.Person {
	return api.Person{
		ID:           id,
		FirstName:    strings.TrimSpace(r.FirstName),
		LastName:     strings.TrimSpace(r.LastName),
		Email:        strings.TrimSpace(r.Email),
		Phone:        strings.TrimSpace(r.Phone),
		LeaderAt1:    r.LeaderAt1,
		LeaderAt12:   r.LeaderAt12,
		LeaderAt144:  r.LeaderAt144,
		LeaderAt1728: r.LeaderAt1728,
		Gender:       r.Gender,
		Address:      r.Address,
		BirthDate:    r.BirthDate,
		InvitedBy:    r.InvitedBy,
		Stage:        r.Stage,
	}
}

// List returns the cached directory.
func (s *Service) List() []api.Person {
	return s.DirSvc.Cache.All()
}

// Get resolves one person by id or email.
func (s *Service) Get(idOrEmail string) (api.Person, bool) {
	return s.DirSvc.Cache.Resolve(idOrEmail, idOrEmail)
}

// Create writes the person upstream, patches the cache with the
// returned record and schedules a full refresh.
func (s *Service) Create(ctx context.Context, req PersonRequest, operator string) (*api.Person, error) {
	created, err := s.Client.CreatePerson(ctx, req.toPerson(""))
	if err != nil {
		s.History.RecordAsync(operator, "", history.ActionPersonCreate, "failure", map[string]interface{}{"name": req.FirstName + " " + req.LastName})
		return nil, err
	}

	s.DirSvc.Cache.Upsert(*created)
	s.refreshAsync()

	s.History.RecordAsync(operator, "", history.ActionPersonCreate, "success", map[string]interface{}{"person_id": created.ID})
	return created, nil
}

// Update writes the change upstream and patches the cache in place.
func (s *Service) Update(ctx context.Context, id string, req PersonRequest, operator string) (*api.Person, error) {
	updated, err := s.Client.UpdatePerson(ctx, id, req.toPerson(id))
	if err != nil {
		s.History.RecordAsync(operator, "", history.ActionPersonUpdate, "failure", map[string]interface{}{"person_id": id})
		return nil, err
	}

	s.DirSvc.Cache.Upsert(*updated)
	s.refreshAsync()

	s.History.RecordAsync(operator, "", history.ActionPersonUpdate, "success", map[string]interface{}{"person_id": id})
	return updated, nil
}

// Delete removes the person upstream, then cascades the removal
// through the directory cache, every joined event list and the live
// realtime slice in one update. Without the cascade the deleted row
// would linger on screen until the next poll.
func (s *Service) Delete(ctx context.Context, id, operator string) error {
	if err := s.Client.DeletePerson(ctx, id); err != nil {
		s.History.RecordAsync(operator, "", history.ActionPersonDelete, "failure", map[string]interface{}{"person_id": id})
		return err
	}

	s.Engine.CascadeRemovePerson(id)
	s.refreshAsync()

	s.History.RecordAsync(operator, "", history.ActionPersonDelete, "success", map[string]interface{}{"person_id": id})
	return nil
}

// refreshAsync triggers the upstream cache rebuild and local re-sync
// without holding up the mutation response.
func (s *Service) refreshAsync() {
	go func() {
		if err := s.DirSvc.RefreshUpstreamAndLocal(context.Background()); err != nil {
			log.Printf("⚠️ Background directory refresh failed: %v", err)
		}
	}()
}
