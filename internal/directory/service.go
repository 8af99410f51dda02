package directory

import (
	"context"
	"log"

	"github.com/sharmila-j/church-checkin-gateway/internal/api"
	"github.com/sharmila-j/church-checkin-gateway/utils"
)

// Service owns the directory cache and its refresh path. Refresh is
// explicit (bootstrap, or after any person mutation) and always
// replaces the whole cache.
type Service struct {
	Client *api.Client
	Cache  *Cache
}

func NewService(client *api.Client, cache *Cache) *Service {
	return &Service{Client: client, Cache: cache}
}

// Refresh fetches the upstream people snapshot and installs it.
func (s *Service) Refresh(ctx context.Context) error {
	people, err := s.Client.FetchDirectory(ctx)
	if err != nil {
		utils.UpstreamErrorsTotal.WithLabelValues("fetch_directory").Inc()
		return err
	}
	s.Cache.Replace(people)
	log.Printf("✅ Directory cache refreshed (%d people)", len(people))
	return nil
}

// RefreshUpstreamAndLocal asks the upstream to rebuild its own people
// cache first, then pulls the fresh snapshot. Used after person
// mutations; the trigger failing is tolerated since the snapshot fetch
// still picks up whatever the upstream has.
func (s *Service) RefreshUpstreamAndLocal(ctx context.Context) error {
	if err := s.Client.TriggerDirectoryRefresh(ctx); err != nil {
		log.Printf("⚠️ Upstream cache refresh trigger failed: %v", err)
	}
	return s.Refresh(ctx)
}
