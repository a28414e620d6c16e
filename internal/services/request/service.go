// Package request orchestrates the repair-request lifecycle: it loads
// a request, runs the state-machine operation on the in-memory
// snapshot, writes the whole updated entity back in one call and
// publishes the transition event. A per-request mutex keeps two
// lifecycle operations on the same request from interleaving.
package request

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/depanneo/backend/internal/domain/entitlement"
	"github.com/depanneo/backend/internal/domain/fault"
	"github.com/depanneo/backend/internal/domain/lifecycle"
	"github.com/depanneo/backend/internal/domain/visibility"
	"github.com/depanneo/backend/internal/lib/sl"
	"github.com/depanneo/backend/internal/models"
)

// Repository is the persistence contract for repair requests. Save
// always receives the complete entity.
type Repository interface {
	CreateRequest(ctx context.Context, req *models.RepairRequest) error
	GetRequest(ctx context.Context, id string) (*models.RepairRequest, error)
	SaveRequest(ctx context.Context, req *models.RepairRequest) error
	ListActiveRequests(ctx context.Context, completedCutoff time.Time, limit, offset int) ([]*models.RepairRequest, error)
	ListRequestsByClient(ctx context.Context, clientID string, limit, offset int) ([]*models.RepairRequest, error)
}

// Cache stores raw request records. Projections are never cached.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// EventPublisher receives one message per completed transition.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// Routing keys for lifecycle events.
const (
	RouteRequest  = "request"
	RouteResponse = "response"
)

// Service implements the request lifecycle operations.
type Service struct {
	repo   Repository
	cache  Cache
	events EventPublisher
	log    *slog.Logger
	locks  *keyedMutex
	now    func() time.Time
}

// New creates the request service.
func New(repo Repository, cache Cache, events EventPublisher, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		events: events,
		log:    log,
		locks:  newKeyedMutex(),
		now:    time.Now,
	}
}

func cacheKey(id string) string { return fmt.Sprintf("request:%s", id) }

// Create posts a new repair request for a client. The client contact
// snapshot is captured here; that is what gets masked for viewers
// without entitlement.
func (s *Service) Create(ctx context.Context, client *models.User, req models.DummyCreateRequest) (*models.RepairRequest, error) {
	if client == nil || client.Role != models.RoleClient {
		return nil, fault.New(fault.Forbidden, "only clients can post repair requests")
	}
	now := s.now().UTC()
	record := &models.RepairRequest{
		ID:              uuid.NewString(),
		ClientID:        client.UID,
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		Urgency:         req.Urgency,
		Budget:          req.Budget,
		City:            req.City,
		Address:         req.Address,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		ClientFirstName: client.FirstName,
		ClientLastName:  client.LastName,
		ClientPhone:     client.Phone,
		ClientEmail:     client.Email,
		Status:          models.RequestOpen,
		CreatedAt:       now,
	}
	if err := s.repo.CreateRequest(ctx, record); err != nil {
		return nil, err
	}
	s.log.Info("created repair request", slog.String("id", record.ID))

	if err := s.cache.Set(cacheKey(record.ID), record, time.Hour); err != nil {
		s.log.Warn("failed to cache request", slog.String("key", cacheKey(record.ID)), sl.Err(err))
	}
	return record, nil
}

// Get returns the request projected for the viewer. The projection is
// recomputed on every call; only the raw record passes through the
// cache.
func (s *Service) Get(ctx context.Context, actor *models.User, id string) (*visibility.RequestView, error) {
	record, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fault.New(fault.NotFound, "request %s does not exist", id)
	}
	view := visibility.Project(record, actor, s.now())
	return &view, nil
}

// ListActive returns the browse listing projected for the viewer.
// Completed requests older than the retention window are filtered out
// on read; nothing is deleted.
func (s *Service) ListActive(ctx context.Context, actor *models.User, limit, offset int) ([]visibility.RequestView, error) {
	now := s.now().UTC()
	cutoff := now.AddDate(0, 0, -models.RetentionDays)
	records, err := s.repo.ListActiveRequests(ctx, cutoff, limit, offset)
	if err != nil {
		return nil, err
	}
	return visibility.ProjectAll(records, actor, now), nil
}

// ListForClient returns the actor's own requests.
func (s *Service) ListForClient(ctx context.Context, actor *models.User, limit, offset int) ([]visibility.RequestView, error) {
	if actor == nil {
		return nil, fault.New(fault.Forbidden, "authentication required")
	}
	records, err := s.repo.ListRequestsByClient(ctx, actor.UID, limit, offset)
	if err != nil {
		return nil, err
	}
	return visibility.ProjectAll(records, actor, s.now()), nil
}

// Cancel withdraws a request on behalf of its owning client.
func (s *Service) Cancel(ctx context.Context, actor *models.User, id, reason string) (*lifecycle.Event, error) {
	return s.transition(ctx, id, func(record *models.RepairRequest, now time.Time) (*lifecycle.Event, error) {
		return lifecycle.Cancel(record, actor, reason, now)
	}, RouteRequest)
}

// Complete marks a request as done.
func (s *Service) Complete(ctx context.Context, actor *models.User, id string) (*lifecycle.Event, error) {
	return s.transition(ctx, id, func(record *models.RepairRequest, now time.Time) (*lifecycle.Event, error) {
		return lifecycle.Complete(record, actor, now)
	}, RouteRequest)
}

// Respond adds a reparateur's proposal to an open request.
func (s *Service) Respond(ctx context.Context, actor *models.User, id string, proposal models.DummyRespond) (*models.Response, error) {
	var created *models.Response
	_, err := s.transition(ctx, id, func(record *models.RepairRequest, now time.Time) (*lifecycle.Event, error) {
		resp, ev, err := lifecycle.AddResponse(record, actor, proposal, now)
		if err != nil {
			return nil, err
		}
		created = resp
		return ev, nil
	}, RouteResponse)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// SelectResponse records the client's choice of a reparateur. The
// selection id and the in_progress status are set on the same snapshot
// and persisted by one SaveRequest call.
func (s *Service) SelectResponse(ctx context.Context, actor *models.User, id, responseID string) (*lifecycle.Event, error) {
	return s.transition(ctx, id, func(record *models.RepairRequest, now time.Time) (*lifecycle.Event, error) {
		return lifecycle.SelectResponse(record, actor, responseID, now)
	}, RouteRequest)
}

// AdvanceResponse applies a sub-status action to one response.
func (s *Service) AdvanceResponse(ctx context.Context, actor *models.User, id, responseID string, action entitlement.Action) (*lifecycle.Event, error) {
	return s.transition(ctx, id, func(record *models.RepairRequest, now time.Time) (*lifecycle.Event, error) {
		return lifecycle.AdvanceResponse(record, actor, responseID, action, now)
	}, RouteResponse)
}

// transition is the shared load-mutate-save path. It serializes on the
// request id, loads a fresh record (never the cache), applies op with a
// single now instant, saves the whole entity, invalidates the cache
// and publishes the event. Publish failures are logged, not returned:
// the transition is already durable.
func (s *Service) transition(ctx context.Context, id string, op func(*models.RepairRequest, time.Time) (*lifecycle.Event, error), route string) (*lifecycle.Event, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	record, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fault.New(fault.NotFound, "request %s does not exist", id)
	}

	event, err := op(record, s.now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveRequest(ctx, record); err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(cacheKey(id)); err != nil {
		s.log.Warn("failed to invalidate cached request", slog.String("key", cacheKey(id)), sl.Err(err))
	}
	s.log.Info("request transition",
		slog.String("request_id", event.RequestID),
		slog.String("action", event.Action),
		slog.String("from", event.From),
		slog.String("to", event.To))

	if err := s.events.Publish(route, event); err != nil {
		s.log.Warn("failed to publish lifecycle event", sl.Err(err))
	}
	return event, nil
}

// load reads a request through the cache.
func (s *Service) load(ctx context.Context, id string) (*models.RepairRequest, error) {
	var record *models.RepairRequest
	found, err := s.cache.Get(cacheKey(id), &record)
	if err != nil {
		s.log.Warn("cache read failed", slog.String("key", cacheKey(id)), sl.Err(err))
	}
	if found && record != nil {
		return record, nil
	}
	record, err = s.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if record != nil {
		if err := s.cache.Set(cacheKey(id), record, time.Hour); err != nil {
			s.log.Warn("failed to cache request", slog.String("key", cacheKey(id)), sl.Err(err))
		}
	}
	return record, nil
}
