package requests

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tradematch/tradematch-be/internal/domain"
	"github.com/tradematch/tradematch-be/internal/matching"
	"github.com/tradematch/tradematch-be/internal/notify"
)

// Store is the persistence surface consumed by the state machine.
type Store interface {
	GetPost(ctx context.Context, postID string) (*domain.Post, error)
	GetProfile(ctx context.Context, userID string) (*domain.ContractorProfile, error)
	GetRequest(ctx context.Context, requestID string) (*domain.JobRequest, error)
	// FindRequestByPair returns the single request for (post, subcontractor),
	// or domain.ErrNotFound when the slot is empty.
	FindRequestByPair(ctx context.Context, postID, subcontractorID string) (*domain.JobRequest, error)
	// InsertRequest returns domain.ErrAlreadyExists on a unique-constraint
	// violation so concurrent creates can be resolved by re-reading.
	InsertRequest(ctx context.Context, req *domain.JobRequest) error
	// ReviveRequest rewrites a terminal-non-accepted record back to pending,
	// clearing responded_at and replacing message, origin and match data.
	ReviveRequest(ctx context.Context, req *domain.JobRequest) error
	SetRequestStatus(ctx context.Context, requestID string, status domain.RequestStatus, respondedAt time.Time) error
	AddAcceptedWorker(ctx context.Context, postID, workerID string) error
	CountPendingForContractor(ctx context.Context, contractorID string) (int, error)
	ListRequests(ctx context.Context, filter ListFilter) ([]domain.JobRequest, error)
}

// Assigner creates or fetches the Job once a request is accepted.
type Assigner interface {
	AcceptAndAssign(ctx context.Context, post *domain.Post, contractorID, workerID, workerRole string) (*domain.Job, bool, error)
}

// Events is the best-effort event sink; a nil publisher disables it.
type Events interface {
	Publish(ctx context.Context, event notify.Event) error
}

// ListFilter narrows the ListRequests query. Exactly one of SubcontractorID or
// ContractorID is set. Cursor is keyset-based on (created_at, request_id).
type ListFilter struct {
	SubcontractorID string
	ContractorID    string
	Status          domain.RequestStatus
	PageSize        int
	Cursor          *Cursor
}

// Cursor marks the position after the last row of the previous page.
type Cursor struct {
	CreatedAt time.Time
	RequestID string
}

// Result carries a state-machine outcome together with idempotency flags.
type Result struct {
	Request          *domain.JobRequest `json:"request"`
	Job              *domain.Job        `json:"job,omitempty"`
	AlreadyRequested bool               `json:"already_requested,omitempty"`
	Revived          bool               `json:"revived,omitempty"`
	AlreadyAssigned  bool               `json:"already_assigned,omitempty"`
}

// Service drives request lifecycle transitions.
type Service struct {
	store    Store
	assigner Assigner
	events   Events
	logger   *slog.Logger
}

// NewService creates a new request Service instance
func NewService(store Store, assigner Assigner, events Events, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		assigner: assigner,
		events:   events,
		logger:   logger,
	}
}

// CreateOrRevive handles a subcontractor applying to a post. It creates a
// pending request, returns the existing one unchanged when it is already
// pending, rejects when it is accepted, and revives any other terminal record
// in place.
func (s *Service) CreateOrRevive(ctx context.Context, postID, subcontractorID, message string) (*Result, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if post.PublisherID == subcontractorID {
		return nil, fmt.Errorf("subcontractor %s owns post %s: %w", subcontractorID, postID, domain.ErrInvalidOperation)
	}

	return s.createOrReviveSlot(ctx, post, subcontractorID, message, domain.OriginSub)
}

// InviteOrRevive handles a contractor inviting a subcontractor to their post.
// The branching mirrors CreateOrRevive with origin=contractor.
func (s *Service) InviteOrRevive(ctx context.Context, postID, contractorID, subcontractorID, note string) (*Result, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if post.PublisherID != contractorID {
		return nil, fmt.Errorf("contractor %s does not own post %s: %w", contractorID, postID, domain.ErrForbidden)
	}

	if subcontractorID == contractorID {
		return nil, fmt.Errorf("contractor cannot invite themselves: %w", domain.ErrInvalidOperation)
	}

	return s.createOrReviveSlot(ctx, post, subcontractorID, note, domain.OriginContractor)
}

// createOrReviveSlot owns the shared (post, subcontractor) slot semantics for
// both origins, including recovery from a lost concurrent insert.
func (s *Service) createOrReviveSlot(ctx context.Context, post *domain.Post, subcontractorID, message string, origin domain.Origin) (*Result, error) {
	existing, err := s.store.FindRequestByPair(ctx, post.ID, subcontractorID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return s.resolveExisting(ctx, existing, post, message, origin)
	}

	now := time.Now()
	req := &domain.JobRequest{
		ID:              uuid.New().String(),
		Origin:          origin,
		PostID:          post.ID,
		ContractorID:    post.PublisherID,
		SubcontractorID: subcontractorID,
		Status:          domain.RequestPending,
		Message:         message,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.applyMatch(ctx, req, post)

	if err := s.store.InsertRequest(ctx, req); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Lost the race on the unique constraint; the winning row is the
			// slot now, so re-read it and branch as if it existed all along.
			winner, readErr := s.store.FindRequestByPair(ctx, post.ID, subcontractorID)
			if readErr != nil {
				return nil, fmt.Errorf("failed to re-read request after conflict: %w", readErr)
			}
			return s.resolveExisting(ctx, winner, post, message, origin)
		}
		return nil, err
	}

	s.publish(ctx, notify.Event{
		Kind:         createdEventKind(origin),
		PostID:       post.ID,
		RequestID:    req.ID,
		ActorID:      initiator(req),
		TargetUserID: counterpart(req),
	})

	return &Result{Request: req}, nil
}

// resolveExisting applies the existing-record branching from the slot model.
func (s *Service) resolveExisting(ctx context.Context, existing *domain.JobRequest, post *domain.Post, message string, origin domain.Origin) (*Result, error) {
	switch existing.Status {
	case domain.RequestAccepted:
		return nil, fmt.Errorf("request %s already accepted: %w", existing.ID, domain.ErrConflict)

	case domain.RequestPending:
		return &Result{Request: existing, AlreadyRequested: true}, nil
	}

	// Terminal non-accepted: revive in place.
	existing.Status = domain.RequestPending
	existing.Origin = origin
	existing.Message = message
	existing.RespondedAt = nil
	existing.MatchScore = nil
	existing.MatchedFields = nil
	existing.UpdatedAt = time.Now()
	s.applyMatch(ctx, existing, post)

	if err := s.store.ReviveRequest(ctx, existing); err != nil {
		return nil, err
	}

	s.publish(ctx, notify.Event{
		Kind:         notify.EventRequestRevived,
		PostID:       post.ID,
		RequestID:    existing.ID,
		ActorID:      initiator(existing),
		TargetUserID: counterpart(existing),
	})

	return &Result{Request: existing, Revived: true}, nil
}

// Accept transitions a pending request to accepted and creates or fetches the
// Job. Authorization depends on origin: the counterparty accepts.
func (s *Service) Accept(ctx context.Context, requestID, actorID string) (*Result, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	role, err := s.actorRole(req, actorID)
	if err != nil {
		return nil, err
	}
	if !CanAct(req.Origin, ActionAccept, role) {
		return nil, fmt.Errorf("%s may not accept a %s-origin request: %w", role, req.Origin, domain.ErrForbidden)
	}
	if req.Status != domain.RequestPending {
		return nil, fmt.Errorf("cannot accept request in status %s: %w", req.Status, domain.ErrInvalidTransition)
	}

	now := time.Now()
	if err := s.store.SetRequestStatus(ctx, req.ID, domain.RequestAccepted, now); err != nil {
		return nil, err
	}
	req.Status = domain.RequestAccepted
	req.RespondedAt = &now
	req.UpdatedAt = now

	post, err := s.store.GetPost(ctx, req.PostID)
	if err != nil {
		return nil, err
	}

	// The accepted status above is the source of truth; assignment is an
	// independently idempotent upsert that can be retried from it.
	job, alreadyAssigned, err := s.assigner.AcceptAndAssign(ctx, post, req.ContractorID, req.SubcontractorID, s.workerRole(ctx, req.SubcontractorID))
	if err != nil {
		return nil, fmt.Errorf("request accepted but assignment failed: %w", err)
	}

	if err := s.store.AddAcceptedWorker(ctx, req.PostID, req.SubcontractorID); err != nil {
		s.logger.Warn("Failed to record accepted worker on post",
			slog.String("post_id", req.PostID),
			slog.String("worker_id", req.SubcontractorID),
			slog.Any("error", err),
		)
	}

	s.publish(ctx, notify.Event{
		Kind:         notify.EventRequestAccepted,
		PostID:       req.PostID,
		RequestID:    req.ID,
		JobID:        job.ID,
		ActorID:      actorID,
		TargetUserID: initiator(req),
	})

	return &Result{Request: req, Job: job, AlreadyAssigned: alreadyAssigned}, nil
}

// Deny declines a pending request. A contractor retracting their own invite
// records cancelled; any other denial records denied.
func (s *Service) Deny(ctx context.Context, requestID, actorID string) (*Result, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	role, err := s.actorRole(req, actorID)
	if err != nil {
		return nil, err
	}
	if !CanAct(req.Origin, ActionDeny, role) {
		return nil, fmt.Errorf("%s may not deny a %s-origin request: %w", role, req.Origin, domain.ErrForbidden)
	}
	if req.Status != domain.RequestPending {
		return nil, fmt.Errorf("cannot deny request in status %s: %w", req.Status, domain.ErrInvalidTransition)
	}

	outcome := DenyOutcome(req.Origin, role)
	now := time.Now()
	if err := s.store.SetRequestStatus(ctx, req.ID, outcome, now); err != nil {
		return nil, err
	}
	req.Status = outcome
	req.RespondedAt = &now
	req.UpdatedAt = now

	s.publish(ctx, notify.Event{
		Kind:         notify.EventRequestDenied,
		PostID:       req.PostID,
		RequestID:    req.ID,
		ActorID:      actorID,
		TargetUserID: otherParty(req, actorID),
		Detail:       string(outcome),
	})

	return &Result{Request: req}, nil
}

// Withdraw lets the requesting subcontractor pull back a pending application.
// It is idempotent: a request that already left pending is returned as-is.
func (s *Service) Withdraw(ctx context.Context, requestID, actorID string) (*Result, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	role, err := s.actorRole(req, actorID)
	if err != nil {
		return nil, err
	}
	if !CanAct(req.Origin, ActionWithdraw, role) {
		return nil, fmt.Errorf("%s may not withdraw a %s-origin request: %w", role, req.Origin, domain.ErrForbidden)
	}

	if req.Status != domain.RequestPending {
		return &Result{Request: req}, nil
	}

	now := time.Now()
	if err := s.store.SetRequestStatus(ctx, req.ID, domain.RequestWithdrawn, now); err != nil {
		return nil, err
	}
	req.Status = domain.RequestWithdrawn
	req.RespondedAt = &now
	req.UpdatedAt = now

	s.publish(ctx, notify.Event{
		Kind:         notify.EventRequestWithdrawn,
		PostID:       req.PostID,
		RequestID:    req.ID,
		ActorID:      actorID,
		TargetUserID: req.ContractorID,
	})

	return &Result{Request: req}, nil
}

// CountPendingForContractor returns the contractor's pending badge count,
// excluding requests whose post has been deleted.
func (s *Service) CountPendingForContractor(ctx context.Context, contractorID string) (int, error) {
	return s.store.CountPendingForContractor(ctx, contractorID)
}

// ListMine lists the actor's requests from their side of the marketplace.
// Requests pointing at deleted posts are excluded by the storage join.
func (s *Service) ListMine(ctx context.Context, actorID string, role Role, status domain.RequestStatus, pageSize int, cursor *Cursor) ([]domain.JobRequest, error) {
	filter := ListFilter{Status: status, PageSize: pageSize, Cursor: cursor}
	switch role {
	case RoleContractor:
		filter.ContractorID = actorID
	case RoleSubcontractor:
		filter.SubcontractorID = actorID
	default:
		return nil, fmt.Errorf("unknown role %q: %w", role, domain.ErrInvalidOperation)
	}
	return s.store.ListRequests(ctx, filter)
}

// applyMatch computes the match score and matched fields against the
// subcontractor's profile. Failures only cost the annotation, never the
// request itself. MatchedFields is always left non-nil: the column is a
// NOT NULL array and a nil slice would encode as SQL NULL.
func (s *Service) applyMatch(ctx context.Context, req *domain.JobRequest, post *domain.Post) {
	req.MatchedFields = []string{}

	profile, err := s.store.GetProfile(ctx, req.SubcontractorID)
	if err != nil {
		s.logger.Warn("Match annotation skipped, profile unavailable",
			slog.String("subcontractor_id", req.SubcontractorID),
			slog.Any("error", err),
		)
		return
	}

	if score := matching.Cosine(profile.ProfileEmbedding, post.Embedding); score >= 0 {
		req.MatchScore = &score
	}
	req.MatchedFields = matching.DeriveMatchedFields(profile, post)
}

// actorRole resolves the actor's relationship to the request. An actor who is
// neither party is forbidden.
func (s *Service) actorRole(req *domain.JobRequest, actorID string) (Role, error) {
	switch actorID {
	case "":
		return "", domain.ErrUnauthorized
	case req.ContractorID:
		return RoleContractor, nil
	case req.SubcontractorID:
		return RoleSubcontractor, nil
	}
	return "", fmt.Errorf("actor %s is not a party to the request: %w", actorID, domain.ErrForbidden)
}

func (s *Service) workerRole(ctx context.Context, subcontractorID string) string {
	profile, err := s.store.GetProfile(ctx, subcontractorID)
	if err != nil || profile.PrimaryTrade == "" {
		return "subcontractor"
	}
	return profile.PrimaryTrade
}

func (s *Service) publish(ctx context.Context, event notify.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("Event publish failed",
			slog.String("kind", event.Kind),
			slog.Any("error", err),
		)
	}
}

func createdEventKind(origin domain.Origin) string {
	if origin == domain.OriginContractor {
		return notify.EventInviteCreated
	}
	return notify.EventRequestCreated
}

// initiator is the party that opened the request.
func initiator(req *domain.JobRequest) string {
	if req.Origin == domain.OriginContractor {
		return req.ContractorID
	}
	return req.SubcontractorID
}

// counterpart is the party expected to answer.
func counterpart(req *domain.JobRequest) string {
	if req.Origin == domain.OriginContractor {
		return req.SubcontractorID
	}
	return req.ContractorID
}

func otherParty(req *domain.JobRequest, actorID string) string {
	if actorID == req.ContractorID {
		return req.SubcontractorID
	}
	return req.ContractorID
}
