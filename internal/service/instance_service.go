package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/commune-hq/commune/internal/domain"
	"github.com/commune-hq/commune/internal/repository"
)

var (
	ErrInstanceNotFound   = errors.New("instance not found")
	ErrNotInstanceAdmin   = errors.New("only the instance admin can perform this action")
	ErrDomainTaken        = errors.New("instance domain already registered")
	ErrSelfFederation     = errors.New("an instance cannot federate with itself")
	ErrAlreadyFederated   = errors.New("federation link already exists for this pair")
	ErrFederationNotFound = errors.New("federation link not found")
	ErrInvalidStatus      = errors.New("invalid federation status")
	ErrInvalidLinkToken   = errors.New("invalid or expired federation link token")
	ErrInvalidRules       = errors.New("invalid instance configuration")
)

const linkTokenTTL = 72 * time.Hour

// ActivityNotifier fans out freshly appended activity entries, e.g. to
// connected admin consoles. May be nil.
type ActivityNotifier interface {
	NotifyActivity(act *domain.Activity)
}

type InstanceService struct {
	instanceRepo repository.InstanceRepository
	activityRepo repository.ActivityRepository
	notifier     ActivityNotifier
	linkSecret   []byte
}

func NewInstanceService(instanceRepo repository.InstanceRepository, activityRepo repository.ActivityRepository, notifier ActivityNotifier, linkSecret string) *InstanceService {
	return &InstanceService{
		instanceRepo: instanceRepo,
		activityRepo: activityRepo,
		notifier:     notifier,
		linkSecret:   []byte(linkSecret),
	}
}

type CreateInstanceInput struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// Create registers a new instance with the acting user as its admin.
func (s *InstanceService) Create(ctx context.Context, actorID int64, input CreateInstanceInput) (*domain.Instance, error) {
	existing, err := s.instanceRepo.GetByDomain(ctx, input.Domain)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDomainTaken
	}

	inst := &domain.Instance{
		Name:                  input.Name,
		Domain:                input.Domain,
		AdminUserID:           actorID,
		ModerationRules:       domain.ModerationRules{Version: 1},
		RequiredProfileFields: domain.RequiredProfileFields{Version: 1},
		FederationRules:       domain.FederationRules{Version: 1},
		CreatedAt:             time.Now(),
	}
	if err := s.instanceRepo.Create(ctx, inst); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDomainTaken
		}
		return nil, fmt.Errorf("creating instance: %w", err)
	}

	s.record(ctx, inst.ID, &actorID, domain.ActivityInstanceCreated, map[string]any{
		"domain": inst.Domain,
	})
	return inst, nil
}

func (s *InstanceService) Get(ctx context.Context, id int64) (*domain.Instance, error) {
	inst, err := s.instanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, ErrInstanceNotFound
	}
	return inst, nil
}

func (s *InstanceService) List(ctx context.Context) ([]domain.Instance, error) {
	return s.instanceRepo.List(ctx)
}

type UpdateSettingsInput struct {
	Name                  *string                       `json:"name"`
	ModerationRules       *domain.ModerationRules       `json:"moderation_rules"`
	RequiredProfileFields *domain.RequiredProfileFields `json:"required_profile_fields"`
	FederationRules       *domain.FederationRules       `json:"federation_rules"`
}

func (s *InstanceService) UpdateSettings(ctx context.Context, actorID, instanceID int64, input UpdateSettingsInput) (*domain.Instance, error) {
	inst, err := s.requireAdmin(ctx, actorID, instanceID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		inst.Name = *input.Name
	}
	if input.ModerationRules != nil {
		if err := input.ModerationRules.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
		}
		inst.ModerationRules = *input.ModerationRules
	}
	if input.RequiredProfileFields != nil {
		if err := input.RequiredProfileFields.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
		}
		inst.RequiredProfileFields = *input.RequiredProfileFields
	}
	if input.FederationRules != nil {
		if err := input.FederationRules.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
		}
		inst.FederationRules = *input.FederationRules
	}

	if err := s.instanceRepo.UpdateSettings(ctx, inst); err != nil {
		return nil, fmt.Errorf("updating instance settings: %w", err)
	}

	s.record(ctx, inst.ID, &actorID, domain.ActivitySettingsUpdated, nil)
	return inst, nil
}

// RequestFederation creates a pending directed edge from instanceID to
// peerID and mints a signed link token the peer's admin presents to accept.
func (s *InstanceService) RequestFederation(ctx context.Context, actorID, instanceID, peerID int64) (*domain.FederatedInstance, string, error) {
	if instanceID == peerID {
		return nil, "", ErrSelfFederation
	}

	inst, err := s.requireAdmin(ctx, actorID, instanceID)
	if err != nil {
		return nil, "", err
	}

	peer, err := s.instanceRepo.GetByID(ctx, peerID)
	if err != nil {
		return nil, "", err
	}
	if peer == nil {
		return nil, "", ErrInstanceNotFound
	}

	fed := &domain.FederatedInstance{
		InstanceID:        instanceID,
		FedWithInstanceID: peerID,
		Status:            domain.FederationPending,
		CreatedAt:         time.Now(),
	}
	if err := s.instanceRepo.CreateFederation(ctx, fed); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, "", ErrAlreadyFederated
		}
		return nil, "", fmt.Errorf("creating federation link: %w", err)
	}
	fed.PeerDomain = peer.Domain

	token, err := s.mintLinkToken(fed.ID, inst.Domain, peer.Domain)
	if err != nil {
		return nil, "", fmt.Errorf("minting link token: %w", err)
	}

	s.record(ctx, instanceID, &actorID, domain.ActivityFederationRequested, map[string]any{
		"peer": peer.Domain,
	})
	return fed, token, nil
}

// AcceptFederation verifies a link token and activates the edge it names.
// The actor must administer the instance the edge points at.
func (s *InstanceService) AcceptFederation(ctx context.Context, actorID int64, token string) (*domain.FederatedInstance, error) {
	fedID, err := s.verifyLinkToken(token)
	if err != nil {
		return nil, ErrInvalidLinkToken
	}

	fed, err := s.instanceRepo.GetFederation(ctx, fedID)
	if err != nil {
		return nil, err
	}
	if fed == nil {
		return nil, ErrFederationNotFound
	}

	if _, err := s.requireAdmin(ctx, actorID, fed.FedWithInstanceID); err != nil {
		return nil, err
	}

	if err := s.instanceRepo.UpdateFederationStatus(ctx, fed.ID, domain.FederationActive); err != nil {
		return nil, fmt.Errorf("activating federation link: %w", err)
	}
	fed.Status = domain.FederationActive

	s.record(ctx, fed.FedWithInstanceID, &actorID, domain.ActivityFederationAccepted, map[string]any{
		"link_id": fed.ID,
	})
	return fed, nil
}

func (s *InstanceService) ListFederation(ctx context.Context, actorID, instanceID int64) ([]domain.FederatedInstance, error) {
	if _, err := s.requireAdmin(ctx, actorID, instanceID); err != nil {
		return nil, err
	}
	return s.instanceRepo.ListFederation(ctx, instanceID)
}

func (s *InstanceService) UpdateFederationStatus(ctx context.Context, actorID, instanceID, fedID int64, status string) (*domain.FederatedInstance, error) {
	switch status {
	case domain.FederationActive, domain.FederationBlocked, domain.FederationRejected:
	default:
		return nil, ErrInvalidStatus
	}

	if _, err := s.requireAdmin(ctx, actorID, instanceID); err != nil {
		return nil, err
	}

	fed, err := s.instanceRepo.GetFederation(ctx, fedID)
	if err != nil {
		return nil, err
	}
	if fed == nil || fed.InstanceID != instanceID {
		return nil, ErrFederationNotFound
	}

	if err := s.instanceRepo.UpdateFederationStatus(ctx, fedID, status); err != nil {
		return nil, fmt.Errorf("updating federation status: %w", err)
	}
	fed.Status = status

	s.record(ctx, instanceID, &actorID, domain.ActivityFederationUpdated, map[string]any{
		"link_id": fedID,
		"status":  status,
	})
	return fed, nil
}

func (s *InstanceService) RemoveFederation(ctx context.Context, actorID, instanceID, fedID int64) error {
	if _, err := s.requireAdmin(ctx, actorID, instanceID); err != nil {
		return err
	}

	fed, err := s.instanceRepo.GetFederation(ctx, fedID)
	if err != nil {
		return err
	}
	if fed == nil || fed.InstanceID != instanceID {
		return ErrFederationNotFound
	}

	if err := s.instanceRepo.DeleteFederation(ctx, fedID); err != nil {
		return err
	}

	s.record(ctx, instanceID, &actorID, domain.ActivityFederationRemoved, map[string]any{
		"link_id": fedID,
	})
	return nil
}

// Activities returns the instance's recent activity log, admin only.
func (s *InstanceService) Activities(ctx context.Context, actorID, instanceID int64, limit int) ([]domain.Activity, error) {
	if _, err := s.requireAdmin(ctx, actorID, instanceID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.activityRepo.ListByInstance(ctx, instanceID, limit)
}

// IsAdmin reports whether the user administers the instance. Used by the
// websocket handler and the admin pages.
func (s *InstanceService) IsAdmin(ctx context.Context, userID, instanceID int64) (bool, error) {
	inst, err := s.instanceRepo.GetByID(ctx, instanceID)
	if err != nil {
		return false, err
	}
	return inst != nil && inst.AdminUserID == userID, nil
}

func (s *InstanceService) requireAdmin(ctx context.Context, actorID, instanceID int64) (*domain.Instance, error) {
	inst, err := s.instanceRepo.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, ErrInstanceNotFound
	}
	if inst.AdminUserID != actorID {
		return nil, ErrNotInstanceAdmin
	}
	return inst, nil
}

func (s *InstanceService) record(ctx context.Context, instanceID int64, actorID *int64, actType string, payload map[string]any) {
	var raw json.RawMessage
	if payload != nil {
		raw, _ = json.Marshal(payload)
	}

	act := &domain.Activity{
		InstanceID: instanceID,
		ActorID:    actorID,
		Type:       actType,
		Payload:    raw,
		CreatedAt:  time.Now(),
	}
	// Activity logging must not fail the mutation it describes.
	if err := s.activityRepo.Append(ctx, act); err != nil {
		return
	}
	if s.notifier != nil {
		s.notifier.NotifyActivity(act)
	}
}

func (s *InstanceService) mintLinkToken(fedID int64, issuerDomain, audienceDomain string) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(fedID, 10),
		"iss": issuerDomain,
		"aud": audienceDomain,
		"exp": time.Now().Add(linkTokenTTL).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.linkSecret)
}

func (s *InstanceService) verifyLinkToken(tokenStr string) (int64, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.linkSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidLinkToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidLinkToken
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return 0, ErrInvalidLinkToken
	}
	return strconv.ParseInt(sub, 10, 64)
}
