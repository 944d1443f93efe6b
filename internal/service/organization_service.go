package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/status-page/internal/auth"
	"github.com/spec-kit/status-page/internal/domain"
	"github.com/spec-kit/status-page/internal/repository"
	apperrors "github.com/spec-kit/status-page/pkg/util/errorutil"
)

// OrganizationService reads the tenant a resolved principal acts for. Callers
// are scoped to their own organization; there is no lookup by arbitrary id.
type OrganizationService struct {
	orgs    repository.OrganizationRepository
	members repository.MemberRepository
	logger  *zap.Logger
}

// NewOrganizationService builds the service.
func NewOrganizationService(orgs repository.OrganizationRepository, members repository.MemberRepository, logger *zap.Logger) *OrganizationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrganizationService{orgs: orgs, members: members, logger: logger}
}

// Current returns the principal's organization. Demo principals get the
// synthetic demo tenant without touching the store.
func (s *OrganizationService) Current(ctx context.Context, principal *auth.Principal) (*domain.Organization, error) {
	if principal.OrganizationID == "" {
		return nil, apperrors.NewForbidden("organization membership required")
	}
	if principal.IsDemo() {
		org := auth.DemoOrganization()
		return &org, nil
	}

	org, err := s.orgs.GetByID(ctx, principal.OrganizationID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("organization", map[string]any{"id": principal.OrganizationID})
	}
	if err != nil {
		s.logger.Warn("organization lookup failed", zap.String("organization_id", principal.OrganizationID), zap.Error(err))
		return nil, unavailable(err)
	}
	return org, nil
}

// Members lists everyone in the principal's organization.
func (s *OrganizationService) Members(ctx context.Context, principal *auth.Principal) ([]domain.Member, error) {
	if principal.IsDemo() {
		return nil, apperrors.NewForbidden("registered account required")
	}
	if principal.OrganizationID == "" {
		return nil, apperrors.NewForbidden("organization membership required")
	}

	members, err := s.members.ListByOrganization(ctx, principal.OrganizationID)
	if err != nil {
		s.logger.Warn("member listing failed", zap.String("organization_id", principal.OrganizationID), zap.Error(err))
		return nil, unavailable(err)
	}
	return members, nil
}
