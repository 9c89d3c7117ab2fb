package rentbot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rentbot/backend/internal/domain/rental"
	"github.com/rentbot/backend/internal/domain/shared"
	"github.com/rentbot/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ErrLandlordNotRegistered is returned when no landlord owns the sender's number
var ErrLandlordNotRegistered = errors.New("rentbot: landlord not registered")

func isNotRegistered(err error) bool {
	return errors.Is(err, ErrLandlordNotRegistered)
}

// ResolveLandlord maps a channel address to the registered landlord.
// Every address variant of a number ("+256…", "256…@s.whatsapp.net",
// "256…:3@s.whatsapp.net") resolves to the same landlord.
func (s *Service) ResolveLandlord(ctx context.Context, address string) (*rental.Landlord, error) {
	phone := rental.NormalizePhone(address)
	if phone == "" {
		return nil, ErrLandlordNotRegistered
	}

	landlord, err := s.landlords.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrLandlordNotRegistered, rental.MaskPhone(phone))
		}
		return nil, fmt.Errorf("failed to find landlord: %w", err)
	}
	return landlord, nil
}

// TenantMatchPolicy decides which tenant a name fragment refers to
type TenantMatchPolicy string

const (
	// TenantMatchPrompt uses an exact name match or a single fuzzy match and
	// asks the landlord to disambiguate otherwise
	TenantMatchPrompt TenantMatchPolicy = "prompt"
	// TenantMatchFirst silently takes the first fuzzy match
	TenantMatchFirst TenantMatchPolicy = "first"
)

// IsValid checks if the policy is known
func (p TenantMatchPolicy) IsValid() bool {
	return p == TenantMatchPrompt || p == TenantMatchFirst
}

// pickTenant applies policy to the repository matches for name. A nil tenant
// with candidates means the landlord has to choose.
func pickTenant(policy TenantMatchPolicy, name string, matches []rental.Tenant) (*rental.Tenant, []rental.Tenant) {
	if len(matches) == 0 {
		return nil, nil
	}
	if policy == TenantMatchFirst || len(matches) == 1 {
		return &matches[0], nil
	}

	wanted := strings.TrimSpace(name)
	var exact []rental.Tenant
	for _, t := range matches {
		if strings.EqualFold(strings.TrimSpace(t.Name), wanted) {
			exact = append(exact, t)
		}
	}
	if len(exact) == 1 {
		return &exact[0], nil
	}
	if len(exact) > 1 {
		if samePhone(exact) {
			return &exact[0], nil
		}
		return nil, exact
	}
	return nil, matches
}

// samePhone reports whether tenants cannot be told apart by phone either
func samePhone(tenants []rental.Tenant) bool {
	for _, t := range tenants[1:] {
		if rental.NormalizePhone(t.Phone) != rental.NormalizePhone(tenants[0].Phone) {
			return false
		}
	}
	return true
}

// minPhoneHint is the shortest digit run accepted as a phone suffix
const minPhoneHint = 3

// splitPhoneHint separates a trailing phone suffix from a tenant name, so
// "Mary 4567" searches for "Mary" among tenants whose phone ends in 4567
func splitPhoneHint(name string) (string, string) {
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return name, ""
	}
	last := fields[len(fields)-1]
	if len(last) < minPhoneHint || strings.Trim(last, "0123456789") != "" {
		return name, ""
	}
	return strings.Join(fields[:len(fields)-1], " "), last
}

func filterByPhoneSuffix(tenants []rental.Tenant, suffix string) []rental.Tenant {
	var out []rental.Tenant
	for _, t := range tenants {
		if strings.HasSuffix(rental.NormalizePhone(t.Phone), suffix) {
			out = append(out, t)
		}
	}
	return out
}

// selectTenant resolves name to one of the landlord's tenants. When no
// tenant is selected it returns the reply to send instead.
func (s *Service) selectTenant(ctx context.Context, landlord *rental.Landlord, name string) (*rental.Tenant, string, Outcome) {
	search, phoneHint := splitPhoneHint(name)
	matches, err := s.tenants.SearchByName(ctx, landlord.ID, search)
	if err != nil {
		logger.L(ctx).Error("Tenant search failed", zap.String("tenant", name), zap.Error(err))
		return nil, replyDatabaseError, OutcomeDatabaseError
	}
	if phoneHint != "" {
		matches = filterByPhoneSuffix(matches, phoneHint)
	}
	if len(matches) == 0 {
		return nil, replyTenantNotFound(name), OutcomeTenantNotFound
	}

	tenant, candidates := pickTenant(s.tenantMatch, search, matches)
	if tenant == nil {
		logger.L(ctx).Info("Tenant name is ambiguous",
			zap.String("tenant", name),
			zap.Int("candidates", len(candidates)))
		return nil, replyAmbiguousTenant(name, candidates), OutcomeAmbiguousTenant
	}

	logger.L(ctx).Debug("Tenant matched",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("tenant", tenant.Name))
	return tenant, "", ""
}
