package query

import "github.com/anketahub/anketa-api/internal/domain"

// EffectiveFilter applies the authorization policy to a caller-supplied
// filter and returns the filter the engine will actually execute.
//
// Admins may query any status (an empty status means "all"). Every other
// caller, including anonymous ones, is forcibly restricted to open
// listings regardless of what the request asked for. The override runs
// after DTO decoding, so client input cannot bypass it.
func EffectiveFilter(role domain.Role, requested ListingFilter) ListingFilter {
	if role == domain.RoleAdmin {
		return requested
	}
	requested.Status = domain.ListingStatusOpen
	return requested
}
