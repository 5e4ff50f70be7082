package projections

import (
	"context"

	domainMember "gymtrack/internal/domain/member"
)

// GetMemberQuery carries query parameters.
type GetMemberQuery struct {
	MemberID string
}

// GetMemberDeps holds dependencies for GetMember.
type GetMemberDeps struct {
	MemberStore MemberStore
}

// QueryGetMember returns a single member.
// POST: returns domainMember.ErrNotFound for an unknown or empty ID
func QueryGetMember(ctx context.Context, query GetMemberQuery, deps GetMemberDeps) (domainMember.Member, error) {
	if query.MemberID == "" {
		return domainMember.Member{}, domainMember.ErrNotFound
	}
	return deps.MemberStore.GetByID(ctx, query.MemberID)
}
