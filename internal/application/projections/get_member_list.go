package projections

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gymtrack/internal/adapters/storage/member"
	"gymtrack/internal/application/listutil"
	domainMember "gymtrack/internal/domain/member"
)

// GetMemberListQuery carries query parameters.
type GetMemberListQuery struct {
	Search       string
	Status       string
	JoinDateFrom *time.Time
	JoinDateTo   *time.Time
	Page         int
	Limit        int
}

// GetMemberListResult carries the query result.
type GetMemberListResult struct {
	Members    []domainMember.Member
	Pagination listutil.PageInfo
}

// GetMemberListDeps holds dependencies for GetMemberList.
type GetMemberListDeps struct {
	MemberStore MemberStore
}

// QueryGetMemberList returns one page of members plus pagination metadata.
// PRE: Status is empty or a membership status
// POST: Members holds at most Limit entries in list order; a page past the
// end yields an empty slice with the true TotalCount
func QueryGetMemberList(ctx context.Context, query GetMemberListQuery, deps GetMemberListDeps) (GetMemberListResult, error) {
	status := strings.ToLower(strings.TrimSpace(query.Status))
	if status != "" && !domainMember.IsValidStatus(status) {
		return GetMemberListResult{}, domainMember.NewValidationError("status must be one of paid, partial, unpaid")
	}
	if query.JoinDateFrom != nil && query.JoinDateTo != nil && query.JoinDateFrom.After(*query.JoinDateTo) {
		return GetMemberListResult{}, domainMember.NewValidationError("joinDateFrom must not be after joinDateTo")
	}

	page := listutil.PageParams{Page: query.Page, Limit: query.Limit}.Normalize()
	filter := member.ListFilter{
		Search:       strings.TrimSpace(query.Search),
		Status:       status,
		JoinDateFrom: query.JoinDateFrom,
		JoinDateTo:   query.JoinDateTo,
		Limit:        page.Limit,
		Offset:       page.Offset(),
	}

	members, err := deps.MemberStore.List(ctx, filter)
	if err != nil {
		return GetMemberListResult{}, fmt.Errorf("list members: %w", err)
	}
	total, err := deps.MemberStore.Count(ctx, filter)
	if err != nil {
		return GetMemberListResult{}, fmt.Errorf("count members: %w", err)
	}

	return GetMemberListResult{
		Members:    members,
		Pagination: listutil.NewPageInfo(page.Page, page.Limit, total),
	}, nil
}
