package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gymtrack/internal/domain/member"
)

// UpdateMemberInput carries input for the orchestrator.
type UpdateMemberInput struct {
	MemberID string
	Patch    member.Patch
}

// UpdateMemberDeps holds dependencies for UpdateMember.
type UpdateMemberDeps struct {
	MemberStore MemberStore
	Policy      MemberPolicy
	Now         func() time.Time
}

// ExecuteUpdateMember applies a partial update to an existing member.
// PRE: MemberID is non-empty
// POST: only patched fields change; UpdatedAt is refreshed
// INVARIANT: paid amount never exceeds the resulting fee
func ExecuteUpdateMember(ctx context.Context, input UpdateMemberInput, deps UpdateMemberDeps) (member.Member, error) {
	if input.MemberID == "" {
		return member.Member{}, member.NewValidationError("member ID is required")
	}

	existing, err := deps.MemberStore.GetByID(ctx, input.MemberID)
	if err != nil {
		return member.Member{}, err
	}

	patch := input.Patch
	patch.Name = trimPtr(patch.Name)
	patch.PhoneNumber = trimPtr(patch.PhoneNumber)

	if err := deps.Policy.ValidateUpdate(ctx, existing, patch); err != nil {
		return member.Member{}, err
	}

	existing.ApplyUpdate(patch, nowFrom(deps.Now))
	saved, err := deps.MemberStore.Save(ctx, existing)
	if err != nil {
		if errors.Is(err, member.ErrDuplicatePhone) || errors.Is(err, member.ErrNotFound) {
			return member.Member{}, err
		}
		return member.Member{}, fmt.Errorf("update member: %w", err)
	}

	slog.Info("member_event", "event", "member_updated", "member_id", saved.ID)
	return saved, nil
}
