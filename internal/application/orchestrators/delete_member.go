package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"gymtrack/internal/domain/member"
)

// DeleteMemberInput carries input for the orchestrator.
type DeleteMemberInput struct {
	MemberID string
}

// DeleteMemberDeps holds dependencies for DeleteMember.
type DeleteMemberDeps struct {
	MemberStore  MemberStore
	PaymentStore PaymentRecorder // optional
	Events       EventRecorder   // optional
}

// ExecuteDeleteMember permanently removes a member and its payment history.
// PRE: MemberID is non-empty
// POST: member no longer retrievable; returns member.ErrNotFound if it was
// already gone
func ExecuteDeleteMember(ctx context.Context, input DeleteMemberInput, deps DeleteMemberDeps) error {
	if input.MemberID == "" {
		return member.NewValidationError("member ID is required")
	}

	if _, err := deps.MemberStore.GetByID(ctx, input.MemberID); err != nil {
		return err
	}

	removed, err := deps.MemberStore.Delete(ctx, input.MemberID)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if !removed {
		return member.ErrNotFound
	}

	// SQL stores cascade; this clears stores without a foreign key.
	if deps.PaymentStore != nil {
		if err := deps.PaymentStore.DeleteByMember(ctx, input.MemberID); err != nil {
			slog.Warn("payment_history_cleanup_failed", "member_id", input.MemberID, "error", err)
		}
	}

	slog.Info("member_event", "event", "member_deleted", "member_id", input.MemberID)
	if deps.Events != nil {
		deps.Events.MemberDeleted()
	}
	return nil
}
