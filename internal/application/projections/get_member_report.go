package projections

import (
	"context"
	"fmt"
	"time"

	"gymtrack/internal/adapters/storage/member"
	domainMember "gymtrack/internal/domain/member"
)

// reportBatchSize bounds each store read while assembling a report.
const reportBatchSize = 500

// MemberReport is the full roster with statistics.
type MemberReport struct {
	GeneratedAt time.Time
	Members     []domainMember.Member
	Statistics  domainMember.Statistics
}

// GetMemberReportDeps holds dependencies for GetMemberReport.
type GetMemberReportDeps struct {
	MemberStore MemberStore
	Statistics  StatisticsSource
	Now         func() time.Time
}

// QueryGetMemberReport collects every member in list order plus statistics.
// POST: Members is never nil
func QueryGetMemberReport(ctx context.Context, deps GetMemberReportDeps) (MemberReport, error) {
	now := time.Now().UTC()
	if deps.Now != nil {
		now = deps.Now()
	}

	all := []domainMember.Member{}
	for offset := 0; ; offset += reportBatchSize {
		batch, err := deps.MemberStore.List(ctx, member.ListFilter{Limit: reportBatchSize, Offset: offset})
		if err != nil {
			return MemberReport{}, fmt.Errorf("member report: %w", err)
		}
		all = append(all, batch...)
		if len(batch) < reportBatchSize {
			break
		}
	}

	stats, err := deps.Statistics.ComputeStatistics(ctx)
	if err != nil {
		return MemberReport{}, err
	}
	return MemberReport{GeneratedAt: now, Members: all, Statistics: stats}, nil
}
