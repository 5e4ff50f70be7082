package projections

import (
	"context"

	domainMember "gymtrack/internal/domain/member"
)

// GetStatisticsDeps holds dependencies for GetStatistics.
type GetStatisticsDeps struct {
	Statistics StatisticsSource
}

// QueryGetStatistics returns the aggregate over every member, ignoring any
// list pagination.
func QueryGetStatistics(ctx context.Context, deps GetStatisticsDeps) (domainMember.Statistics, error) {
	return deps.Statistics.ComputeStatistics(ctx)
}
