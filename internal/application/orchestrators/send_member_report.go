package orchestrators

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "gymtrack/internal/adapters/email"
	"gymtrack/internal/adapters/report"
	"gymtrack/internal/application/projections"
)

// ErrNoReportRecipient is returned when no address is configured or given.
var ErrNoReportRecipient = errors.New("no report recipient configured")

// SendMemberReportInput carries input for the orchestrator.
type SendMemberReportInput struct {
	To []string // overrides the configured recipients when non-empty
}

// SendMemberReportDeps holds dependencies for SendMemberReport.
type SendMemberReportDeps struct {
	MemberStore projections.MemberStore
	Statistics  projections.StatisticsSource
	Sender      emailAdapter.Sender
	From        string
	DefaultTo   []string
	Now         func() time.Time
}

// SendMemberReportResult describes the delivered message.
type SendMemberReportResult struct {
	MessageID   string    `json:"messageId"`
	Recipients  []string  `json:"recipients"`
	MemberCount int       `json:"memberCount"`
	SentAt      time.Time `json:"sentAt"`
}

// ExecuteSendMemberReport emails the member report: the HTML rendering as
// the body and the CSV rendering as an attachment.
// PRE: at least one recipient in input or deps
// POST: one message handed to the Sender
func ExecuteSendMemberReport(ctx context.Context, input SendMemberReportInput, deps SendMemberReportDeps) (SendMemberReportResult, error) {
	to := input.To
	if len(to) == 0 {
		to = deps.DefaultTo
	}
	if len(to) == 0 {
		return SendMemberReportResult{}, ErrNoReportRecipient
	}

	rep, err := projections.QueryGetMemberReport(ctx, projections.GetMemberReportDeps{
		MemberStore: deps.MemberStore,
		Statistics:  deps.Statistics,
		Now:         deps.Now,
	})
	if err != nil {
		return SendMemberReportResult{}, err
	}
	data := report.Data{GeneratedAt: rep.GeneratedAt, Members: rep.Members, Statistics: rep.Statistics}

	var body, attachment bytes.Buffer
	if err := report.WriteHTML(&body, data); err != nil {
		return SendMemberReportResult{}, err
	}
	if err := report.WriteCSV(&attachment, data); err != nil {
		return SendMemberReportResult{}, err
	}

	res, err := deps.Sender.Send(ctx, emailAdapter.SendRequest{
		To:      to,
		From:    deps.From,
		Subject: fmt.Sprintf("Gym members report %s", rep.GeneratedAt.Format("2006-01-02")),
		HTML:    body.String(),
		Attachments: []emailAdapter.Attachment{{
			Filename: report.Filename(report.FormatCSV, rep.GeneratedAt),
			Content:  attachment.Bytes(),
		}},
	})
	if err != nil {
		return SendMemberReportResult{}, fmt.Errorf("send member report: %w", err)
	}

	slog.Info("report_event", "event", "member_report_sent", "message_id", res.MessageID,
		"recipients", len(to), "members", len(rep.Members))
	return SendMemberReportResult{
		MessageID:   res.MessageID,
		Recipients:  to,
		MemberCount: len(rep.Members),
		SentAt:      res.SentAt,
	}, nil
}
