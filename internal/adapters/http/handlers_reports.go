package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"gymtrack/internal/adapters/report"
	"gymtrack/internal/application/orchestrators"
	"gymtrack/internal/application/projections"
)

// handleStatistics serves GET /api/v1/statistics.
func (s *server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := projections.QueryGetStatistics(r.Context(), projections.GetStatisticsDeps{Statistics: s.deps.Policy})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", stats)
}

// handleExportMembers serves GET /api/v1/export/members?format=csv|html as
// a file download.
func (s *server) handleExportMembers(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, r, newBadRequest("invalid export format", err.Error()))
		return
	}

	rep, err := projections.QueryGetMemberReport(r.Context(), projections.GetMemberReportDeps{
		MemberStore: s.deps.Members,
		Statistics:  s.deps.Policy,
		Now:         s.deps.Now,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	// Render fully before writing so a failure can still produce a JSON error.
	var buf bytes.Buffer
	data := report.Data{GeneratedAt: rep.GeneratedAt, Members: rep.Members, Statistics: rep.Statistics}
	if err := report.Render(&buf, format, data); err != nil {
		internalError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", report.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.Filename(format, rep.GeneratedAt)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleEmailReport serves POST /api/v1/export/members/email. The optional
// body {"to": [...]} overrides the configured recipients.
func (s *server) handleEmailReport(w http.ResponseWriter, r *http.Request) {
	var req emailReportRequest
	if r.ContentLength != 0 && !isForm(r) {
		if err := strictDecode(w, r, &req); err != nil {
			respondError(w, r, err)
			return
		}
	} else if isForm(r) {
		if err := r.ParseForm(); err != nil {
			respondError(w, r, newBadRequest("invalid form body", err.Error()))
			return
		}
		req.To = splitRecipients(r.PostForm["to"])
	}

	res, err := orchestrators.ExecuteSendMemberReport(r.Context(), orchestrators.SendMemberReportInput{
		To: splitRecipients(req.To),
	}, orchestrators.SendMemberReportDeps{
		MemberStore: s.deps.Members,
		Statistics:  s.deps.Policy,
		Sender:      s.deps.Sender,
		From:        s.deps.ReportFrom,
		DefaultTo:   s.deps.ReportTo,
		Now:         s.deps.Now,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeOK(w, http.StatusAccepted, "Report sent", res)
}

// splitRecipients flattens comma-separated entries and drops blanks.
func splitRecipients(in []string) []string {
	var out []string
	for _, entry := range in {
		for _, addr := range strings.Split(entry, ",") {
			if a := strings.TrimSpace(addr); a != "" {
				out = append(out, a)
			}
		}
	}
	return out
}
