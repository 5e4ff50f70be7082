package web

import (
	"net/http"
	"unicode/utf8"

	"gymtrack/internal/application/listutil"
	"gymtrack/internal/application/orchestrators"
	"gymtrack/internal/application/projections"
	domainMember "gymtrack/internal/domain/member"
	domainPayment "gymtrack/internal/domain/payment"
)

// maxSearchLength bounds the free-text search term.
const maxSearchLength = 50

func records(members []domainMember.Member) []domainMember.Record {
	out := make([]domainMember.Record, len(members))
	for i, m := range members {
		out[i] = m.ToRecord()
	}
	return out
}

// handleListMembers serves GET /api/v1/members.
// PRE: page, limit, search, status, joinDateFrom, joinDateTo are optional query params
// POST: 200 with one page of members and pagination metadata
func (s *server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var details []string

	page, err := listutil.ParsePageParams(q)
	if err != nil {
		details = append(details, splitJoined(err)...)
	}
	from, err := listutil.ParseDateBound(q.Get("joinDateFrom"), false)
	if err != nil {
		details = append(details, "joinDateFrom: "+err.Error())
	}
	to, err := listutil.ParseDateBound(q.Get("joinDateTo"), true)
	if err != nil {
		details = append(details, "joinDateTo: "+err.Error())
	}
	search := q.Get("search")
	if utf8.RuneCountInString(search) > maxSearchLength {
		details = append(details, "search must not exceed 50 characters")
	}
	if len(details) > 0 {
		writeError(w, http.StatusBadRequest, "query validation failed", details)
		return
	}

	res, err := projections.QueryGetMemberList(r.Context(), projections.GetMemberListQuery{
		Search:       search,
		Status:       q.Get("status"),
		JoinDateFrom: from,
		JoinDateTo:   to,
		Page:         page.Page,
		Limit:        page.Limit,
	}, projections.GetMemberListDeps{MemberStore: s.deps.Members})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: records(res.Members), Pagination: &res.Pagination})
}

// handleCreateMember serves POST /api/v1/members (JSON or form).
func (s *server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	req, err := decodeMemberRequest(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	joinDate, err := req.joinDate()
	if err != nil {
		respondError(w, r, err)
		return
	}

	m, err := orchestrators.ExecuteCreateMember(r.Context(), orchestrators.CreateMemberInput{
		Name:            derefString(req.Name),
		PhoneNumber:     derefString(req.PhoneNumber),
		JoinDate:        joinDate,
		TotalMembership: req.TotalMembership,
		PaidAmount:      req.PaidAmount,
	}, orchestrators.CreateMemberDeps{
		MemberStore:  s.deps.Members,
		PaymentStore: s.deps.Payments,
		Policy:       s.deps.Policy,
		Events:       s.deps.Metrics,
		Now:          s.deps.Now,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "Member created successfully", m.ToRecord())
}

// handleGetMember serves GET /api/v1/members/{id}.
func (s *server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	id, err := memberID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	m, err := projections.QueryGetMember(r.Context(), projections.GetMemberQuery{MemberID: id},
		projections.GetMemberDeps{MemberStore: s.deps.Members})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", m.ToRecord())
}

// handleUpdateMember serves PUT /api/v1/members/{id} with partial fields.
func (s *server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	id, err := memberID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	req, err := decodeMemberRequest(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		respondError(w, r, err)
		return
	}

	m, err := orchestrators.ExecuteUpdateMember(r.Context(), orchestrators.UpdateMemberInput{
		MemberID: id,
		Patch:    patch,
	}, orchestrators.UpdateMemberDeps{
		MemberStore: s.deps.Members,
		Policy:      s.deps.Policy,
		Now:         s.deps.Now,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Member updated successfully", m.ToRecord())
}

// handleDeleteMember serves DELETE /api/v1/members/{id}.
func (s *server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	id, err := memberID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	err = orchestrators.ExecuteDeleteMember(r.Context(), orchestrators.DeleteMemberInput{MemberID: id},
		orchestrators.DeleteMemberDeps{
			MemberStore:  s.deps.Members,
			PaymentStore: s.deps.Payments,
			Events:       s.deps.Metrics,
		})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Member deleted successfully", nil)
}

// handleAddPayment serves POST /api/v1/members/{id}/payments.
func (s *server) handleAddPayment(w http.ResponseWriter, r *http.Request) {
	id, err := memberID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	req, err := decodePaymentRequest(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	m, err := orchestrators.ExecuteAddPayment(r.Context(), orchestrators.AddPaymentInput{
		MemberID: id,
		Amount:   *req.Amount,
		Method:   req.Method,
		Notes:    req.Notes,
	}, orchestrators.AddPaymentDeps{
		MemberStore:  s.deps.Members,
		PaymentStore: s.deps.Payments,
		Policy:       s.deps.Policy,
		Events:       s.deps.Metrics,
		Now:          s.deps.Now,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Payment added successfully", m.ToRecord())
}

// handlePaymentHistory serves GET /api/v1/members/{id}/payments.
func (s *server) handlePaymentHistory(w http.ResponseWriter, r *http.Request) {
	id, err := memberID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	payments, err := projections.QueryGetPaymentHistory(r.Context(), projections.GetPaymentHistoryQuery{MemberID: id},
		projections.GetPaymentHistoryDeps{MemberStore: s.deps.Members, PaymentStore: s.deps.Payments})
	if err != nil {
		respondError(w, r, err)
		return
	}
	if payments == nil {
		payments = []domainPayment.Payment{}
	}
	writeOK(w, http.StatusOK, "", payments)
}
