package web

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gymtrack/internal/application/listutil"
	domainMember "gymtrack/internal/domain/member"
)

// memberRequest is the create/update body. Absent fields stay nil.
type memberRequest struct {
	Name            *string `json:"name"`
	PhoneNumber     *string `json:"phoneNumber"`
	JoinDate        *string `json:"joinDate"`
	TotalMembership *int64  `json:"totalMembership"`
	PaidAmount      *int64  `json:"paidAmount"`
}

type paymentRequest struct {
	Amount *int64 `json:"amount"`
	Method string `json:"method"`
	Notes  string `json:"notes"`
}

type emailReportRequest struct {
	To []string `json:"to"`
}

// isForm reports whether the body is an HTML form submission.
func isForm(r *http.Request) bool {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return ct == "application/x-www-form-urlencoded"
}

// decodeMemberRequest reads a JSON or form-encoded member body.
func decodeMemberRequest(w http.ResponseWriter, r *http.Request) (memberRequest, error) {
	var req memberRequest
	if !isForm(r) {
		err := strictDecode(w, r, &req)
		return req, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return req, newBadRequest("invalid form body", err.Error())
	}
	var details []string
	req.Name = formString(r, "name")
	req.PhoneNumber = formString(r, "phoneNumber")
	req.JoinDate = formString(r, "joinDate")
	req.TotalMembership = formInt(r, "totalMembership", &details)
	req.PaidAmount = formInt(r, "paidAmount", &details)
	if len(details) > 0 {
		return req, newBadRequest("invalid form body", details...)
	}
	return req, nil
}

func decodePaymentRequest(w http.ResponseWriter, r *http.Request) (paymentRequest, error) {
	var req paymentRequest
	if !isForm(r) {
		if err := strictDecode(w, r, &req); err != nil {
			return req, err
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return req, newBadRequest("invalid form body", err.Error())
		}
		var details []string
		req.Amount = formInt(r, "amount", &details)
		req.Method = r.PostForm.Get("method")
		req.Notes = r.PostForm.Get("notes")
		if len(details) > 0 {
			return req, newBadRequest("invalid form body", details...)
		}
	}
	if req.Amount == nil {
		return req, domainMember.NewValidationError("payment amount is required")
	}
	return req, nil
}

func formString(r *http.Request, key string) *string {
	if _, ok := r.PostForm[key]; !ok {
		return nil
	}
	v := r.PostForm.Get(key)
	return &v
}

func formInt(r *http.Request, key string, details *[]string) *int64 {
	raw := strings.TrimSpace(r.PostForm.Get(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		*details = append(*details, fmt.Sprintf("%s must be a whole number", key))
		return nil
	}
	return &v
}

// joinDate parses the optional joinDate field.
func (m memberRequest) joinDate() (*time.Time, error) {
	if m.JoinDate == nil {
		return nil, nil
	}
	t, err := listutil.ParseDateBound(*m.JoinDate, false)
	if err != nil {
		return nil, domainMember.NewValidationError("join date must be a valid date (YYYY-MM-DD or RFC3339)")
	}
	if t != nil {
		utc := t.UTC()
		t = &utc
	}
	return t, nil
}

// patch converts an update body into a member.Patch. An explicit empty
// joinDate is rejected rather than ignored.
func (m memberRequest) patch() (domainMember.Patch, error) {
	p := domainMember.Patch{
		Name:            m.Name,
		PhoneNumber:     m.PhoneNumber,
		TotalMembership: m.TotalMembership,
		PaidAmount:      m.PaidAmount,
	}
	jd, err := m.joinDate()
	if err != nil {
		return p, err
	}
	if m.JoinDate != nil && jd == nil {
		return p, domainMember.NewValidationError("join date must be a valid date (YYYY-MM-DD or RFC3339)")
	}
	p.JoinDate = jd
	return p, nil
}

// memberID extracts and checks the {id} URL parameter.
func memberID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		return "", newBadRequest("invalid member id", fmt.Sprintf("%q is not a valid id", id))
	}
	return id, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
