package httpserver

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agrirate/agrirate/internal/domain"
)

func TestHandleListRatings_RequiresProductID(t *testing.T) {
	srv := buildTestServer(t)
	rec := httptest.NewRecorder()
	srv.handleListRatings(rec, httptest.NewRequest(http.MethodGet, "/ratings", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSubmitRating_RoleGate(t *testing.T) {
	srv := buildTestServer(t)
	p := srv.mustProduct(t, "BioPlantz")
	_, userToken := srv.mustUser(t, "user@example.com", domain.RoleUser)
	_, raterToken := srv.mustUser(t, "rater@example.com", domain.RoleRater)

	if rec := srv.do(http.MethodPost, "/ratings", "", submitBody(p.ID, 4, "ok")); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", rec.Code)
	}
	if rec := srv.do(http.MethodPost, "/ratings", "garbage-token", submitBody(p.ID, 4, "ok")); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d, want 401", rec.Code)
	}
	if rec := srv.do(http.MethodPost, "/ratings", userToken, submitBody(p.ID, 4, "ok")); rec.Code != http.StatusForbidden {
		t.Fatalf("plain user status = %d, want 403", rec.Code)
	}

	rec := srv.do(http.MethodPost, "/ratings", raterToken, submitBody(p.ID, 4, "first"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("rater create status = %d, want 201 (%s)", rec.Code, rec.Body.String())
	}
	var created ratingMutationResponse
	decodeBody(t, rec, &created)

	rec = srv.do(http.MethodPost, "/ratings", raterToken, submitBody(p.ID, 2, "second"))
	if rec.Code != http.StatusOK {
		t.Fatalf("rater update status = %d, want 200", rec.Code)
	}
	var updated ratingMutationResponse
	decodeBody(t, rec, &updated)
	if updated.Rating.ID != created.Rating.ID || updated.Rating.Value != 2 {
		t.Fatalf("update did not reuse row: %+v vs %+v", updated.Rating, created.Rating)
	}
	if updated.Message != "Rating updated" {
		t.Fatalf("message = %q", updated.Message)
	}

	rec = srv.do(http.MethodGet, "/ratings?productId="+p.ID, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	var list ratingListResponse
	decodeBody(t, rec, &list)
	if len(list.Ratings) != 1 || list.Ratings[0].User == nil || list.Ratings[0].User.Email != "rater@example.com" {
		t.Fatalf("unexpected list: %+v", list.Ratings)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("list leaked password field: %s", rec.Body.String())
	}
}

func TestHandleSubmitRating_Validation(t *testing.T) {
	srv := buildTestServer(t)
	p := srv.mustProduct(t, "GrowMax")
	rater, _ := srv.mustUser(t, "rater@example.com", domain.RoleRater)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"value zero", submitBody(p.ID, 0, ""), http.StatusBadRequest},
		{"value six", submitBody(p.ID, 6, ""), http.StatusBadRequest},
		{"fractional value", `{"productId":"` + p.ID + `","value":4.5}`, http.StatusBadRequest},
		{"missing product id", `{"value":3}`, http.StatusBadRequest},
		{"unknown field", `{"productId":"` + p.ID + `","value":3,"role":"admin"}`, http.StatusBadRequest},
		{"malformed", `{"productId":`, http.StatusBadRequest},
		{"empty", ``, http.StatusBadRequest},
		{"bad image", `{"productId":"` + p.ID + `","value":3,"images":[{"url":"nope","externalId":"x"}]}`, http.StatusBadRequest},
		{"unknown product", submitBody("1", 3, ""), http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/ratings", bytes.NewBufferString(tc.body))
			req = attachActor(req, rater)
			rec := httptest.NewRecorder()
			srv.handleSubmitRating(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.want, rec.Body.String())
			}
		})
	}

	rec := srv.do(http.MethodGet, "/ratings?productId="+p.ID, "", "")
	var list ratingListResponse
	decodeBody(t, rec, &list)
	if len(list.Ratings) != 0 {
		t.Fatalf("rejected submissions created rows: %+v", list.Ratings)
	}
}

func TestHandleSubmitRating_PlainUserForbiddenBeforeBodyIsRead(t *testing.T) {
	srv := buildTestServer(t)
	user, _ := srv.mustUser(t, "user@example.com", domain.RoleUser)

	for _, body := range []string{`{not json`, `{"productId":"p","value":4,"role":"admin"}`, ``} {
		req := attachActor(httptest.NewRequest(http.MethodPost, "/ratings", bytes.NewBufferString(body)), user)
		rec := httptest.NewRecorder()
		srv.handleSubmitRating(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("body %q: status = %d, want 403 (%s)", body, rec.Code, rec.Body.String())
		}
	}
}

func TestHandleSubmitRating_ValidationDetails(t *testing.T) {
	srv := buildTestServer(t)
	p := srv.mustProduct(t, "AgroBoost")
	rater, _ := srv.mustUser(t, "rater@example.com", domain.RoleRater)

	req := httptest.NewRequest(http.MethodPost, "/ratings", bytes.NewBufferString(submitBody(p.ID, 9, "")))
	req = attachActor(req, rater)
	rec := httptest.NewRecorder()
	srv.handleSubmitRating(rec, req)

	var resp struct {
		Code    string `json:"code"`
		Details []struct {
			Field string `json:"field"`
		} `json:"details"`
	}
	decodeBody(t, rec, &resp)
	if resp.Code != "VALIDATION_ERROR" || len(resp.Details) != 1 || resp.Details[0].Field != "value" {
		t.Fatalf("unexpected validation body: %s", rec.Body.String())
	}
}

func TestHandleSubmitRating_BodyTooLarge(t *testing.T) {
	srv := buildTestServer(t)
	rater, _ := srv.mustUser(t, "rater@example.com", domain.RoleRater)

	body := `{"productId":"x","value":3,"comment":"` + strings.Repeat("a", maxRequestBody) + `"}`
	req := attachActor(httptest.NewRequest(http.MethodPost, "/ratings", strings.NewReader(body)), rater)
	rec := httptest.NewRecorder()
	srv.handleSubmitRating(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
}
