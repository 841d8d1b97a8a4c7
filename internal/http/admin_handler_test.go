package httpserver

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/agrirate/agrirate/internal/domain"
	"github.com/agrirate/agrirate/internal/service"
)

func seedRating(tb testing.TB, srv *testServer, owner domain.Actor, productID string, value int) domain.Rating {
	tb.Helper()
	res, err := srv.ratings.Submit(context.Background(), owner, service.SubmitInput{
		ProductID: productID,
		Value:     value,
		Images:    []domain.ImageRef{{URL: "https://assets.example.com/a.jpg", ExternalID: "a"}},
	})
	if err != nil {
		tb.Fatalf("seed rating: %v", err)
	}
	return res.Rating
}

func TestHandleAdminUpdateRating_AdminEditsForeignRating(t *testing.T) {
	srv := buildTestServer(t)
	p := srv.mustProduct(t, "HydroFresh")
	owner, _ := srv.mustUser(t, "owner@example.com", domain.RoleRater)
	_, raterToken := srv.mustUser(t, "rater@example.com", domain.RoleRater)
	_, adminToken := srv.mustUser(t, "admin@example.com", domain.RoleAdmin)
	rating := seedRating(t, srv, owner, p.ID, 5)

	body := `{"value":3,"comment":"edited"}`
	if rec := srv.do(http.MethodPut, "/admin/ratings/"+rating.ID, raterToken, body); rec.Code != http.StatusForbidden {
		t.Fatalf("rater status = %d, want 403", rec.Code)
	}

	rec := srv.do(http.MethodPut, "/admin/ratings/"+rating.ID, adminToken, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var resp ratingMutationResponse
	decodeBody(t, rec, &resp)
	if resp.Rating.Value != 3 || resp.Rating.Comment == nil || *resp.Rating.Comment != "edited" {
		t.Fatalf("unexpected rating: %+v", resp.Rating)
	}
	if resp.Rating.UserID != owner.ID {
		t.Fatalf("owner changed to %s", resp.Rating.UserID)
	}

	stored, err := srv.repo.Ratings.Get(context.Background(), rating.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Value != 3 {
		t.Fatalf("stored value = %d, want 3", stored.Value)
	}
}

func TestHandleAdminUpdateRating_Errors(t *testing.T) {
	srv := buildTestServer(t)
	admin, _ := srv.mustUser(t, "admin@example.com", domain.RoleAdmin)

	cases := []struct {
		name string
		id   string
		body string
		want int
	}{
		{"missing rating", "nope", `{"value":3}`, http.StatusNotFound},
		{"out of range", "nope", `{"value":0}`, http.StatusBadRequest},
		{"malformed", "nope", `{`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/admin/ratings/"+tc.id, bytes.NewBufferString(tc.body))
			req = attachActor(attachRouteParam(req, "ratingID", tc.id), admin)
			rec := httptest.NewRecorder()
			srv.handleAdminUpdateRating(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}

	req := attachRouteParam(httptest.NewRequest(http.MethodPut, "/admin/ratings/x", bytes.NewBufferString(`{"value":3}`)), "ratingID", "x")
	rec := httptest.NewRecorder()
	srv.handleAdminUpdateRating(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", rec.Code)
	}
}

func TestHandleAdminUpdateRating_RaterForbiddenBeforeBodyIsRead(t *testing.T) {
	srv := buildTestServer(t)
	rater, _ := srv.mustUser(t, "rater@example.com", domain.RoleRater)

	for _, body := range []string{`{`, `{"value":3,"ownerId":"x"}`} {
		req := httptest.NewRequest(http.MethodPut, "/admin/ratings/x", bytes.NewBufferString(body))
		req = attachActor(attachRouteParam(req, "ratingID", "x"), rater)
		rec := httptest.NewRecorder()
		srv.handleAdminUpdateRating(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("body %q: status = %d, want 403 (%s)", body, rec.Code, rec.Body.String())
		}
	}
}

func TestHandleAdminUpdateRating_ValueOnlyKeepsComment(t *testing.T) {
	srv := buildTestServer(t)
	p := srv.mustProduct(t, "AgroBoost")
	_, ownerToken := srv.mustUser(t, "owner@example.com", domain.RoleRater)
	_, adminToken := srv.mustUser(t, "admin@example.com", domain.RoleAdmin)

	rec := srv.do(http.MethodPost, "/ratings", ownerToken, submitBody(p.ID, 5, "keep this"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d (%s)", rec.Code, rec.Body.String())
	}
	var created ratingMutationResponse
	decodeBody(t, rec, &created)

	rec = srv.do(http.MethodPut, "/admin/ratings/"+created.Rating.ID, adminToken, `{"value":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d (%s)", rec.Code, rec.Body.String())
	}
	var resp ratingMutationResponse
	decodeBody(t, rec, &resp)
	if resp.Rating.Value != 2 || resp.Rating.Comment == nil || *resp.Rating.Comment != "keep this" {
		t.Fatalf("unexpected rating: %+v", resp.Rating)
	}
}

func TestHandleAdminGetAndDelete(t *testing.T) {
	srv := buildTestServer(t)
	p := srv.mustProduct(t, "BioPlantz")
	owner, _ := srv.mustUser(t, "owner@example.com", domain.RoleRater)
	_, userToken := srv.mustUser(t, "user@example.com", domain.RoleUser)
	_, adminToken := srv.mustUser(t, "admin@example.com", domain.RoleAdmin)
	rating := seedRating(t, srv, owner, p.ID, 4)

	if rec := srv.do(http.MethodGet, "/admin/ratings/"+rating.ID, "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous get = %d, want 401", rec.Code)
	}
	if rec := srv.do(http.MethodDelete, "/admin/ratings/"+rating.ID, userToken, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("user delete = %d, want 403", rec.Code)
	}

	rec := srv.do(http.MethodGet, "/admin/ratings/"+rating.ID, adminToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin get = %d, want 200", rec.Code)
	}
	var got adminRatingResponse
	decodeBody(t, rec, &got)
	if got.Rating.Product == nil || got.Rating.Product.Name != "BioPlantz" || len(got.Rating.Images) != 1 {
		t.Fatalf("unexpected detail: %+v", got.Rating)
	}

	if rec := srv.do(http.MethodDelete, "/admin/ratings/"+rating.ID, adminToken, ""); rec.Code != http.StatusOK {
		t.Fatalf("first delete = %d, want 200", rec.Code)
	}
	if rec := srv.do(http.MethodDelete, "/admin/ratings/"+rating.ID, adminToken, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete = %d, want 404", rec.Code)
	}
	images, err := srv.repo.Ratings.ImagesByIDs(context.Background(), []string{got.Rating.Images[0].ID})
	if err != nil {
		t.Fatalf("images lookup: %v", err)
	}
	if len(images) != 0 {
		t.Fatalf("images survived delete: %+v", images)
	}
}

func TestHandleAdminListRatings_Paginates(t *testing.T) {
	srv := buildTestServer(t)
	_, adminToken := srv.mustUser(t, "admin@example.com", domain.RoleAdmin)
	owner, _ := srv.mustUser(t, "owner@example.com", domain.RoleRater)
	for _, name := range []string{"a", "b", "c"} {
		p := srv.mustProduct(t, name)
		seedRating(t, srv, owner, p.ID, 3)
		time.Sleep(5 * time.Millisecond)
	}

	rec := srv.do(http.MethodGet, "/admin/ratings?limit=2", adminToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var first adminRatingListResponse
	decodeBody(t, rec, &first)
	if len(first.Ratings) != 2 || first.NextCursor == nil {
		t.Fatalf("first page = %d items, cursor %v", len(first.Ratings), first.NextCursor)
	}
	if first.Ratings[0].Product == nil || first.Ratings[0].Product.Name != "c" {
		t.Fatalf("newest first violated: %+v", first.Ratings[0].Product)
	}

	rec = srv.do(http.MethodGet, "/admin/ratings?limit=2&cursor="+url.QueryEscape(*first.NextCursor), adminToken, "")
	var second adminRatingListResponse
	decodeBody(t, rec, &second)
	if len(second.Ratings) != 1 || second.NextCursor != nil {
		t.Fatalf("second page = %d items, cursor %v", len(second.Ratings), second.NextCursor)
	}

	if rec := srv.do(http.MethodGet, "/admin/ratings?cursor=%25%25", adminToken, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad cursor status = %d, want 400", rec.Code)
	}
	if rec := srv.do(http.MethodGet, "/admin/ratings?limit=abc", adminToken, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit status = %d, want 400", rec.Code)
	}
}

func TestBuildAdminListInput(t *testing.T) {
	values, _ := url.ParseQuery("limit= 25 &cursor= abc ")
	in, err := buildAdminListInput(values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Limit != 25 || in.Cursor != "abc" {
		t.Fatalf("unexpected input: %+v", in)
	}

	for _, raw := range []string{"limit=-1", "limit=ten"} {
		values, _ := url.ParseQuery(raw)
		if _, err := buildAdminListInput(values); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
