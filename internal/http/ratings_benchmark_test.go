package httpserver

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agrirate/agrirate/internal/domain"
)

func BenchmarkHandleSubmitRating(b *testing.B) {
	srv := buildTestServer(b)
	p := srv.mustProduct(b, "Benchmark Product")
	rater, _ := srv.mustUser(b, "bench@example.com", domain.RoleRater)
	payload := []byte(submitBody(p.ID, 4, "bench"))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, "/ratings", bytes.NewReader(payload))
		req = attachActor(req, rater)
		rec := httptest.NewRecorder()

		srv.handleSubmitRating(rec, req)
		if rec.Code != http.StatusCreated && rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}
