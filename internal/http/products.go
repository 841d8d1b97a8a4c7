package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type productListResponse struct {
	Products []productResponse `json:"products"`
}

type productDetailResponse struct {
	Product productResponse `json:"product"`
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.List(r.Context())
	if err != nil {
		s.respondServiceError(w, r, "list products", err)
		return
	}
	items := make([]productResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(p))
	}
	s.respondJSON(w, http.StatusOK, productListResponse{Products: items})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := s.catalog.Get(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		s.respondServiceError(w, r, "get product", err)
		return
	}
	s.respondJSON(w, http.StatusOK, productDetailResponse{Product: toProductResponse(product)})
}
