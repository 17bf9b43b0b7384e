package handlers

import (
	"net/http"

	"github.com/unera/backend/internal/feed"
	"github.com/unera/backend/internal/models"
)

// ProductHandler serves the marketplace.
type ProductHandler struct {
	Roster      Roster
	Marketplace MarketplaceService
}

type productStatusRequest struct {
	Status models.ProductStatus `json:"status"`
}

type rateRequest struct {
	Rating int `json:"rating"`
}

type productCommentRequest struct {
	Text string `json:"text"`
}

// List handles GET /api/v1/products?country=&category=&q=.
func (h ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := feed.Filter{
		Country:  q.Get("country"),
		Category: q.Get("category"),
		Query:    q.Get("q"),
	}
	respondJSON(r.Context(), w, http.StatusOK, list(h.Marketplace.Marketplace(filter)))
}

// Get handles GET /api/v1/products/{productID}.
func (h ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "productID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	product, err := h.Marketplace.Product(id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, product)
}

// Create handles POST /api/v1/products.
func (h ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	var req models.CreateProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(ctx, w, "invalid request body")
		return
	}
	product, err := h.Marketplace.CreateProduct(ctx, a, req)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, product)
}

// SetStatus handles PUT /api/v1/products/{productID}/status.
func (h ProductHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	id, err := pathID(r, "productID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	var req productStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(ctx, w, "invalid request body")
		return
	}
	product, err := h.Marketplace.SetProductStatus(ctx, a, id, req.Status)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, product)
}

// Rate handles POST /api/v1/products/{productID}/ratings.
func (h ProductHandler) Rate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	id, err := pathID(r, "productID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	var req rateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(ctx, w, "invalid request body")
		return
	}
	product, err := h.Marketplace.RateProduct(ctx, a, id, req.Rating)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, product)
}

// Comment handles POST /api/v1/products/{productID}/comments.
func (h ProductHandler) Comment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := actor(r, h.Roster)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	id, err := pathID(r, "productID")
	if err != nil {
		badRequest(ctx, w, err.Error())
		return
	}
	var req productCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(ctx, w, "invalid request body")
		return
	}
	comment, err := h.Marketplace.CommentOnProduct(ctx, a, id, req.Text)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, comment)
}
