package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/fournil/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// ProductStore defines the database methods needed by product handlers.
type ProductStore interface {
	CreateProduct(ctx context.Context, arg database.CreateProductParams) (database.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
	ListProducts(ctx context.Context) ([]database.Product, error)
	ListAvailableProducts(ctx context.Context) ([]database.Product, error)
	UpdateProduct(ctx context.Context, arg database.UpdateProductParams) (database.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// ProductHandler handles catalog endpoints.
type ProductHandler struct {
	store ProductStore
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(store ProductStore) *ProductHandler {
	return &ProductHandler{store: store}
}

// RegisterPublicRoutes exposes the customer-facing catalog (available only).
func (h *ProductHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/products", h.ListAvailable)
	r.Get("/products/{id}", h.Get)
}

// RegisterStaffRoutes exposes the unfiltered catalog and mutations.
func (h *ProductHandler) RegisterStaffRoutes(r chi.Router) {
	r.Get("/staff/products", h.List)
	r.Post("/staff/products", h.Create)
	r.Patch("/staff/products/{id}", h.Update)
	r.Delete("/staff/products/{id}", h.Delete)
}

// --- Request / Response types ---

type createProductRequest struct {
	Name        string  `json:"name"`
	Price       string  `json:"price"`
	PromoPrice  *string `json:"promo_price"`
	ProductType string  `json:"product_type"`
	Available   *bool   `json:"available"`
	ImageURL    string  `json:"image_url"`
}

// updateProductRequest uses pointers so staff can patch a single field.
type updateProductRequest struct {
	Name       *string `json:"name"`
	Price      *string `json:"price"`
	PromoPrice *string `json:"promo_price"`
	Available  *bool   `json:"available"`
	ImageURL   *string `json:"image_url"`
}

type productResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	PromoPrice  *string   `json:"promo_price"`
	// DisplayPrice is the price the SPA should show: promo when set and
	// positive, list price otherwise.
	DisplayPrice string    `json:"display_price"`
	ProductType  string    `json:"product_type"`
	Available    bool      `json:"available"`
	ImageURL     *string   `json:"image_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// --- Handlers ---

// ListAvailable handles GET /products.
func (h *ProductHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListAvailableProducts(r.Context())
	if err != nil {
		log.Printf("ERROR: list available products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"products": toProductResponses(products)})
}

// List handles GET /staff/products (unfiltered).
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		log.Printf("ERROR: list products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"products": toProductResponses(products)})
}

// Get handles GET /products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	product, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: get product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// Create handles POST /staff/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" || req.Price == "" || req.ProductType == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, price and product_type are required"})
		return
	}
	if !isValidProductType(database.ProductType(req.ProductType)) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product_type"})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return
	}

	promo := pgtype.Numeric{}
	if req.PromoPrice != nil {
		p, err := decimal.NewFromString(*req.PromoPrice)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid promo_price"})
			return
		}
		promo = decimalToNumeric(p)
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	imageURL := pgtype.Text{}
	if req.ImageURL != "" {
		imageURL = pgtype.Text{String: req.ImageURL, Valid: true}
	}

	product, err := h.store.CreateProduct(r.Context(), database.CreateProductParams{
		Name:        req.Name,
		Price:       decimalToNumeric(price),
		PromoPrice:  promo,
		ProductType: database.ProductType(req.ProductType),
		Available:   available,
		ImageUrl:    imageURL,
	})
	if err != nil {
		log.Printf("ERROR: create product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

// Update handles PATCH /staff/products/{id}: price, promo price,
// availability, name, image. Missing fields keep their current value;
// promo_price set to an explicit null clears the promotion.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	// Raw decode first so "promo_price": null can be told apart from the
	// field being absent.
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	body, _ := json.Marshal(raw)
	var req updateProductRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	current, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: get product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	params := database.UpdateProductParams{
		ID:         current.ID,
		Name:       current.Name,
		Price:      current.Price,
		PromoPrice: current.PromoPrice,
		Available:  current.Available,
		ImageUrl:   current.ImageUrl,
	}

	if req.Name != nil {
		if *req.Name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name cannot be empty"})
			return
		}
		params.Name = *req.Name
	}
	if req.Price != nil {
		p, err := decimal.NewFromString(*req.Price)
		if err != nil || p.IsNegative() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
			return
		}
		params.Price = decimalToNumeric(p)
	}
	if _, present := raw["promo_price"]; present {
		if req.PromoPrice == nil {
			params.PromoPrice = pgtype.Numeric{} // clear promotion
		} else {
			p, err := decimal.NewFromString(*req.PromoPrice)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid promo_price"})
				return
			}
			params.PromoPrice = decimalToNumeric(p)
		}
	}
	if req.Available != nil {
		params.Available = *req.Available
	}
	if req.ImageURL != nil {
		if *req.ImageURL == "" {
			params.ImageUrl = pgtype.Text{}
		} else {
			params.ImageUrl = pgtype.Text{String: *req.ImageURL, Valid: true}
		}
	}

	updated, err := h.store.UpdateProduct(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: update product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(updated))
}

// Delete handles DELETE /staff/products/{id}. Existing order lines keep
// their snapshots; the FK goes NULL.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		log.Printf("ERROR: delete product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func toProductResponses(products []database.Product) []productResponse {
	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}
	return resp
}

func toProductResponse(p database.Product) productResponse {
	resp := productResponse{
		ID:           p.ID,
		Name:         p.Name,
		Price:        numericToString(p.Price),
		DisplayPrice: numericToString(p.Price),
		ProductType:  string(p.ProductType),
		Available:    p.Available,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.PromoPrice.Valid {
		s := numericToString(p.PromoPrice)
		resp.PromoPrice = &s
		if d, err := decimal.NewFromString(s); err == nil && d.IsPositive() {
			resp.DisplayPrice = s
		}
	}
	if p.ImageUrl.Valid {
		resp.ImageURL = &p.ImageUrl.String
	}
	return resp
}

func isValidProductType(t database.ProductType) bool {
	switch t {
	case database.ProductTypeBREAD,
		database.ProductTypeSANDWICH,
		database.ProductTypePASTRY,
		database.ProductTypePASTRYSWEET,
		database.ProductTypeDRINK:
		return true
	}
	return false
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
