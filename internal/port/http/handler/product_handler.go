package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/port/http/middleware"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/repository"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/service"
)

const (
	maxImageCount    = 5
	maxImageSize     = 5 << 20
	maxMultipartSize = 32 << 20
)

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"omitempty,max=1000"`
}

type setStockRequest struct {
	Stock int `json:"stock" validate:"gte=0"`
}

type deleteImageRequest struct {
	PublicID string `json:"publicId" validate:"required"`
}

type ProductHandler struct {
	catalog *service.CatalogService
	log     logger.Logger
}

func NewProductHandler(catalog *service.CatalogService, log logger.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, log: log}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := repository.ListProductsParams{
		Search:       q.Get("search"),
		MinPrice:     queryFloat(q.Get("minPrice")),
		MaxPrice:     queryFloat(q.Get("maxPrice")),
		FeaturedOnly: q.Get("featured") == "true",
		ActiveOnly:   true,
		SortBy:       q.Get("sortBy"),
		SortOrder:    q.Get("sortOrder"),
		Page:         queryInt(q.Get("page"), 1),
		PageSize:     queryInt(q.Get("limit"), 10),
	}
	if category := q.Get("category"); category != "" {
		params.CategoryIDs = strings.Split(category, ",")
	}
	// Admins may list inactive products too.
	if q.Get("includeInactive") == "true" && middleware.IsAdmin(r.Context()) {
		params.ActiveOnly = false
	}

	result, err := h.catalog.ListProducts(r.Context(), params)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", Payload{
		"products":   result.Products,
		"pagination": result.Pagination,
	})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", Payload{"product": product})
}

func (h *ProductHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProductBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", Payload{"product": product})
}

func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.FeaturedProducts(r.Context(), queryInt(r.URL.Query().Get("limit"), 0))
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", Payload{"products": products})
}

func (h *ProductHandler) Related(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.RelatedProducts(r.Context(), chi.URLParam(r, "id"), queryInt(r.URL.Query().Get("limit"), 0))
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", Payload{"products": products})
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, files, ok := h.parseProductForm(w, r)
	if !ok {
		return
	}
	if input.Name == "" || input.Price <= 0 || input.CategoryID == "" {
		respondValidationError(w, map[string]string{
			"name":       "name, price and category are required",
			"price":      "must be greater than 0",
			"categoryId": "this field is required",
		})
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), *input, files)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "product created", Payload{"product": product})
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	var input service.UpdateProductInput
	var files []service.ImageFile

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		created, parsedFiles, ok := h.parseProductForm(w, r)
		if !ok {
			return
		}
		input = updateFromForm(r, created)
		files = parsedFiles
	} else if !decodeJSON(w, r, &input) {
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), productID, input, files)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "product updated", Payload{"product": product})
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "product deleted", nil)
}

func (h *ProductHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	var req deleteImageRequest
	if !decodeJSON(w, r, &req) || !checkStruct(w, &req) {
		return
	}

	product, err := h.catalog.DeleteProductImage(r.Context(), chi.URLParam(r, "id"), req.PublicID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "image deleted", Payload{"product": product})
}

func (h *ProductHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	var req setStockRequest
	if !decodeJSON(w, r, &req) || !checkStruct(w, &req) {
		return
	}

	product, err := h.catalog.SetStock(r.Context(), chi.URLParam(r, "id"), req.Stock)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "stock updated", Payload{"product": product})
}

// AddReview accepts either a JSON body or a multipart form; the form variant
// may carry up to five review photos under "images".
func (h *ProductHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	var files []service.ImageFile

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMultipartSize); err != nil {
			respondError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		req.Rating = queryInt(r.FormValue("rating"), 0)
		req.Comment = r.FormValue("comment")
		parsed, ok := readImageFiles(w, r)
		if !ok {
			return
		}
		files = parsed
		if !checkStruct(w, &req) {
			return
		}
	} else if !decodeJSON(w, r, &req) || !checkStruct(w, &req) {
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	product, err := h.catalog.AddReview(r.Context(), chi.URLParam(r, "id"), userID, req.Rating, req.Comment, files)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "review added", Payload{"product": product})
}

func (h *ProductHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !decodeJSON(w, r, &req) || !checkStruct(w, &req) {
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	product, err := h.catalog.UpdateReview(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "reviewID"), userID, req.Rating, req.Comment)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "review updated", Payload{"product": product})
}

func (h *ProductHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	product, err := h.catalog.DeleteReview(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "reviewID"), userID, middleware.IsAdmin(r.Context()))
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "review deleted", Payload{"product": product})
}

// parseProductForm reads a multipart product form: scalar fields plus up to
// five image files of at most 5 MB each.
func (h *ProductHandler) parseProductForm(w http.ResponseWriter, r *http.Request) (*service.CreateProductInput, []service.ImageFile, bool) {
	if err := r.ParseMultipartForm(maxMultipartSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return nil, nil, false
	}

	input := service.CreateProductInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       queryFloat(r.FormValue("price")),
		MRP:         queryFloat(r.FormValue("mrp")),
		Discount:    queryFloat(r.FormValue("discount")),
		CategoryID:  r.FormValue("categoryId"),
		Stock:       queryInt(r.FormValue("stock"), 0),
		Unit:        r.FormValue("unit"),
		IsFeatured:  r.FormValue("isFeatured") == "true",
		SKU:         r.FormValue("sku"),
	}
	if specs := r.FormValue("specifications"); specs != "" {
		if err := json.Unmarshal([]byte(specs), &input.Specifications); err != nil {
			respondError(w, http.StatusBadRequest, "specifications must be a JSON object")
			return nil, nil, false
		}
	}
	if features := r.FormValue("features"); features != "" {
		input.Features = splitTrim(features)
	}
	if tags := r.FormValue("tags"); tags != "" {
		input.Tags = splitTrim(tags)
	}

	files, ok := readImageFiles(w, r)
	if !ok {
		return nil, nil, false
	}
	return &input, files, true
}

// readImageFiles collects the "images" parts of an already-parsed multipart
// form: up to five files of at most 5 MB each.
func readImageFiles(w http.ResponseWriter, r *http.Request) ([]service.ImageFile, bool) {
	fileHeaders := r.MultipartForm.File["images"]
	if len(fileHeaders) > maxImageCount {
		respondError(w, http.StatusBadRequest, "at most 5 images are allowed")
		return nil, false
	}

	files := make([]service.ImageFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		if fh.Size > maxImageSize {
			respondError(w, http.StatusBadRequest, "each image must be at most 5 MB")
			return nil, false
		}
		f, err := fh.Open()
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read uploaded file")
			return nil, false
		}
		data, err := io.ReadAll(io.LimitReader(f, maxImageSize))
		f.Close()
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read uploaded file")
			return nil, false
		}
		files = append(files, service.ImageFile{Name: fh.Filename, Data: data})
	}
	return files, true
}

// updateFromForm converts the create-shaped form into a partial update: only
// fields present in the form are set.
func updateFromForm(r *http.Request, parsed *service.CreateProductInput) service.UpdateProductInput {
	input := service.UpdateProductInput{
		Specifications: parsed.Specifications,
		Features:       parsed.Features,
		Tags:           parsed.Tags,
	}
	if has(r, "name") {
		input.Name = &parsed.Name
	}
	if has(r, "description") {
		input.Description = &parsed.Description
	}
	if has(r, "price") {
		input.Price = &parsed.Price
	}
	if has(r, "mrp") {
		input.MRP = &parsed.MRP
	}
	if has(r, "discount") {
		input.Discount = &parsed.Discount
	}
	if has(r, "categoryId") {
		input.CategoryID = &parsed.CategoryID
	}
	if has(r, "stock") {
		input.Stock = &parsed.Stock
	}
	if has(r, "unit") {
		input.Unit = &parsed.Unit
	}
	if has(r, "isFeatured") {
		input.IsFeatured = &parsed.IsFeatured
	}
	if has(r, "isActive") {
		active := r.FormValue("isActive") == "true"
		input.IsActive = &active
	}
	if has(r, "sku") {
		input.SKU = &parsed.SKU
	}
	return input
}

func has(r *http.Request, field string) bool {
	_, ok := r.MultipartForm.Value[field]
	return ok
}

func splitTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func queryInt(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func queryFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
