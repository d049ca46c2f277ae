package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/port/http/middleware"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/service"
)

type CategoryHandler struct {
	categories *service.CategoryService
	log        logger.Logger
}

func NewCategoryHandler(categories *service.CategoryService, log logger.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, log: log}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := true
	if r.URL.Query().Get("includeInactive") == "true" && middleware.IsAdmin(r.Context()) {
		activeOnly = false
	}
	categories, err := h.categories.List(r.Context(), activeOnly)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", Payload{"categories": categories})
}

func (h *CategoryHandler) Parents(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.Parents(r.Context())
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", Payload{"categories": categories})
}

func (h *CategoryHandler) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.categories.Tree(r.Context())
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", Payload{"categories": tree})
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	category, err := h.categories.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", Payload{"category": category})
}

func (h *CategoryHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	category, err := h.categories.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", Payload{"category": category})
}

func (h *CategoryHandler) Products(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.categories.Products(r.Context(), chi.URLParam(r, "id"),
		queryInt(q.Get("page"), 1), queryInt(q.Get("limit"), 10))
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", Payload{
		"products":   result.Products,
		"pagination": result.Pagination,
	})
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, image, ok := h.parseCategoryForm(w, r)
	if !ok {
		return
	}
	if input.Name == "" {
		respondValidationError(w, map[string]string{"name": "this field is required"})
		return
	}

	category, err := h.categories.Create(r.Context(), *input, image)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "category created", Payload{"category": category})
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "id")

	var input service.UpdateCategoryInput
	var image *service.ImageFile

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		created, parsedImage, ok := h.parseCategoryForm(w, r)
		if !ok {
			return
		}
		if has(r, "name") {
			input.Name = &created.Name
		}
		if has(r, "description") {
			input.Description = &created.Description
		}
		if has(r, "parentId") {
			input.ParentID = &created.ParentID
		}
		if has(r, "displayOrder") {
			input.DisplayOrder = &created.DisplayOrder
		}
		if has(r, "isActive") {
			active := r.FormValue("isActive") == "true"
			input.IsActive = &active
		}
		image = parsedImage
	} else if !decodeJSON(w, r, &input) {
		return
	}

	category, err := h.categories.Update(r.Context(), categoryID, input, image)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "category updated", Payload{"category": category})
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "category deleted", nil)
}

func (h *CategoryHandler) parseCategoryForm(w http.ResponseWriter, r *http.Request) (*service.CreateCategoryInput, *service.ImageFile, bool) {
	if err := r.ParseMultipartForm(maxMultipartSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return nil, nil, false
	}

	input := service.CreateCategoryInput{
		Name:         r.FormValue("name"),
		Description:  r.FormValue("description"),
		ParentID:     r.FormValue("parentId"),
		DisplayOrder: queryInt(r.FormValue("displayOrder"), 0),
	}

	var image *service.ImageFile
	if headers := r.MultipartForm.File["image"]; len(headers) > 0 {
		fh := headers[0]
		if fh.Size > maxImageSize {
			respondError(w, http.StatusBadRequest, "image must be at most 5 MB")
			return nil, nil, false
		}
		f, err := fh.Open()
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read uploaded file")
			return nil, nil, false
		}
		data, err := io.ReadAll(io.LimitReader(f, maxImageSize))
		f.Close()
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read uploaded file")
			return nil, nil, false
		}
		image = &service.ImageFile{Name: fh.Filename, Data: data}
	}
	return &input, image, true
}
