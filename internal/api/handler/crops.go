package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/khusa71/agritech-chat-assistant/internal/api/models"
	"github.com/khusa71/agritech-chat-assistant/internal/api/response"
	"github.com/khusa71/agritech-chat-assistant/internal/crop"
)

// CropHandler handles crop catalog endpoints.
type CropHandler struct {
	catalog *crop.Catalog
}

// NewCropHandler creates a new CropHandler.
func NewCropHandler(catalog *crop.Catalog) *CropHandler {
	return &CropHandler{catalog: catalog}
}

// List handles GET /v1/crops - all catalog crops, sorted by name.
func (h *CropHandler) List(w http.ResponseWriter, r *http.Request) {
	names := h.catalog.AllNames()
	response.JSON(w, r, http.StatusOK, models.CropListResponse{
		Crops: names,
		Total: len(names),
	})
}

// Get handles GET /v1/crops/{name} - one crop's growing profile.
func (h *CropHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	req, ok := h.catalog.Lookup(name)
	if !ok {
		response.NotFound(w, r, fmt.Sprintf("crop not found: %s", name))
		return
	}

	response.JSON(w, r, http.StatusOK, models.CropDetailFrom(req))
}

// ByMonth handles GET /v1/crops:by-month?month=N - crops plantable in
// the given calendar month.
func (h *CropHandler) ByMonth(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("month")
	month, err := strconv.Atoi(raw)
	if err != nil || month < 1 || month > 12 {
		response.BadRequest(w, r, "invalid month", []models.FieldError{
			{Field: "month", Message: "must be an integer between 1 and 12"},
		})
		return
	}

	names := h.catalog.ByMonth(time.Month(month))
	response.JSON(w, r, http.StatusOK, models.CropListResponse{
		Crops: names,
		Total: len(names),
		Month: month,
	})
}
