package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/khusa71/agritech-chat-assistant/internal/api/models"
	"github.com/khusa71/agritech-chat-assistant/internal/api/response"
	"github.com/khusa71/agritech-chat-assistant/internal/location"
)

// SnapshotHandler handles environmental snapshot endpoints.
type SnapshotHandler struct {
	locations *location.Service
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(locations *location.Service) *SnapshotHandler {
	return &SnapshotHandler{locations: locations}
}

// FetchSnapshot handles POST /v1/snapshots:fetch - gather soil,
// weather, rainfall and market data for a coordinate.
func (h *SnapshotHandler) FetchSnapshot(w http.ResponseWriter, r *http.Request) {
	var input models.SnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if errs := validateCoordinates(input.Lat, input.Lon); len(errs) > 0 {
		response.BadRequest(w, r, "invalid coordinates", errs)
		return
	}

	snap, err := h.locations.FetchSnapshot(r.Context(), input.Lat, input.Lon)
	switch {
	case errors.Is(err, location.ErrInvalidCoordinates):
		response.BadRequest(w, r, "invalid coordinates", nil)
		return
	case err != nil:
		response.InternalError(w, r, "snapshot assembly failed")
		return
	}

	response.JSON(w, r, http.StatusOK, models.SnapshotResponseFrom(snap))
}

// validateCoordinates checks coordinate bounds and reports each
// violated field.
func validateCoordinates(lat, lon float64) []models.FieldError {
	var errs []models.FieldError
	if lat < -90 || lat > 90 {
		errs = append(errs, models.FieldError{Field: "lat", Message: "must be between -90 and 90"})
	}
	if lon < -180 || lon > 180 {
		errs = append(errs, models.FieldError{Field: "lon", Message: "must be between -180 and 180"})
	}
	return errs
}
