package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/khusa71/agritech-chat-assistant/internal/api/models"
	"github.com/khusa71/agritech-chat-assistant/internal/api/response"
	"github.com/khusa71/agritech-chat-assistant/internal/location"
	"github.com/khusa71/agritech-chat-assistant/internal/recommend"
)

const maxResultsCeiling = 20

// RecommendHandler handles crop recommendation endpoints.
type RecommendHandler struct {
	locations *location.Service
	ranker    *recommend.Ranker
}

// NewRecommendHandler creates a new RecommendHandler.
func NewRecommendHandler(locations *location.Service, ranker *recommend.Ranker) *RecommendHandler {
	return &RecommendHandler{locations: locations, ranker: ranker}
}

// ComputeRecommendations handles POST /v1/recommendations:compute -
// fetch a snapshot for the coordinate and rank catalog crops against
// it.
func (h *RecommendHandler) ComputeRecommendations(w http.ResponseWriter, r *http.Request) {
	var input models.RecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if errs := h.validate(&input); len(errs) > 0 {
		response.BadRequest(w, r, "invalid request", errs)
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

	opts := &recommend.Options{
		MinScore:   input.MinScore,
		MaxResults: input.MaxResults,
	}
	if input.Weights != nil {
		weights := input.Weights.ToWeights()
		opts.Weights = &weights
	}

	recs := h.ranker.Recommend(snap, opts)

	response.JSON(w, r, http.StatusOK, models.RecommendationResponseFrom(snap, recs))
}

func (h *RecommendHandler) validate(input *models.RecommendationRequest) []models.FieldError {
	errs := validateCoordinates(input.Lat, input.Lon)

	if input.MaxResults < 0 || input.MaxResults > maxResultsCeiling {
		errs = append(errs, models.FieldError{Field: "maxResults", Message: "must be between 0 and 20"})
	}
	if input.MinScore != nil && (*input.MinScore < 0 || *input.MinScore > 1) {
		errs = append(errs, models.FieldError{Field: "minScore", Message: "must be between 0 and 1"})
	}
	if input.Weights != nil {
		if err := input.Weights.ToWeights().Validate(); err != nil {
			errs = append(errs, models.FieldError{Field: "weights", Message: err.Error()})
		}
	}

	return errs
}
