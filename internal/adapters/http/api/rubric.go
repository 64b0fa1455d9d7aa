package api

import (
	"net/http"

	"github.com/okian/callqa/internal/domain/rubric"
)

type rubricResponse struct {
	Parameters []rubric.Parameter `json:"parameters"`
	MaxScore   int                `json:"maxScore"`
}

// RubricHandler serves the rubric the presentation layer renders from.
type RubricHandler struct {
	body rubricResponse
}

// NewRubricHandler creates a new rubric handler.
func NewRubricHandler(rb *rubric.Rubric) *RubricHandler {
	return &RubricHandler{body: rubricResponse{Parameters: rb.Parameters(), MaxScore: rb.MaxScore()}}
}

// HandleGetRubric handles GET /api/rubric requests.
func (h *RubricHandler) HandleGetRubric(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.body)
}
