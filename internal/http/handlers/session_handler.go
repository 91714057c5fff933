// README: Session handler (interview turns and plan building over HTTP).
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/modules/interview"
	"wayfarer/internal/service"
	"wayfarer/internal/types"
)

const (
	// turnTimeout bounds one interview round trip to the generation service.
	turnTimeout = 30 * time.Second
	// planTimeout covers candidate generation plus per-item place lookups.
	planTimeout = 120 * time.Second
)

type SessionHandler struct {
	hub *service.Hub
}

func NewSessionHandler(hub *service.Hub) *SessionHandler {
	return &SessionHandler{hub: hub}
}

type createSessionReq struct {
	Message string  `json:"message"`
	Budget  float64 `json:"budget"`
	People  int     `json:"people"`
	Days    int     `json:"days"`
}

type turnResp struct {
	SessionID string                   `json:"session_id"`
	Status    string                   `json:"status"`
	Question  string                   `json:"question,omitempty"`
	Profile   *interview.TravelProfile `json:"profile,omitempty"`
}

// Create handles POST /api/sessions.
func (h *SessionHandler) Create(c *gin.Context) {
	var req createSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(c, http.StatusBadRequest, "missing message")
		return
	}
	if req.Budget < 0 || req.People < 0 || req.Days < 0 {
		writeError(c, http.StatusBadRequest, "negative trip parameter")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), turnTimeout)
	defer cancel()

	id, outcome, err := h.hub.StartSession(ctx, req.Message, interview.TripParams{
		Budget: req.Budget,
		People: req.People,
		Days:   req.Days,
	})
	if err != nil {
		writeHubError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, toTurnResp(id, outcome))
}

type messageReq struct {
	Message string `json:"message"`
}

// Message handles POST /api/sessions/:id/message.
func (h *SessionHandler) Message(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req messageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(c, http.StatusBadRequest, "missing message")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), turnTimeout)
	defer cancel()

	outcome, err := h.hub.Message(ctx, id, req.Message)
	if err != nil {
		writeHubError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toTurnResp(id, outcome))
}

// BuildPlan handles POST /api/sessions/:id/plan.
func (h *SessionHandler) BuildPlan(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), planTimeout)
	defer cancel()

	itinerary, err := h.hub.BuildPlan(ctx, id)
	if err != nil {
		writeHubError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, itinerary)
}

// Get handles GET /api/sessions/:id, reporting interview progress.
func (h *SessionHandler) Get(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	profile, err := h.hub.Profile(ctx, id)
	if err != nil {
		writeHubError(c, err)
		return
	}
	resp := turnResp{SessionID: string(id), Status: "collecting"}
	if profile != nil {
		resp.Status = "finalized"
		resp.Profile = profile
	}
	writeJSON(c, http.StatusOK, resp)
}

// End handles DELETE /api/sessions/:id.
func (h *SessionHandler) End(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.hub.EndSession(ctx, id); err != nil {
		writeHubError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetPlan handles GET /api/sessions/:id/plan.
func (h *SessionHandler) GetPlan(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	itinerary, err := h.hub.GetPlan(ctx, id)
	if err != nil {
		writeHubError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, itinerary)
}

func sessionID(c *gin.Context) (types.ID, bool) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid session id")
		return "", false
	}
	return types.ID(id), true
}

func toTurnResp(id types.ID, outcome interview.Outcome) turnResp {
	resp := turnResp{SessionID: string(id)}
	switch outcome.Kind {
	case interview.Finalize:
		resp.Status = "finalized"
		resp.Profile = outcome.Profile
	default:
		resp.Status = "question"
		resp.Question = outcome.Question
	}
	return resp
}
