package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/voxprep/backend/internal/services"
	"github.com/voxprep/backend/internal/utils"
)

type InterviewHandler struct {
	interviews services.InterviewService
	feedback   services.FeedbackService
}

func NewInterviewHandler(interviews services.InterviewService, feedback services.FeedbackService) *InterviewHandler {
	return &InterviewHandler{interviews: interviews, feedback: feedback}
}

type GenerateInterviewRequest struct {
	Type      string `json:"type" binding:"required"`  // Technical|Behavioural|Mixed
	Role      string `json:"role" binding:"required"`  // ex: "Backend Developer"
	Level     string `json:"level" binding:"required"` // ex: "Mid-level"
	TechStack string `json:"techstack" binding:"required"`
	Amount    int    `json:"amount" binding:"required"`
	Domain    string `json:"domain"`
}

// Generate creates a new interview record with an AI-authored question set.
// The response keeps the {success, interviewId|error} contract.
func (h *InterviewHandler) Generate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req GenerateInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	id, err := h.interviews.Create(c.Request.Context(), services.CreateInterviewParams{
		Role:      req.Role,
		Level:     req.Level,
		Type:      req.Type,
		TechStack: req.TechStack,
		Amount:    req.Amount,
		Domain:    req.Domain,
		UserID:    userID,
	})
	if err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"success": false, "error": errorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "interviewId": id})
}

// ListLatest returns finalized interviews from other users, newest first.
// Degraded reads come back as an empty list, never an error.
func (h *InterviewHandler) ListLatest(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	out := h.interviews.ListLatest(c.Request.Context(), userID, limit)
	c.JSON(http.StatusOK, out)
}

func (h *InterviewHandler) ListMine(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	out := h.interviews.ListByUser(c.Request.Context(), userID)
	c.JSON(http.StatusOK, out)
}

func (h *InterviewHandler) GetByID(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	iv, err := h.interviews.GetByID(c.Request.Context(), c.Param("interview_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, iv)
}

// GetFeedback looks up the caller's feedback for one interview.
func (h *InterviewHandler) GetFeedback(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	fb, err := h.feedback.GetByInterviewAndUser(c.Request.Context(), c.Param("interview_id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fb)
}
