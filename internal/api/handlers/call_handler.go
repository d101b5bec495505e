package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/voxprep/backend/internal/session"
	"github.com/voxprep/backend/internal/utils"
)

type CallHandler struct {
	sessions *session.Manager
}

func NewCallHandler(sessions *session.Manager) *CallHandler {
	return &CallHandler{sessions: sessions}
}

type StartCallRequest struct {
	InterviewID string   `json:"interview_id"`
	FeedbackID  string   `json:"feedback_id"`
	Type        string   `json:"type"` // "interview" | "generate"
	Questions   []string `json:"questions"`
}

// Start launches a call session for the caller. The launch itself runs in the
// background; this returns as soon as the session is registered.
func (h *CallHandler) Start(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req StartCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "CallHandler.Start", "invalid request body", err))
		return
	}
	if req.Type != session.SessionTypeGenerate && req.InterviewID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "CallHandler.Start", "interview_id is required", nil))
		return
	}

	userName, _ := c.Get("user_name")
	name, _ := userName.(string)

	ctrl, err := h.sessions.Start(session.StartParams{
		UserID:      userID,
		UserName:    name,
		InterviewID: req.InterviewID,
		FeedbackID:  req.FeedbackID,
		Type:        req.Type,
		Questions:   req.Questions,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": ctrl.SessionID(),
		"status":     ctrl.Status(),
	})
}

func (h *CallHandler) Stop(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.sessions.Stop(c.Request.Context(), c.Param("session_id"), userID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": session.StatusFinished})
}

func (h *CallHandler) Status(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctrl, found := h.sessions.Get(c.Param("session_id"))
	if !found {
		writeError(c, utils.E(utils.CodeNotFound, "CallHandler.Status", "session not found", nil))
		return
	}
	if ctrl.OwnerID() != userID {
		writeError(c, utils.E(utils.CodeForbidden, "CallHandler.Status", "forbidden", nil))
		return
	}

	resp := gin.H{
		"session_id":     ctrl.SessionID(),
		"status":         ctrl.Status(),
		"is_speaking":    ctrl.IsSpeaking(),
		"transcript_len": ctrl.TranscriptLen(),
	}
	if msg := ctrl.LastError(); msg != "" {
		resp["last_error"] = msg
	}
	if ctrl.Finished() {
		select {
		case <-ctrl.Done():
			resp["outcome"] = ctrl.Outcome()
		default:
		}
	}
	c.JSON(http.StatusOK, resp)
}
