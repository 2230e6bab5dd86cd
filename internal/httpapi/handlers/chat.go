package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/suPer8Hu/ai-companion/internal/chat"
	"github.com/suPer8Hu/ai-companion/internal/common"
	"github.com/suPer8Hu/ai-companion/internal/httpapi/middleware"
)

type sendMessageReq struct {
	Message        string `json:"message"`
	SessionID      string `json:"sessionId"`
	ConversationID string `json:"conversationId"`
}

func (h *Handler) SendChatMessage(c *gin.Context) {
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, common.CodeValidation, "invalid json")
		return
	}

	res, err := h.ChatSvc.Send(c.Request.Context(), chat.TurnInput{
		SessionID:      middleware.SessionID(c, req.SessionID, chat.DefaultSessionID),
		ConversationID: req.ConversationID,
		Message:        req.Message,
	})
	if err != nil {
		common.FailErr(c, err)
		return
	}

	if res.IsCommand {
		common.OK(c, gin.H{
			"reply":        res.Reply,
			"sessionId":    res.SessionID,
			"isCommand":    true,
			"emotion":      res.Emotion,
			"emotionTrend": res.EmotionTrend,
		})
		return
	}
	common.OK(c, gin.H{
		"reply":        res.Reply,
		"sessionId":    res.SessionID,
		"emotion":      res.Emotion,
		"emotionTrend": res.EmotionTrend,
		"userInfo":     res.UserInfo,
	})
}

// pathSession reads the optional :sessionId segment.
func pathSession(c *gin.Context) string {
	return middleware.SessionID(c, c.Param("sessionId"), chat.DefaultSessionID)
}

func (h *Handler) History(c *gin.Context) {
	sessionID := pathSession(c)
	common.OK(c, gin.H{"history": h.ChatSvc.History(sessionID), "sessionId": sessionID})
}

func (h *Handler) Clear(c *gin.Context) {
	var req sessionReq
	_ = c.ShouldBindJSON(&req) // allow empty {}
	sessionID := h.ChatSvc.Clear(middleware.SessionID(c, req.SessionID, chat.DefaultSessionID))
	common.OK(c, gin.H{"message": "Chat history cleared", "sessionId": sessionID})
}

func (h *Handler) Emotions(c *gin.Context) {
	sessionID := pathSession(c)
	view := h.ChatSvc.Emotions(sessionID)
	common.OK(c, gin.H{"emotions": view.Emotions, "trend": view.Trend, "sessionId": sessionID})
}

func (h *Handler) PersonalityEvolution(c *gin.Context) {
	sessionID := pathSession(c)
	view := h.ChatSvc.Evolution(sessionID)
	common.OK(c, gin.H{"evolution": view.Evolution, "patterns": view.Patterns, "sessionId": sessionID})
}

func (h *Handler) CreativeProjects(c *gin.Context) {
	sessionID := pathSession(c)
	common.OK(c, gin.H{"projects": h.ChatSvc.Creative(sessionID), "sessionId": sessionID})
}

func (h *Handler) ListConversations(c *gin.Context) {
	list, err := h.ChatSvc.Conversations(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"conversations": list})
}

func (h *Handler) GetConversation(c *gin.Context) {
	conv, err := h.ChatSvc.Conversation(c.Request.Context(), c.Param("sessionId"), c.Param("conversationId"))
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"conversation": conv})
}

func (h *Handler) NewConversation(c *gin.Context) {
	var req sessionReq
	_ = c.ShouldBindJSON(&req) // allow empty {}
	conv, err := h.ChatSvc.NewConversation(c.Request.Context(), middleware.SessionID(c, req.SessionID, ""))
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"success": true, "conversationId": conv.ID, "message": "New conversation created"})
}

func (h *Handler) DeleteConversation(c *gin.Context) {
	if err := h.ChatSvc.DeleteConversation(c.Request.Context(), c.Param("sessionId"), c.Param("conversationId")); err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"success": true, "message": "Conversation deleted successfully"})
}
