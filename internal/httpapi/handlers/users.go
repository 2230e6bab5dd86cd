package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/suPer8Hu/ai-companion/internal/auth"
	"github.com/suPer8Hu/ai-companion/internal/common"
	"github.com/suPer8Hu/ai-companion/internal/httpapi/middleware"
	"github.com/suPer8Hu/ai-companion/internal/identity"
)

type registerReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

func (h *Handler) token(sessionID, userID string) string {
	tok, err := auth.SignJWT(sessionID, userID, h.Opts.JWTSecret, h.Opts.TokenTTL)
	if err != nil {
		h.Log.Warn("sign token failed", zap.Error(err))
		return ""
	}
	return tok
}

func (h *Handler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, common.CodeValidation, "invalid json")
		return
	}

	acc, sessionID, err := h.Identities.Register(c.Request.Context(), identity.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Name:     req.Name,
	})
	if err != nil {
		common.FailErr(c, err)
		return
	}
	h.save(c)
	h.Log.Info("account registered", zap.String("user_id", acc.UserID))

	common.OK(c, gin.H{
		"success":   true,
		"message":   "Account created successfully",
		"sessionId": sessionID,
		"token":     h.token(sessionID, acc.UserID),
		"user": gin.H{
			"userId":   acc.UserID,
			"username": acc.Username,
			"name":     acc.Name,
		},
	})
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, common.CodeValidation, "invalid json")
		return
	}
	if req.Username == "" || req.Password == "" {
		common.Fail(c, http.StatusBadRequest, common.CodeValidation, "username and password are required")
		return
	}

	acc, sessionID, err := h.Identities.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	h.save(c)

	common.OK(c, gin.H{
		"success":   true,
		"message":   "Login successful",
		"sessionId": sessionID,
		"token":     h.token(sessionID, acc.UserID),
		"user": gin.H{
			"userId":      acc.UserID,
			"username":    acc.Username,
			"name":        acc.Name,
			"language":    acc.Language,
			"personality": acc.Personality,
		},
	})
}

type sessionReq struct {
	SessionID string `json:"sessionId"`
}

func (h *Handler) Logout(c *gin.Context) {
	var req sessionReq
	_ = c.ShouldBindJSON(&req) // allow empty {}

	sessionID := middleware.SessionID(c, req.SessionID, "")
	if err := h.Identities.Logout(c.Request.Context(), sessionID); err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"success": true, "message": "Logout successful"})
}

func (h *Handler) authenticated(c *gin.Context, sessionID string) (identity.Identity, bool) {
	id, err := h.Identities.Resolve(c.Request.Context(), sessionID)
	if err != nil {
		common.FailErr(c, err)
		return identity.Identity{}, false
	}
	if !id.Authenticated() {
		common.FailErr(c, common.ErrUnauthenticated)
		return identity.Identity{}, false
	}
	return id, true
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := h.authenticated(c, c.Param("sessionId"))
	if !ok {
		return
	}
	acc := id.Account
	common.OK(c, gin.H{
		"user": gin.H{
			"userId":      acc.UserID,
			"username":    acc.Username,
			"name":        acc.Name,
			"email":       acc.Email,
			"language":    acc.Language,
			"personality": acc.Personality,
			"createdAt":   acc.CreatedAt,
			"lastLoginAt": acc.LastLoginAt,
		},
		"memory":       id.Memory,
		"interactions": id.Interaction,
	})
}

type memoryReq struct {
	SessionID   string         `json:"sessionId"`
	Research    []string       `json:"research"`
	Preferences map[string]any `json:"preferences"`
	Interests   []string       `json:"interests"`
}

func (h *Handler) UpdateMemory(c *gin.Context) {
	var req memoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, common.CodeValidation, "invalid json")
		return
	}
	id, ok := h.authenticated(c, middleware.SessionID(c, req.SessionID, ""))
	if !ok {
		return
	}

	mem, err := h.Identities.UpdateMemory(id.Account.UserID, identity.MemoryPatch{
		Research:    req.Research,
		Interests:   req.Interests,
		Preferences: req.Preferences,
	})
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"success": true, "message": "Memory updated successfully", "memory": mem})
}

func (h *Handler) GetProfile(c *gin.Context) {
	sessionID := c.Param("sessionId")
	common.OK(c, gin.H{"profile": h.Identities.Guest(sessionID), "sessionId": sessionID})
}

type profileReq struct {
	SessionID   string         `json:"sessionId"`
	Name        string         `json:"name"`
	Preferences map[string]any `json:"preferences"`
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req profileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, common.CodeValidation, "invalid json")
		return
	}
	sessionID := middleware.SessionID(c, req.SessionID, "")
	if sessionID == "" {
		common.Fail(c, http.StatusBadRequest, common.CodeValidation, "sessionId is required")
		return
	}

	if req.Name != "" {
		h.Identities.SetGuestName(sessionID, req.Name)
	}
	profile := h.Identities.MergeGuestPreferences(sessionID, req.Preferences)
	common.OK(c, gin.H{"message": "Profile updated", "profile": profile, "sessionId": sessionID})
}
