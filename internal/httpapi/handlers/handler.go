package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/suPer8Hu/ai-companion/internal/chat"
	"github.com/suPer8Hu/ai-companion/internal/identity"
)

// Saver flushes state after account changes. Failures are logged by the saver.
type Saver interface {
	SaveOrLog(ctx context.Context)
}

type Options struct {
	JWTSecret      string
	TokenTTL       time.Duration
	UploadDir      string
	MaxUploadBytes int64
}

type Handler struct {
	Identities *identity.Store
	ChatSvc    *chat.Service
	Saver      Saver
	Opts       Options
	Log        *zap.Logger
}

func NewHandler(ids *identity.Store, chatSvc *chat.Service, saver Saver, opts Options, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Handler{Identities: ids, ChatSvc: chatSvc, Saver: saver, Opts: opts, Log: log}
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// save runs detached from the request so a client hang-up does not cancel it.
func (h *Handler) save(c *gin.Context) {
	if h.Saver == nil {
		return
	}
	h.Saver.SaveOrLog(context.WithoutCancel(c.Request.Context()))
}
