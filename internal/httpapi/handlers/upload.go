package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suPer8Hu/ai-companion/internal/chat"
	"github.com/suPer8Hu/ai-companion/internal/common"
	"github.com/suPer8Hu/ai-companion/internal/httpapi/middleware"
)

// allowedUploads maps accepted extensions to the content type the bytes must sniff as.
var allowedUploads = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".pdf":  "application/pdf",
}

func (h *Handler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Opts.MaxUploadBytes+1<<20)

	fh, err := c.FormFile("file")
	if err != nil {
		common.Fail(c, http.StatusBadRequest, common.CodeValidation, "No file uploaded")
		return
	}
	if fh.Size > h.Opts.MaxUploadBytes {
		common.Fail(c, http.StatusBadRequest, common.CodeValidation, "file is too large")
		return
	}
	want, ok := allowedUploads[strings.ToLower(filepath.Ext(fh.Filename))]
	if !ok {
		common.Fail(c, http.StatusBadRequest, common.CodeValidation, "Only images and PDFs are allowed")
		return
	}

	if err := os.MkdirAll(h.Opts.UploadDir, 0o755); err != nil {
		common.FailErr(c, err)
		return
	}
	path := filepath.Join(h.Opts.UploadDir, uuid.NewString())
	if err := c.SaveUploadedFile(fh, path); err != nil {
		common.FailErr(c, err)
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			h.Log.Warn("remove upload failed", zap.String("path", path), zap.Error(err))
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	if got := mimetype.Detect(data); !got.Is(want) {
		common.FailErr(c, fmt.Errorf("%w: content is %s, expected %s", common.ErrValidation, got.String(), want))
		return
	}

	res, err := h.ChatSvc.Upload(c.Request.Context(), chat.UploadInput{
		SessionID: middleware.SessionID(c, c.PostForm("sessionId"), chat.DefaultSessionID),
		Message:   c.PostForm("message"),
		FileName:  fh.Filename,
		MIMEType:  want,
		Data:      data,
	})
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, res)
}
