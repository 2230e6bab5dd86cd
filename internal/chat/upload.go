package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/suPer8Hu/ai-companion/internal/ai"
	"github.com/suPer8Hu/ai-companion/internal/common"
	"github.com/suPer8Hu/ai-companion/internal/conversation"
)

const (
	defaultUploadMessage = "Analyze this file"
	imageInstruction     = " Please analyze this image in detail."
	mimePDF              = "application/pdf"
)

type UploadInput struct {
	SessionID string
	Message   string
	FileName  string
	MIMEType  string
	Data      []byte
}

type UploadResult struct {
	Reply     string `json:"reply"`
	SessionID string `json:"sessionId"`
	FileName  string `json:"fileName"`
	FileType  string `json:"fileType"`
}

// Upload answers an uploaded image with the vision model. PDFs get a fixed
// reply without a model call. Both exchanges land in the session buffer.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	sessionID := orDefaultSession(in.SessionID)
	message := in.Message
	if strings.TrimSpace(message) == "" {
		message = defaultUploadMessage
	}

	st := s.sessions.get(sessionID)
	st.mu.Lock()
	defer st.mu.Unlock()

	var reply string
	switch {
	case strings.HasPrefix(in.MIMEType, "image/"):
		var err error
		reply, err = s.generate(ctx, ai.Request{
			Prompt:      message + imageInstruction,
			Attachments: []ai.Media{{MIMEType: in.MIMEType, Data: in.Data}},
		})
		if err != nil {
			return nil, err
		}
	case in.MIMEType == mimePDF:
		reply = pdfReply(in.FileName)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %s", common.ErrValidation, in.MIMEType)
	}

	s.buffers.Append(sessionID,
		conversation.Turn{Role: conversation.RoleUser, Content: "Uploaded file: " + in.FileName},
		conversation.Turn{Role: conversation.RoleAssistant, Content: reply},
	)
	return &UploadResult{Reply: reply, SessionID: sessionID, FileName: in.FileName, FileType: in.MIMEType}, nil
}

func pdfReply(name string) string {
	return "PDF file received. Unfortunately, I cannot directly read PDF content yet, but I can see it's a PDF file named '" +
		name + "'. You can copy and paste text from the PDF for me to analyze."
}
