package common

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

func NewULID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// NewSessionID returns an opaque session identifier.
func NewSessionID() string {
	return "session_" + uuid.NewString()
}

func NewUserID() string {
	return "user_" + uuid.NewString()
}

// NewConversationID returns a sortable conversation identifier.
func NewConversationID() string {
	id, err := NewULID()
	if err != nil {
		return "conv_" + uuid.NewString()
	}
	return "conv_" + id
}
