package persist

import (
	"time"

	"github.com/suPer8Hu/ai-companion/internal/conversation"
	"github.com/suPer8Hu/ai-companion/internal/identity"
)

const (
	DocUsers         = "users"
	DocConversations = "conversations"
	DocMemories      = "memories"
)

type usersDoc struct {
	UserLoginData Pairs[identity.Credential] `json:"userLoginData"`
	UserAccounts  Pairs[identity.Account]    `json:"userAccounts"`
	Timestamp     time.Time                  `json:"timestamp"`
}

type conversationsDoc struct {
	UserConversations Pairs[[]conversation.Conversation] `json:"userConversations"`
	Timestamp         time.Time                          `json:"timestamp"`
}

type memoriesDoc struct {
	UserMemories     Pairs[identity.Memory]      `json:"userMemories"`
	UserInteractions Pairs[identity.Interaction] `json:"userInteractions"`
	Timestamp        time.Time                   `json:"timestamp"`
}
