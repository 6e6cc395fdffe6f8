package models

// Role identifies the author of a chat message
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message represents a single entry in a widget's transcript
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage builds a user-authored message
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// BotMessage builds a bot-authored message
func BotMessage(content string) Message {
	return Message{Role: RoleBot, Content: content}
}

// ChatRequest is the JSON body POSTed to the backend chat endpoint
type ChatRequest struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
}

// ChatResponse is the JSON body returned by the backend chat endpoint
type ChatResponse struct {
	Reply string `json:"reply"`
}
