package model

import "time"

// Role identifies the author of a chat message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Attachment is the extracted text of a file uploaded alongside a user
// message. A failed extraction keeps the attachment with Error set so the UI
// can badge it; it never blocks the rest of the message.
type Attachment struct {
	ID    string `json:"id" bson:"id"`
	Name  string `json:"name" bson:"name"`
	Text  string `json:"text,omitempty" bson:"text,omitempty"`
	Error string `json:"error,omitempty" bson:"error,omitempty"`
}

// ChatMessage is one turn of a session's conversation. The assistant message
// for an in-flight reply is created empty and appended to in place until the
// stream ends; after the directive-stripping pass it is immutable.
type ChatMessage struct {
	ID          string       `json:"id" bson:"_id"`
	SessionID   string       `json:"sessionId" bson:"sessionId"`
	Role        Role         `json:"role" bson:"role"`
	Content     string       `json:"content" bson:"content"`
	Attachments []Attachment `json:"attachments,omitempty" bson:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"createdAt" bson:"createdAt"`
}

// Session is the persisted metadata of a chat session. The session's survey
// and conversation state live in memory; only the transcript is stored.
type Session struct {
	ID        string    `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
