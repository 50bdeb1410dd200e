package models

import "time"

// Conversation is the model for the 'conversations' table. A pair of users
// has at most one conversation regardless of who started it.
type Conversation struct {
	ID             int64      `json:"id" db:"id"`
	Participant1ID int64      `json:"participant1Id" db:"participant1_id"`
	Participant2ID int64      `json:"participant2Id" db:"participant2_id"`
	LastMessageAt  *time.Time `json:"lastMessageAt,omitempty" db:"last_message_at"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Joins (populated manually)
	LastMessage *Message `json:"lastMessage,omitempty" db:"-"`
	UnreadCount int      `json:"unreadCount" db:"-"`
}

// Message is the model for the 'messages' table.
type Message struct {
	ID             int64   `json:"id" db:"id"`
	ConversationID int64   `json:"conversationId" db:"conversation_id"`
	SenderID       int64   `json:"senderId" db:"sender_id"`
	Content        string  `json:"content" db:"content"`
	MessageType    string  `json:"messageType" db:"message_type"` // "text" or "image"
	ImageURL       *string `json:"imageUrl,omitempty" db:"image_url"`
	IsRead         bool    `json:"isRead" db:"is_read"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	SenderName string `json:"senderName,omitempty" db:"-"`
}
