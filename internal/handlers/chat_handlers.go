package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/bizlink/bizlink-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Chat Handlers ---
//

// ListConversations is the handler for GET /v1/chat
// Returns the caller's conversations with the latest message and unread count,
// most recently active first.
func (h *Handlers) ListConversations(c *gin.Context) {
	userID := currentUserID(c)

	rows, err := h.DB.Query(`
		SELECT id, participant1_id, participant2_id, last_message_at, created_at, updated_at
		FROM conversations
		WHERE participant1_id = ? OR participant2_id = ?
		ORDER BY last_message_at IS NULL, last_message_at DESC`, userID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations"})
		return
	}
	defer rows.Close()

	conversations := []models.Conversation{}
	for rows.Next() {
		var conv models.Conversation
		if err := rows.Scan(&conv.ID, &conv.Participant1ID, &conv.Participant2ID,
			&conv.LastMessageAt, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan conversation"})
			return
		}
		conversations = append(conversations, conv)
	}
	rows.Close()

	for i := range conversations {
		conv := &conversations[i]

		var msg models.Message
		err := h.DB.QueryRow(`
			SELECT id, conversation_id, sender_id, content, message_type, image_url, is_read, created_at
			FROM messages WHERE conversation_id = ?
			ORDER BY created_at DESC LIMIT 1`, conv.ID).Scan(
			&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content,
			&msg.MessageType, &msg.ImageURL, &msg.IsRead, &msg.CreatedAt)
		if err == nil {
			conv.LastMessage = &msg
		} else if err != sql.ErrNoRows {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch last message"})
			return
		}

		if err := h.DB.QueryRow(`
			SELECT COUNT(*) FROM messages
			WHERE conversation_id = ? AND sender_id != ? AND is_read = false`,
			conv.ID, userID).Scan(&conv.UnreadCount); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count unread messages"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": conversations})
}

type OpenConversationInput struct {
	OtherUserID int64 `json:"otherUserId" binding:"required"`
}

// OpenConversation is the handler for POST /v1/chat
// Finds the existing conversation with the other user (in either direction)
// or creates one.
func (h *Handlers) OpenConversation(c *gin.Context) {
	userID := currentUserID(c)

	var input OpenConversationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var conv models.Conversation
	err := h.DB.QueryRow(`
		SELECT id, participant1_id, participant2_id, last_message_at, created_at, updated_at
		FROM conversations
		WHERE (participant1_id = ? AND participant2_id = ?)
		   OR (participant1_id = ? AND participant2_id = ?)`,
		userID, input.OtherUserID, input.OtherUserID, userID).Scan(
		&conv.ID, &conv.Participant1ID, &conv.Participant2ID,
		&conv.LastMessageAt, &conv.CreatedAt, &conv.UpdatedAt)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"data": conv})
		return
	}
	if err != sql.ErrNoRows {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversation"})
		return
	}

	now := time.Now()
	result, err := h.DB.Exec(`
		INSERT INTO conversations (participant1_id, participant2_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)`, userID, input.OtherUserID, now, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conversation"})
		return
	}

	convID, _ := result.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{"data": models.Conversation{
		ID:             convID,
		Participant1ID: userID,
		Participant2ID: input.OtherUserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}})
}

// conversationParticipants loads both sides of a conversation, or sql.ErrNoRows.
func (h *Handlers) conversationParticipants(convID int64) (int64, int64, error) {
	var p1, p2 int64
	err := h.DB.QueryRow("SELECT participant1_id, participant2_id FROM conversations WHERE id = ?",
		convID).Scan(&p1, &p2)
	return p1, p2, err
}

// GetMessages is the handler for GET /v1/chat/:id/messages
// Returns the conversation's messages oldest-first and marks the other
// participant's messages as read.
func (h *Handlers) GetMessages(c *gin.Context) {
	userID := currentUserID(c)
	convID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conversation id"})
		return
	}

	p1, p2, err := h.conversationParticipants(convID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversation"})
		return
	}
	if userID != p1 && userID != p2 {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	rows, err := h.DB.Query(`
		SELECT m.id, m.conversation_id, m.sender_id, m.content, m.message_type, m.image_url,
		       m.is_read, m.created_at, u.full_name
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.conversation_id = ?
		ORDER BY m.created_at ASC`, convID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.MessageType,
			&m.ImageURL, &m.IsRead, &m.CreatedAt, &m.SenderName); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan message"})
			return
		}
		messages = append(messages, m)
	}
	rows.Close()

	// Reading the thread marks the other side's messages read.
	if _, err := h.DB.Exec(`
		UPDATE messages SET is_read = true
		WHERE conversation_id = ? AND sender_id != ? AND is_read = false`,
		convID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark messages read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": messages})
}

type SendMessageInput struct {
	Content     string  `json:"content" binding:"required"`
	MessageType *string `json:"messageType"`
	ImageURL    *string `json:"imageUrl"`
}

// SendMessage is the handler for POST /v1/chat/:id/messages
func (h *Handlers) SendMessage(c *gin.Context) {
	userID := currentUserID(c)
	convID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conversation id"})
		return
	}

	p1, p2, err := h.conversationParticipants(convID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversation"})
		return
	}
	if userID != p1 && userID != p2 {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	var input SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	messageType := "text"
	if input.MessageType != nil && *input.MessageType != "" {
		messageType = *input.MessageType
	}

	now := time.Now()
	result, err := h.DB.Exec(`
		INSERT INTO messages (conversation_id, sender_id, content, message_type, image_url, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, false, ?)`,
		convID, userID, input.Content, messageType, input.ImageURL, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	if _, err := h.DB.Exec(`
		UPDATE conversations SET last_message_at = ?, updated_at = ? WHERE id = ?`,
		now, now, convID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update conversation"})
		return
	}

	messageID, _ := result.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{"data": models.Message{
		ID:             messageID,
		ConversationID: convID,
		SenderID:       userID,
		Content:        input.Content,
		MessageType:    messageType,
		ImageURL:       input.ImageURL,
		CreatedAt:      now,
	}})
}
