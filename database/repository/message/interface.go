package messageRepo

import "campusride/models"

// MessageRepository defines methods for conversation and message data access.
type MessageRepository interface {
	// UpsertConversation creates or refreshes the conversation document,
	// updating the last-message preview.
	UpsertConversation(c *models.Conversation) error
	GetConversation(id string) (*models.Conversation, error)
	ListConversations(uid string) ([]models.Conversation, error)
	InsertMessage(m *models.Message) error
	ListMessages(conversationID string, limit int64) ([]models.Message, error)
	// MarkConversationRead flags all messages not sent by uid as read.
	MarkConversationRead(conversationID, uid string) error
	// DeleteByUID removes the conversations and messages of a user.
	DeleteByUID(uid string) error
}
