package models

import (
	"sort"
	"strings"
	"time"
)

// Conversation groups the messages exchanged between a ride's driver and one
// passenger. Its id is derived from the ride and the participant pair so the
// same thread is always reused.
type Conversation struct {
	ID           string    `bson:"id" json:"id"`
	RideID       string    `bson:"ride_id" json:"rideId"`
	Participants []string  `bson:"participants" json:"participants"`
	LastMessage  string    `bson:"last_message" json:"lastMessage"`
	LastSentAt   time.Time `bson:"last_sent_at" json:"lastSentAt"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
}

// ConversationID derives the stable conversation id for a ride and a pair of
// participants, independent of argument order.
func ConversationID(rideID, a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join([]string{rideID, pair[0], pair[1]}, ":")
}

// Message is a single chat message inside a conversation.
type Message struct {
	ID             string    `bson:"id" json:"id"`
	ConversationID string    `bson:"conversation_id" json:"conversationId"`
	SenderID       string    `bson:"sender_id" json:"senderId"`
	Body           string    `bson:"body" json:"body"`
	Read           bool      `bson:"read" json:"read"`
	SentAt         time.Time `bson:"sent_at" json:"sentAt"`
}
