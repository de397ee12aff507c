package types

import "encoding/json"

// Document is an opaque signed content record held by the document delegate.
type Document struct {
	ID        string          `json:"stream_id"`
	Content   json.RawMessage `json:"content"`
	Principal DID             `json:"controller"`
	Tags      []string        `json:"tags"`
	Schema    string          `json:"schema,omitempty"`
}

// Conversation is the content of a conversation document.
type Conversation struct {
	Recipients    []DID             `json:"recipients"`
	Name          string            `json:"name,omitempty"`
	EncryptedName *EncryptedPayload `json:"encryptedName,omitempty"`
	Context       string            `json:"context,omitempty"`
}

// Message is the content of a direct-message document.
type Message struct {
	ConversationID   string           `json:"conversation_id"`
	EncryptedMessage EncryptedPayload `json:"encryptedMessage"`
}

// Post is the content of a post document. Body is empty when EncryptedBody is set.
type Post struct {
	Body          string            `json:"body,omitempty"`
	Context       string            `json:"context,omitempty"`
	EncryptedBody *EncryptedPayload `json:"encryptedBody,omitempty"`
}
