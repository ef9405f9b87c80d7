package types

// ChatMessage is a record in the chat_messages collection. An empty
// ReceiverID addresses every lawyer in the firm.
type ChatMessage struct {
	ID          string `json:"id,omitempty"`
	SenderID    string `json:"sender_id"`
	ReceiverID  string `json:"receiver_id,omitempty"`
	Message     string `json:"message"`
	MessageType string `json:"message_type"`
	IsRead      bool   `json:"is_read"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// ToRecord implements Recorder.
func (m ChatMessage) ToRecord() (Record, error) { return toRecord(m) }

// MessageText is the default message type.
const MessageText = "text"
