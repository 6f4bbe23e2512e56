package domain

// SendMessageRequest is the body of POST /api/messages/send.
type SendMessageRequest struct {
	Sender      string `json:"sender" binding:"required"`
	Recipient   string `json:"recipient" binding:"required"`
	Content     string `json:"content" binding:"required"`
	MessageType string `json:"message_type"`
}

// MarkReadRequest is the body of PUT /api/messages/mark-read.
type MarkReadRequest struct {
	Sender    string `json:"sender" binding:"required"`
	Recipient string `json:"recipient" binding:"required"`
}

// ConnectUserRequest is the body of the presence connect/disconnect endpoints.
type ConnectUserRequest struct {
	Username string `json:"username" binding:"required"`
}

// HistoryResponse is the payload of the per-user history endpoint.
type HistoryResponse struct {
	Username string    `json:"username"`
	Messages []Message `json:"messages"`
	Count    int       `json:"count"`
}

// ConversationResponse is the payload of the two-party conversation endpoint.
type ConversationResponse struct {
	Participants []string  `json:"participants"`
	Messages     []Message `json:"messages"`
	Count        int       `json:"count"`
}

// ConversationListResponse is the payload of the conversation summary endpoint.
type ConversationListResponse struct {
	Username      string                `json:"username"`
	Conversations []ConversationSummary `json:"conversations"`
	Count         int                   `json:"count"`
}
