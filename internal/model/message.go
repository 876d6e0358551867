package model

type Message struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp string      `json:"timestamp"`
	Tags      []string    `json:"tags,omitempty"`
}

type ChatMessageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type ChatMessageResponse struct {
	SessionID         string `json:"session_id"`
	UserMessage       string `json:"user_message"`
	BotResponse       string `json:"bot_response"`
	Timestamp         string `json:"timestamp"`
	ConversationCount int    `json:"conversation_count"`
}

type AudioMessageResponse struct {
	SessionID     string `json:"session_id"`
	Transcription string `json:"transcription"`
	BotResponse   string `json:"bot_response"`
	Timestamp     string `json:"timestamp"`
}
