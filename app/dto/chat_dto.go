package dto

// ChatTurn is one prior message of a conversation
type ChatTurn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant model"`
	Content string `json:"content" validate:"required"`
}

// ChatRequest asks the assistant for a reply
type ChatRequest struct {
	Message   string     `json:"message" validate:"required,max=4000"`
	History   []ChatTurn `json:"history,omitempty" validate:"omitempty,max=50,dive"`
	SessionID *string    `json:"sessionId,omitempty" validate:"omitempty,max=255"`
	VisitorID *string    `json:"visitorId,omitempty" validate:"omitempty,max=255"`
	Page      *string    `json:"page,omitempty" validate:"omitempty,max=512"`
}

type ChatResponse struct {
	Reply    string `json:"reply"`
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
}
