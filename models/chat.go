package models

// ChatRequest is the body of POST /chat. Request-scoped; nothing here is
// persisted beyond logging.
type ChatRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

type ChatResponse struct {
	Response string `json:"response"`
}
