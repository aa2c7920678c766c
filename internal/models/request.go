package models

// AskRequest for POST /api/v1/ask (natural language prompt)
type AskRequest struct {
	Prompt string `json:"prompt"`
}
