package models

// GenerationJob is the message published to the generation worker's queue.
type GenerationJob struct {
	License string `json:"license"`
	Prompt  string `json:"prompt,omitempty"`
}

type SigninRequest struct {
	Key string `json:"key" form:"key"`
}

type PromptUpsert struct {
	ID     int    `json:"id"`
	Prompt string `json:"prompt"`
}

type UpdatePromptsRequest struct {
	Prompts []PromptUpsert `json:"prompts"`
}
