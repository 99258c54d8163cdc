package models

import "time"

// QueueItem is one entry of the playback queue returned to the dashboard:
// a suggestion joined with its track's display fields.
type QueueItem struct {
	TrackID      uint      `json:"id" gorm:"column:track_id"`
	Title        string    `json:"title" gorm:"column:title"`
	Artist       string    `json:"artist" gorm:"column:artist"`
	Duration     string    `json:"duration" gorm:"column:duration"`
	Image        string    `json:"image" gorm:"column:image"`
	TrackURI     string    `json:"uri" gorm:"column:track_uri"`
	Explicit     bool      `json:"explicit" gorm:"column:explicit"`
	SuggestionID string    `json:"suggestion_id" gorm:"column:suggestion_id"`
	AddedAt      time.Time `json:"added_at" gorm:"column:added_at"`
}

type PromptResponse struct {
	ID     int    `json:"id"`
	Prompt string `json:"prompt"`
}

type StatsResponse struct {
	TotalGeneratedSeconds int    `json:"totalGeneratedSeconds"`
	TimeSavings           int    `json:"timeSavings"`
	CostSavings           string `json:"costSavings"`
}
