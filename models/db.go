package models

import "time"

type SubscriberDBModel struct {
	SubscriberID string `gorm:"column:subscriber_id;primaryKey"`
	License      string `gorm:"column:license;uniqueIndex"`
	Name         string `gorm:"column:name"`
}

type PlaylistDBModel struct {
	PlaylistID   string `gorm:"column:playlist_id;primaryKey"`
	SubscriberID string `gorm:"column:subscriber_id;index:idx_subscriber_day,unique"`
	Day          string `gorm:"column:day;index:idx_subscriber_day,unique"`
	Name         string `gorm:"column:name"`
}

type TrackDBModel struct {
	TrackID      uint   `gorm:"column:track_id;primaryKey;autoIncrement"`
	Title        string `gorm:"column:title"`
	Artist       string `gorm:"column:artist"`
	Duration     string `gorm:"column:duration"`
	DurationSecs int    `gorm:"column:duration_secs"`
	Explicit     bool   `gorm:"column:explicit"`
	Image        string `gorm:"column:image"`
	TrackURI     string `gorm:"column:track_uri"`
}

type SuggestionDBModel struct {
	SuggestionID string    `gorm:"column:suggestion_id;primaryKey"`
	PlaylistID   string    `gorm:"column:playlist_id;index"`
	TrackID      uint      `gorm:"column:track_id"`
	AddedAt      time.Time `gorm:"column:added_at;index"`
	Consumed     bool      `gorm:"column:consumed"`
}

type PlaybackDBModel struct {
	SubscriberID string `gorm:"column:subscriber_id;primaryKey"`
	SuggestionID string `gorm:"column:suggestion_id"`
}

type PromptDBModel struct {
	PromptID     int    `gorm:"column:prompt_id;primaryKey;autoIncrement"`
	SubscriberID string `gorm:"column:subscriber_id;index"`
	Prompt       string `gorm:"column:prompt"`
}
