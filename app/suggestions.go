package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/engineq/engineq/models"
	"gorm.io/gorm"
)

// LowWatermark is the remaining-suggestion count at or below which a
// generation job is scheduled.
const LowWatermark = 10

func today() string {
	return time.Now().Format("2006-01-02")
}

// TodayPlaylist returns the subscriber's playlist for the current day, or nil
// when the generation worker has not created one yet.
func (app *Application) TodayPlaylist(subscriberID string) (*models.PlaylistDBModel, error) {
	playlist, err := app.PlaylistStore.GetOne("subscriber_id = ? AND day = ?", subscriberID, today())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return playlist, nil
}

// cursorFor resolves the subscriber's replay cursor: the added_at of the
// suggestion the playback ledger points at. The cursor only applies while the
// ledger points into the given playlist; a ledger left over from another day
// means the whole playlist is unplayed.
func (app *Application) cursorFor(subscriberID string, playlist *models.PlaylistDBModel) (*time.Time, error) {
	playback, err := app.PlaybackStore.GetOne("subscriber_id = ?", subscriberID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	suggestion, err := app.SuggestionStore.GetOne("suggestion_id = ?", playback.SuggestionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if suggestion.PlaylistID != playlist.PlaylistID {
		return nil, nil
	}

	return &suggestion.AddedAt, nil
}

// UnplayedQueue computes the ordered set of suggestions the subscriber has
// not consumed yet. A nil playlist in the result means no playlist exists for
// today and the empty queue is a "still generating" state, not an error.
func (app *Application) UnplayedQueue(subscriberID string) ([]models.QueueItem, *models.PlaylistDBModel, *time.Time, error) {
	playlist, err := app.TodayPlaylist(subscriberID)
	if err != nil {
		return nil, nil, nil, err
	}

	if playlist == nil {
		return []models.QueueItem{}, nil, nil, nil
	}

	cursor, err := app.cursorFor(subscriberID, playlist)
	if err != nil {
		return nil, nil, nil, err
	}

	items, err := app.SuggestionStore.ListUnplayed(playlist.PlaylistID, cursor)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := app.presignTrackURIs(items); err != nil {
		return nil, nil, nil, err
	}

	return items, playlist, cursor, nil
}

// scheduleGenerationIfLow publishes one generation job when the remaining
// unconsumed count has dropped to the low watermark. Duplicate jobs from
// concurrent low-count requests are tolerated downstream; the worker is
// expected to cope with over-generation.
func (app *Application) scheduleGenerationIfLow(ctx context.Context, subscriber *models.SubscriberDBModel, playlist *models.PlaylistDBModel, cursor *time.Time) (bool, error) {
	remaining, err := app.SuggestionStore.CountUnplayed(playlist.PlaylistID, cursor)
	if err != nil {
		return false, err
	}

	if remaining > LowWatermark {
		return false, nil
	}

	job := models.GenerationJob{
		License: subscriber.License,
		Prompt:  app.promptFor(subscriber.SubscriberID),
	}

	if err := app.Publisher.Publish(ctx, job); err != nil {
		return false, err
	}

	return true, nil
}

// promptFor picks the subscriber's first configured prompt, falling back to
// the process-wide default.
func (app *Application) promptFor(subscriberID string) string {
	prompts, err := app.PromptStore.GetMany("subscriber_id = ?", subscriberID)
	if err != nil {
		log.Println("reading prompts: ", err)
		return app.DefaultPrompt
	}

	if len(prompts) == 0 {
		return app.DefaultPrompt
	}

	return prompts[0].Prompt
}

// presignTrackURIs swaps object-store keys for presigned GET URLs. Tracks
// whose URI is already absolute are served as-is.
func (app *Application) presignTrackURIs(items []models.QueueItem) error {
	if app.MinioClient == nil {
		return nil
	}

	for i, item := range items {
		if strings.Contains(item.TrackURI, "://") {
			continue
		}

		url, err := app.MinioClient.PresignedGetObject(context.Background(), app.MinioBucketName, item.TrackURI, 7*24*time.Hour, nil)
		if err != nil {
			return err
		}

		items[i].TrackURI = url.String()
	}

	return nil
}
