package app

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/engineq/engineq/models"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

func (app *Application) Router() *echo.Echo {
	e := echo.New()

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(app.CreateSessionMiddleware)

	e.POST("/signin", app.HandleSignin)

	api := e.Group("/api", app.RequireLicense)
	api.GET("/tracklist", app.HandleTracklist)
	api.GET("/update-last-played", app.HandleUpdateLastPlayed)
	api.GET("/prompts", app.HandleGetPrompts)
	api.PUT("/prompts", app.HandleUpdatePrompts)
	api.GET("/stats", app.HandleStats)
	api.POST("/catalog/import", app.HandleCatalogImport)
	api.POST("/signout", app.HandleSignout)

	return e
}

func (app *Application) HandleSignin(c echo.Context) error {
	var req models.SigninRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, models.ErrInvalidRequest)
	}

	if req.Key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, models.ErrInvalidLicense)
	}

	subscriber, err := app.SubscriberStore.GetOne("license = ?", req.Key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusBadRequest, models.ErrInvalidLicense)
	}
	if err != nil {
		c.Logger().Error(err)
		return err
	}

	if err := setSession(c, map[string]any{"license": subscriber.License, "authenticated": true}); err != nil {
		c.Logger().Error(err)
		return err
	}

	return c.NoContent(http.StatusOK)
}

func (app *Application) HandleSignout(c echo.Context) error {
	subscriber := currentSubscriber(c)

	if app.LicenseCache != nil {
		if err := app.LicenseCache.Invalidate(c.Request().Context(), subscriber.License); err != nil {
			c.Logger().Error(err)
		}
	}

	if err := clearSession(c); err != nil {
		c.Logger().Error(err)
		return err
	}

	return c.NoContent(http.StatusOK)
}

// HandleTracklist returns the subscriber's unconsumed suggestions for today,
// oldest first. As a side effect it schedules a generation job when the pool
// is running low; a broker failure never fails the read.
func (app *Application) HandleTracklist(c echo.Context) error {
	subscriber := currentSubscriber(c)

	items, playlist, cursor, err := app.UnplayedQueue(subscriber.SubscriberID)
	if err != nil {
		c.Logger().Error(err)
		return err
	}

	// No playlist yet means generation has not started; the dashboard shows
	// a waiting state and there is nothing to attach a job to.
	if playlist != nil {
		if _, err := app.scheduleGenerationIfLow(c.Request().Context(), subscriber, playlist, cursor); err != nil {
			c.Logger().Error(err)
		}
	}

	return c.JSON(http.StatusOK, items)
}

// HandleUpdateLastPlayed advances the subscriber's playback ledger to the
// given suggestion.
func (app *Application) HandleUpdateLastPlayed(c echo.Context) error {
	subscriber := currentSubscriber(c)

	suggestionID := c.QueryParam("sid")
	if suggestionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, models.ErrMissingSuggestionID)
	}

	if _, err := app.SuggestionStore.GetOne("suggestion_id = ?", suggestionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, models.ErrSuggestionNotExists)
		}

		c.Logger().Error(err)
		return err
	}

	if err := app.PlaybackStore.Upsert(subscriber.SubscriberID, suggestionID); err != nil {
		c.Logger().Error(err)
		return err
	}

	// Best-effort companion marker; the ledger row alone decides what counts
	// as unplayed.
	if err := app.SuggestionStore.Update(map[string]any{"consumed": true}, "suggestion_id = ?", suggestionID); err != nil {
		c.Logger().Error(err)
	}

	return c.NoContent(http.StatusOK)
}

func (app *Application) HandleGetPrompts(c echo.Context) error {
	subscriber := currentSubscriber(c)

	prompts, err := app.PromptStore.GetMany("subscriber_id = ?", subscriber.SubscriberID)
	if err != nil {
		c.Logger().Error(err)
		return err
	}

	return c.JSON(http.StatusOK, promptResponses(prompts))
}

// HandleUpdatePrompts upserts a batch of prompts: a negative id inserts a new
// prompt, a non-negative id updates the subscriber's existing one.
func (app *Application) HandleUpdatePrompts(c echo.Context) error {
	subscriber := currentSubscriber(c)

	var req models.UpdatePromptsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, models.ErrInvalidRequest)
	}

	for _, p := range req.Prompts {
		if strings.TrimSpace(p.Prompt) == "" {
			return echo.NewHTTPError(http.StatusBadRequest, models.ErrInvalidRequest)
		}
	}

	for _, p := range req.Prompts {
		if p.ID < 0 {
			if err := app.PromptStore.Create(&models.PromptDBModel{
				SubscriberID: subscriber.SubscriberID,
				Prompt:       p.Prompt,
			}); err != nil {
				c.Logger().Error(err)
				return err
			}

			continue
		}

		if err := app.PromptStore.Update(
			map[string]any{"prompt": p.Prompt},
			"prompt_id = ? AND subscriber_id = ?", p.ID, subscriber.SubscriberID,
		); err != nil {
			c.Logger().Error(err)
			return err
		}
	}

	prompts, err := app.PromptStore.GetMany("subscriber_id = ?", subscriber.SubscriberID)
	if err != nil {
		c.Logger().Error(err)
		return err
	}

	return c.JSON(http.StatusOK, promptResponses(prompts))
}

func (app *Application) HandleStats(c echo.Context) error {
	subscriber := currentSubscriber(c)

	secondsSum, countSum, err := app.SuggestionStore.GeneratedTotals(subscriber.SubscriberID)
	if err != nil {
		c.Logger().Error(err)
		return err
	}

	return c.JSON(http.StatusOK, models.StatsResponse{
		TotalGeneratedSeconds: int(secondsSum),
		// 63 seconds to research a single song on average.
		TimeSavings: int(countSum) * 63,
		// One second of DJ time at $100/hour is about 2.8 cents.
		CostSavings: fmt.Sprintf("$%.2f", float64(secondsSum)*0.028),
	})
}

// HandleCatalogImport copies a Spotify playlist's tracks into the local
// catalog so the generation worker has material to pair suggestions from.
func (app *Application) HandleCatalogImport(c echo.Context) error {
	playlistID := c.QueryParam("playlist")
	if playlistID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, models.ErrInvalidRequest)
	}

	imported, err := app.importSpotifyPlaylist(c.Request().Context(), playlistID)
	if errors.Is(err, models.ErrSpotifyNotConfigured) {
		return echo.NewHTTPError(http.StatusBadRequest, models.ErrSpotifyNotConfigured)
	}
	if err != nil {
		c.Logger().Error(err)
		return err
	}

	return c.JSON(http.StatusOK, map[string]int{"imported": imported})
}

func promptResponses(prompts []models.PromptDBModel) []models.PromptResponse {
	responses := []models.PromptResponse{}
	for _, p := range prompts {
		responses = append(responses, models.PromptResponse{
			ID:     p.PromptID,
			Prompt: p.Prompt,
		})
	}

	return responses
}
