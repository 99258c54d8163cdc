package app

import (
	"errors"
	"net/http"

	"github.com/engineq/engineq/models"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func (app *Application) CreateSessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, err := app.CookieStore.Get(c.Request(), "session")
		if err != nil {
			c.Logger().Error(err)
			return err
		}

		c.Set("session", session)

		return next(c)
	}
}

// RequireLicense resolves the session's license key to a subscriber and
// stores it on the request context. Requests without a valid license never
// reach the handlers behind it.
func (app *Application) RequireLicense(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		license, err := getSessionValue(c, "license")
		if err != nil || license == "" {
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}

		subscriber, err := app.resolveSubscriber(c.Request().Context(), license)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
		if err != nil {
			c.Logger().Error(err)
			return err
		}

		c.Set("subscriber", subscriber)

		return next(c)
	}
}

func currentSubscriber(c echo.Context) *models.SubscriberDBModel {
	return c.Get("subscriber").(*models.SubscriberDBModel)
}
