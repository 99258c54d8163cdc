package app

import (
	"github.com/engineq/engineq/models"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
)

func setSession(c echo.Context, keyValues map[string]any) error {
	session := c.Get("session").(*sessions.Session)
	for k, v := range keyValues {
		session.Values[k] = v
	}

	return session.Save(c.Request(), c.Response())
}

func getSessionValue(c echo.Context, key string) (string, error) {
	session := c.Get("session").(*sessions.Session)
	v, ok := session.Values[key]
	if !ok {
		return "", models.ErrInvalidRequest
	}

	s, ok := v.(string)
	if !ok {
		return "", models.ErrInvalidRequest
	}

	return s, nil
}

func clearSession(c echo.Context) error {
	session := c.Get("session").(*sessions.Session)
	session.Options.MaxAge = -1
	return session.Save(c.Request(), c.Response())
}
