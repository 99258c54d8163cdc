package models

import "errors"

var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrInvalidLicense       = errors.New("license key not found")
	ErrSubscriberNotExists  = errors.New("subscriber not exists")
	ErrSuggestionNotExists  = errors.New("suggestion not exists")
	ErrMissingSuggestionID  = errors.New("suggestion id must be provided as a query param")
	ErrSpotifyNotConfigured = errors.New("spotify credentials are not configured")
)
