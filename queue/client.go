package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/engineq/engineq/models"
)

// Client talks to the dashboard API. It carries the session cookie from
// Signin onwards and satisfies both BatchFetcher and PlaybackRecorder.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)

	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Jar:     jar,
			Timeout: 15 * time.Second,
		},
	}
}

func (cl *Client) Signin(ctx context.Context, licenseKey string) error {
	form := url.Values{"key": {licenseKey}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cl.BaseURL+"/signin", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := cl.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("signin: unexpected status %s", resp.Status)
	}

	return nil
}

func (cl *Client) NextBatch(ctx context.Context, currentSuggestionID string) ([]models.QueueItem, error) {
	endpoint := cl.BaseURL + "/api/tracklist"
	if currentSuggestionID != "" {
		endpoint += "?sid=" + url.QueryEscape(currentSuggestionID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := cl.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tracklist: unexpected status %s", resp.Status)
	}

	items := []models.QueueItem{}
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, err
	}

	return items, nil
}

func (cl *Client) RecordPlayed(ctx context.Context, suggestionID string) error {
	endpoint := cl.BaseURL + "/api/update-last-played?sid=" + url.QueryEscape(suggestionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := cl.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("update-last-played: unexpected status %s", resp.Status)
	}

	return nil
}
