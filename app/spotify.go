package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/engineq/engineq/models"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

// spotifyClient builds a catalog-read client through the client-credentials
// flow. No per-user tokens are involved; the catalog belongs to the process,
// not to a subscriber.
func (app *Application) spotifyClient(ctx context.Context) (*spotify.Client, error) {
	if app.SpotifyClientID == "" || app.SpotifyClientSecret == "" {
		return nil, models.ErrSpotifyNotConfigured
	}

	config := &clientcredentials.Config{
		ClientID:     app.SpotifyClientID,
		ClientSecret: app.SpotifyClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	token, err := config.Token(ctx)
	if err != nil {
		return nil, err
	}

	return spotify.New(spotifyauth.New().Client(ctx, token)), nil
}

func (app *Application) importSpotifyPlaylist(ctx context.Context, playlistID string) (int, error) {
	client, err := app.spotifyClient(ctx)
	if err != nil {
		return 0, err
	}

	playlist, err := client.GetPlaylist(ctx, spotify.ID(playlistID))
	if err != nil {
		return 0, err
	}

	tracks := []models.TrackDBModel{}
	for _, item := range playlist.Tracks.Tracks {
		track := item.Track

		artists := []string{}
		for _, artist := range track.SimpleTrack.Artists {
			artists = append(artists, artist.Name)
		}

		image := ""
		if len(track.Album.Images) > 0 {
			image = track.Album.Images[0].URL
		}

		secs := int(track.TimeDuration().Seconds())

		tracks = append(tracks, models.TrackDBModel{
			Title:        track.Name,
			Artist:       strings.Join(artists, ", "),
			Duration:     fmt.Sprintf("%d:%02d", secs/60, secs%60),
			DurationSecs: secs,
			Explicit:     track.Explicit,
			Image:        image,
			TrackURI:     track.ExternalURLs["spotify"],
		})
	}

	if len(tracks) == 0 {
		return 0, nil
	}

	if err := app.TrackStore.CreateInBatches(tracks); err != nil {
		return 0, err
	}

	return len(tracks), nil
}
