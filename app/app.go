package app

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/engineq/engineq/models"
	"github.com/engineq/engineq/store"
	"github.com/gorilla/sessions"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Application struct {
	CookieStore *sessions.CookieStore

	SpotifyClientID     string
	SpotifyClientSecret string

	MinioClient     *minio.Client
	MinioBucketName string

	SubscriberStore store.SubscriberStore
	PlaylistStore   store.PlaylistStore
	TrackStore      store.TrackStore
	SuggestionStore store.SuggestionStore
	PlaybackStore   store.PlaybackStore
	PromptStore     store.PromptStore

	LicenseCache store.LicenseCache

	Publisher JobPublisher

	// DefaultPrompt parameterizes generation jobs for subscribers who have
	// not configured any prompts of their own.
	DefaultPrompt string
}

func NewApplication() (*Application, error) {
	db := createSQLDB()

	rc := createRedisClient()

	// Object storage is optional: tracks whose URI is already an absolute
	// URL never need presigning.
	var minioClient *minio.Client
	if minioServerAddr := os.Getenv("MINIO_SERVER_ADDR"); minioServerAddr != "" {
		client, err := minio.New(minioServerAddr, &minio.Options{
			Creds: credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
		})
		if err != nil {
			return nil, err
		}

		minioClient = client
	}

	application := &Application{
		CookieStore: sessions.NewCookieStore([]byte(os.Getenv("SECRET"))),

		SpotifyClientID:     os.Getenv("CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("CLIENT_SECRET"),

		MinioClient:     minioClient,
		MinioBucketName: os.Getenv("MINIO_BUCKET_NAME"),

		SubscriberStore: store.NewSubscriberStore(db),
		PlaylistStore:   store.NewPlaylistStore(db),
		TrackStore:      store.NewTrackStore(db),
		SuggestionStore: store.NewSuggestionStore(db),
		PlaybackStore:   store.NewPlaybackStore(db),
		PromptStore:     store.NewPromptStore(db),

		LicenseCache: store.NewLicenseCache(rc, "subscribers", 15*time.Minute),

		Publisher: NewGenerationPublisher(),

		DefaultPrompt: os.Getenv("DEFAULT_PROMPT"),
	}

	if err := application.createTables(); err != nil {
		return nil, err
	}

	return application, nil
}

func (app *Application) createTables() error {
	for _, createTable := range []func() error{
		app.SubscriberStore.CreateTable,
		app.PlaylistStore.CreateTable,
		app.TrackStore.CreateTable,
		app.SuggestionStore.CreateTable,
		app.PlaybackStore.CreateTable,
		app.PromptStore.CreateTable,
	} {
		if err := createTable(); err != nil {
			return err
		}
	}

	return nil
}

// resolveSubscriber maps a license key to its subscriber, going through the
// redis cache first. Cache failures are logged and fall through to postgres.
func (app *Application) resolveSubscriber(ctx context.Context, license string) (*models.SubscriberDBModel, error) {
	if app.LicenseCache != nil {
		cached, err := app.LicenseCache.Get(ctx, license)
		if err != nil {
			log.Println("license cache read: ", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	subscriber, err := app.SubscriberStore.GetOne("license = ?", license)
	if err != nil {
		return nil, err
	}

	if app.LicenseCache != nil {
		if err := app.LicenseCache.Save(ctx, license, subscriber); err != nil {
			log.Println("license cache write: ", err)
		}
	}

	return subscriber, nil
}
