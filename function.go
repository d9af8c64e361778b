package function

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"eventease/backend/internal/budget"
	"eventease/backend/internal/config"
	"eventease/backend/internal/cron"
	"eventease/backend/internal/notify"
	"eventease/backend/internal/repository"
	"eventease/backend/internal/service"
	"eventease/backend/internal/source"
	"eventease/backend/internal/transport"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	_ "eventease/backend/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

// refreshRunner exposes the cron passes to the admin refresh endpoint.
type refreshRunner struct {
	ingest *cron.Ingestor
	places *cron.PlacesMaintenance
}

func (r refreshRunner) RunIngest(ctx context.Context) (cron.IngestSummary, error) {
	return r.ingest.RunPass(ctx)
}

func (r refreshRunner) RunPlaces(ctx context.Context) (cron.PlacesSummary, error) {
	return r.places.RunPass(ctx)
}

// @title EventEase Discovery API
// @version 1.0
// @description Aggregated event discovery over Firestore, SeatGeek and Google Events, with a tiered places cache.

// @host 127.0.0.1:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func init() {
	ctx := context.Background()
	cfg := config.Load()

	projectID := cfg.ProjectID
	if projectID == "" {
		projectID = "local-project-id"
	}

	fsClient, err := firestore.NewClientWithDatabase(ctx, projectID, cfg.FirestoreDatabaseID)
	if err != nil {
		log.Fatalf("Failed to create firestore client: %v", err)
	}

	conf := &firebase.Config{ProjectID: projectID}
	app, err := firebase.NewApp(ctx, conf)
	if err != nil {
		log.Fatalf("error initializing firebase app: %v", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		log.Fatalf("error getting auth client: %v", err)
	}
	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		log.Fatalf("error getting messaging client: %v", err)
	}

	eventRepo := repository.NewEventRepository(fsClient)
	discoverRepo := repository.NewDiscoverRepository(fsClient)
	cacheRepo := repository.NewPlacesCacheRepository(fsClient)
	configRepo := repository.NewAppConfigRepository(fsClient)

	seatgeek := source.NewSeatGeekClient(cfg.SeatGeekClientID)
	serpapi := source.NewSerpAPIClient(cfg.SerpAPIKey)
	places := source.NewGooglePlacesClient(cfg.GoogleMapsAPIKey)

	notifier := notify.NewFCMNotifier(messagingClient, fsClient)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	discoverSvc := service.NewDiscoverService(discoverRepo, []source.EventSource{seatgeek, serpapi}, rng)
	eventSvc := service.NewEventService(eventRepo, notifier)
	communitySvc := service.NewCommunityService(eventRepo, rng)
	placesSvc := service.NewPlacesService(cacheRepo, places, time.Now)
	uiSvc := service.NewUIConfigService(configRepo, time.Now)

	tracker := budget.New(cfg.SerpAPIMonthlyBudget, nil)
	ingestor := cron.NewIngestor(serpapi, discoverRepo, tracker)
	maintenance := cron.NewPlacesMaintenance(discoverRepo, cacheRepo, places)

	kickOff := !cfg.IsProduction()
	cron.NewRunner(ingestor, 6, 18).Start(ctx, kickOff)
	cron.NewRunner(maintenance, 3).Start(ctx, kickOff)

	verifier := transport.NewFirebaseVerifier(authClient)
	router := transport.NewRouter(discoverSvc, eventSvc, communitySvc, placesSvc, uiSvc,
		refreshRunner{ingest: ingestor, places: maintenance}, verifier)

	functions.HTTP("EventDiscoveryFunction", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/swagger/") {
			httpSwagger.Handler(httpSwagger.DeepLinking(false))(w, r)
			return
		}

		handler := transport.WithCompression(router)
		handler = transport.WithSecurityHeaders(handler, cfg.IsProduction())
		handler = transport.WithCORS(handler, cfg.CORSAllowedOrigin)

		handler.ServeHTTP(w, r)
	})
}
