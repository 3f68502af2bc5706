package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/ai-travel-planner/internal/agent"
	"github.com/iliyamo/ai-travel-planner/internal/auth"
	"github.com/iliyamo/ai-travel-planner/internal/config"
	"github.com/iliyamo/ai-travel-planner/internal/database"
	"github.com/iliyamo/ai-travel-planner/internal/handler"
	"github.com/iliyamo/ai-travel-planner/internal/progress"
	"github.com/iliyamo/ai-travel-planner/internal/provider/airbnb"
	"github.com/iliyamo/ai-travel-planner/internal/provider/flights"
	"github.com/iliyamo/ai-travel-planner/internal/provider/places"
	"github.com/iliyamo/ai-travel-planner/internal/provider/social"
	"github.com/iliyamo/ai-travel-planner/internal/queue"
	"github.com/iliyamo/ai-travel-planner/internal/repository"
	"github.com/iliyamo/ai-travel-planner/internal/router"
	"github.com/iliyamo/ai-travel-planner/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; using process environment")
	}
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache off, rate limits are per process")
	} else {
		defer rdb.Close()
	}

	// Domain events go to RabbitMQ when a broker is configured, otherwise
	// they are delivered in process to the same log sink.
	brokerURL := queue.BrokerURL()
	events, err := service.NewPublisher(brokerURL)
	if err != nil {
		log.Fatalf("events: %v", err)
	}
	if brokerURL != "" {
		go queue.StartConsumer(brokerURL)
	}

	// Providers.  Missing keys leave each one on its fallback path.
	photos := places.NewClient(cfg.GoogleMapKey, "")
	search := social.NewSearch(cfg.GoogleMapKey, cfg.GoogleSearchEngine, "")
	flightClient := flights.NewClient(flights.Config{
		ClientID:     cfg.AmadeusClientID,
		ClientSecret: cfg.AmadeusClientSecret,
		BaseURL:      cfg.AmadeusBaseURL,
	})
	tools := agent.NewMCPSource(cfg.MCPServers, []string{"GOOGLE_MAPS_API_KEY=" + cfg.GoogleMapKey}, cfg.MCPTimeout)
	runner := agent.NewOpenAIRunner(cfg.LLMKey, cfg.LLMBaseURL, cfg.LLMModel, tools, agent.SearchSource{Search: search})

	registry := progress.NewRegistry()
	planner := service.NewPlanner(service.Deps{
		Runner:   runner,
		Flights:  flightClient,
		Photos:   photos,
		Scraper:  airbnb.NewScraper(),
		Progress: registry,
		Events:   events,
		Pacing:   cfg.ProgressPacing,
	})

	verifier := auth.NewVerifier(cfg.GoogleClientID, auth.GoogleJWKSURL)
	defer verifier.Close()
	oauth := auth.NewOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	router.Register(e, router.Handlers{
		Chat:     handler.NewChatHandler(planner),
		Progress: handler.NewProgressHandler(registry),
		Social:   handler.NewSocialHandler(social.NewService(social.NewYouTube(cfg.GoogleMapKey, ""), search)),
		Plans:    handler.NewPlansHandler(repository.NewPlanRepo(db), events),
		Auth:     handler.NewAuthHandler(oauth, verifier, cfg.StateSecret, cfg.FrontendURL),
		Verifier: verifier,
		Redis:    rdb,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	// Progress streams never end on their own; the deadline cuts them off.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if c, ok := events.(interface{ Close() error }); ok {
		_ = c.Close()
	}
}
