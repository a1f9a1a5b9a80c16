package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/AnshRaj112/decision-journal-backend/internal/config"
	"github.com/AnshRaj112/decision-journal-backend/internal/database"
	"github.com/AnshRaj112/decision-journal-backend/internal/handlers"
	"github.com/AnshRaj112/decision-journal-backend/internal/logger"
	"github.com/AnshRaj112/decision-journal-backend/internal/middleware"
	"github.com/AnshRaj112/decision-journal-backend/internal/routes"
	"github.com/AnshRaj112/decision-journal-backend/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	if err := cfg.Validate(); err != nil {
		zlog.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, zlog *zap.Logger) error {
	zlog.Info("connecting to PostgreSQL")
	db, err := database.ConnectPostgres(ctx, cfg.PostgresURI)
	if err != nil {
		return err
	}
	defer db.Close()

	zlog.Info("connecting to Redis")
	rdb, err := database.ConnectRedis(ctx, cfg.RedisURI)
	if err != nil {
		return err
	}
	defer rdb.Close()

	var mongoDB *mongo.Database
	if cfg.MongoURI != "" {
		zlog.Info("connecting to MongoDB")
		client, mdb, err := database.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return err
		}
		defer database.DisconnectMongo(client)
		mongoDB = mdb
	} else {
		zlog.Warn("MONGODB_URI not set, diary, notes, books and planner routes disabled")
	}

	cache := services.NewCacheService(rdb)
	users := services.NewUserService(db, cache, cfg.AdminEmails, zlog)
	sessions := services.NewSessionStore(rdb, services.SessionDuration)
	tokens := services.NewTokenIssuer(cfg.JWTSecret, services.SessionDuration)
	auth := services.NewAuthService(users, sessions, tokens, zlog)

	repo, err := decisionRepository(cfg, db)
	if err != nil {
		return err
	}
	store := services.NewDecisionStore(repo, services.NewReviewPolicy(cfg.ReviewGrace()), zlog)
	zlog.Info("decision store ready",
		zap.String("backend", cfg.DecisionBackend),
		zap.Duration("review_grace", store.Policy().Grace),
	)

	h := routes.Handlers{
		Auth:      handlers.NewAuthHandler(auth, zlog),
		Decisions: handlers.NewDecisionHandler(store, zlog),
	}
	h.Users = handlers.NewUserHandler(users, auth, store, zlog)
	if mongoDB != nil {
		diary := services.NewDiaryService(mongoDB, zlog)
		notes := services.NewNoteService(mongoDB, zlog)
		books := services.NewBookService(mongoDB, zlog)
		planner := services.NewPlannerService(mongoDB, zlog)

		for name, ix := range map[string]interface{ EnsureIndexes(context.Context) error }{
			"diary": diary, "notes": notes, "books": books, "planner": planner,
		} {
			if err := ix.EnsureIndexes(ctx); err != nil {
				zlog.Warn("ensure indexes", zap.String("collection", name), zap.Error(err))
			}
		}

		h.Diary = handlers.NewDiaryHandler(diary, zlog)
		h.Notes = handlers.NewNoteHandler(notes, zlog)
		h.Books = handlers.NewBookHandler(books, zlog)
		h.Planner = handlers.NewPlannerHandler(planner, zlog)
		h.Users.
			PurgeWith("diary", diary).
			PurgeWith("notes", notes).
			PurgeWith("books", books).
			PurgeWith("planner", planner)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(zlog))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit
	// Non-production: Redis-based rate limit only
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		zlog.Info("production security enabled", zap.String("allowed_host", cfg.AllowedHost))
	} else {
		r.Use(middleware.NewRedisRateLimiter(rdb, zlog).Middleware)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	routes.SetupRoutes(r, h, auth)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("decision journal backend listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func decisionRepository(cfg *config.Config, db *sql.DB) (services.DecisionRepository, error) {
	switch cfg.DecisionBackend {
	case config.BackendMemory:
		return services.NewMemoryDecisionRepository(), nil
	case config.BackendRemote:
		return services.NewRemoteDecisionRepository(cfg.RemoteAPIURL, &http.Client{Timeout: cfg.RemoteAPITimeout}), nil
	case config.BackendPostgres:
		return services.NewPostgresDecisionRepository(db), nil
	default:
		return nil, errors.New("unknown decision backend " + cfg.DecisionBackend)
	}
}
