package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizhub/internal/app"
	"quizhub/internal/auth"
	"quizhub/internal/config"
	"quizhub/internal/infra/memory"
	pgstore "quizhub/internal/infra/postgres"
	rediscache "quizhub/internal/infra/redis"
	transport "quizhub/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quizhub server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	// Storage: postgres when configured, in-memory otherwise.
	var store app.Store
	var loader memory.AnswerKeyLoader
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		pg := pgstore.NewStore(pool)
		store, loader = pg, pg
	} else {
		mem := memory.NewStore()
		store, loader = mem, mem
	}

	// Answer-key cache: redis when configured, in-memory otherwise.
	quizTTL := config.Duration(cfg.Quiz.TTL, 10*time.Minute)
	var answerKeys app.AnswerKeyRepository
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		answerKeys = rediscache.NewAnswerKeyCache(redisClient, loader, quizTTL)
	} else {
		answerKeys = memory.NewAnswerKeyCache(loader, quizTTL)
	}

	settleDelay := config.Duration(cfg.Leaderboard.SettleDelay, 500*time.Millisecond)
	broadcaster := app.NewBroadcaster(store, settleDelay)
	quizService := app.NewQuizService(store, answerKeys, broadcaster)

	secret := cfg.Auth.Secret
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	tokenTTL := config.Duration(cfg.Auth.TokenTTL, 7*24*time.Hour)
	authService := auth.NewService(store, secret, tokenTTL)

	api := transport.NewAPI(quizService, authService)
	wsHandler := transport.NewWSHandler(broadcaster)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	api.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quizhub on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
