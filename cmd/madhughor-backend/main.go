package main

import (
	"flag"
	"fmt"
	"net/http"

	"madhughor-backend/internal/config"
	"madhughor-backend/internal/infrastructure/identity"
	"madhughor-backend/internal/infrastructure/repo"
	"madhughor-backend/internal/server"
	"madhughor-backend/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Pre-set environment always wins over files.
	for _, f := range []string{".env", ".env.local"} {
		_ = godotenv.Load(f)
	}
	envDefaults := config.EnvDefaults()

	env := flag.String("env", envDefaults.Env, "")
	port := flag.Int("port", envDefaults.Port, "")
	dbURL := flag.String("db", envDefaults.DatabaseURL, "")
	jwtSecret := flag.String("jwt-secret", envDefaults.JWTSecret, "")
	identityURL := flag.String("identity-url", envDefaults.IdentityURL, "")
	identityKey := flag.String("identity-key", envDefaults.IdentityKey, "")
	logJSON := flag.Bool("log-json", envDefaults.LogJSON, "")

	flag.Parse()

	cfg := config.Config{
		Env:         *env,
		Port:        *port,
		DatabaseURL: *dbURL,
		JWTSecret:   *jwtSecret,
		IdentityURL: *identityURL,
		IdentityKey: *identityKey,
		LogJSON:     *logJSON,
	}

	log := logrus.New()
	if cfg.LogJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	svcs, err := buildServices(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("service init failed")
	}

	srv := server.New(cfg, svcs, log)
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

func buildServices(cfg config.Config, log *logrus.Logger) (server.Services, error) {
	idp := &identity.Client{BaseURL: cfg.IdentityURL, APIKey: cfg.IdentityKey}

	if cfg.DatabaseURL != "" {
		pg, err := repo.NewPostgresRepo(cfg.DatabaseURL)
		if err != nil {
			return server.Services{}, err
		}
		carts := &usecase.CartService{Repo: pg, Log: log}
		return server.Services{
			Intake: &usecase.OrderIntakeService{Orders: pg, Products: pg, Limiter: pg, Carts: carts, Log: log},
			Carts:  carts,
			Events: &usecase.EventService{Repo: pg, Log: log},
			Admin:  &usecase.AdminService{Orders: pg, Carts: pg, Districts: pg, Settings: pg},
			Auth:   &usecase.AuthService{Repo: pg, Identity: idp, JWTSecret: cfg.JWTSecret},
		}, nil
	}

	log.Warn("no database configured, falling back to in-memory store")
	orders := repo.NewMemoryOrderRepo()
	products := repo.NewMemoryProductRepo()
	cartRepo := repo.NewMemoryCartRepo()
	carts := &usecase.CartService{Repo: cartRepo, Log: log}
	return server.Services{
		Intake: &usecase.OrderIntakeService{
			Orders:   orders,
			Products: products,
			Limiter:  repo.NewMemoryRateLimiter(),
			Carts:    carts,
			Log:      log,
		},
		Carts:  carts,
		Events: &usecase.EventService{Repo: repo.NewMemoryEventRepo(), Log: log},
		Admin: &usecase.AdminService{
			Orders:    orders,
			Carts:     cartRepo,
			Districts: repo.NewMemoryDistrictRepo(),
			Settings:  repo.NewMemorySettingsRepo(),
		},
		Auth: &usecase.AuthService{Repo: repo.NewMemoryUserRepo(), Identity: idp, JWTSecret: cfg.JWTSecret},
	}, nil
}
