package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Flarenzy/supernet/internal/auth"
	"github.com/Flarenzy/supernet/internal/domain"
	apihttp "github.com/Flarenzy/supernet/internal/http"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxNetworks  int

	AuthEnabled bool
	Issuer      string
	Audience    string
	JWKSURL     string

	LogLevel  slog.Level
	LogFormat string
}

// LoadConfig reads the process configuration from the environment. Unset
// variables take their defaults; malformed ones are an error.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:         os.Getenv("PORT"),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		MaxNetworks:  domain.DefaultMaxNetworks,
		Issuer:       os.Getenv("AUTH_ISSUER"),
		Audience:     os.Getenv("AUTH_AUDIENCE"),
		JWKSURL:      os.Getenv("AUTH_JWKS_URL"),
		LogLevel:     slog.LevelInfo,
		LogFormat:    "text",
	}
	if cfg.Port == "" {
		cfg.Port = "4040"
	}

	var err error
	if cfg.ReadTimeout, err = durationEnv("READ_TIMEOUT", cfg.ReadTimeout); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = durationEnv("WRITE_TIMEOUT", cfg.WriteTimeout); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("AGGREGATE_MAX_NETWORKS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("AGGREGATE_MAX_NETWORKS must be a positive integer, got %q", v)
		}
		cfg.MaxNetworks = n
	}

	if v := os.Getenv("AUTH_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("AUTH_ENABLED: %w", err)
		}
		cfg.AuthEnabled = enabled
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		v = strings.ToLower(v)
		if v != "text" && v != "json" {
			return Config{}, fmt.Errorf("LOG_FORMAT must be text or json, got %q", v)
		}
		cfg.LogFormat = v
	}

	return cfg, nil
}

// LoadEnvFiles loads KEY=VALUE files into the process environment. Variables
// that are already set win. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
	}
	return nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func newLogger(w io.Writer, cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func newAuthenticator(ctx context.Context, cfg Config) (auth.Authenticator, error) {
	return auth.NewKeycloakAuthenticator(ctx, auth.Config{
		Enabled:  cfg.AuthEnabled,
		Issuer:   cfg.Issuer,
		Audience: cfg.Audience,
		JWKSURL:  cfg.JWKSURL,
	})
}

func Run(ctx context.Context, cfg Config) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on port %s: %w", cfg.Port, err)
	}
	return Serve(ctx, cfg, listener)
}

// Serve runs the API on listener until ctx is cancelled, then shuts the
// server down gracefully. The listener is closed on return.
func Serve(ctx context.Context, cfg Config, listener net.Listener) error {
	logger := newLogger(os.Stderr, cfg)
	slog.SetDefault(logger)

	authenticator, err := newAuthenticator(ctx, cfg)
	if err != nil {
		_ = listener.Close()
		return fmt.Errorf("init authenticator: %w", err)
	}

	var health apihttp.HealthChecker
	if checker, ok := authenticator.(auth.ReadinessChecker); ok {
		health = checker
	}

	service := domain.NewLoggingAggregationService(logger, domain.NewAggregationService(cfg.MaxNetworks))
	api := apihttp.NewAPI(logger, health, service, authenticator)

	server := &http.Server{
		Handler:      api.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving api", "addr", listener.Addr().String(), "auth", cfg.AuthEnabled)
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
