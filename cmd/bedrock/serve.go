package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/eringen/bedrock"
	"github.com/eringen/bedrock/views"
)

func runServe() {
	_ = godotenv.Load()

	cfg, err := configFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	app := bedrock.New(cfg, views.New())
	if err := app.Init(); err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Echo.Start(app.Config.Addr); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Echo.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// configFromEnv builds the site config. Unset variables keep the defaults
// applied by bedrock.New.
func configFromEnv() (bedrock.SiteConfig, error) {
	cfg := bedrock.SiteConfig{
		Name:          os.Getenv("SITE_NAME"),
		URL:           os.Getenv("SITE_URL"),
		Description:   bedrock.EnvOr("SITE_DESCRIPTION", "Independent reporting on builders, consumers and onchain culture."),
		Publisher:     os.Getenv("SITE_PUBLISHER"),
		Addr:          os.Getenv("ADDR"),
		CMSURL:        os.Getenv("CMS_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		SessionSecret: bedrock.MustEnv("SESSION_SECRET"),
		CookieSecure:  os.Getenv("COOKIE_SECURE") == "true",
	}
	if s := os.Getenv("SECTIONS"); s != "" {
		cfg.Sections = bedrock.FilterEmpty(strings.Split(s, ","))
	}

	var err error
	if cfg.CMSTimeout, err = envDuration("CMS_TIMEOUT"); err != nil {
		return cfg, err
	}
	if cfg.CacheTTL, err = envDuration("CACHE_TTL"); err != nil {
		return cfg, err
	}
	if cfg.PostCacheTTL, err = envDuration("POST_CACHE_TTL"); err != nil {
		return cfg, err
	}
	if cfg.FeedSize, err = envInt("FEED_SIZE"); err != nil {
		return cfg, err
	}
	if cfg.PageSize, err = envInt("PAGE_SIZE"); err != nil {
		return cfg, err
	}
	if cfg.SearchLimit, err = envInt("SEARCH_LIMIT"); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func envDuration(key string) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, &envError{key, err}
	}
	return d, nil
}

func envInt(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &envError{key, err}
	}
	if n < 0 {
		return 0, &envError{key, errors.New("must not be negative")}
	}
	return n, nil
}

type envError struct {
	key string
	err error
}

func (e *envError) Error() string {
	return "bedrock: invalid " + e.key + ": " + e.err.Error()
}

func (e *envError) Unwrap() error { return e.err }
