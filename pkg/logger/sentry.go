package logger

import (
	"log"
	"time"

	"github.com/getsentry/sentry-go"
)

const sentryFlushTimeout = 2 * time.Second

// InitSentry binds a Sentry client when dsn is set. The returned function
// flushes pending events and is safe to defer in every case.
func InitSentry(dsn, environment, release string) func() {
	if dsn == "" {
		log.Println("Sentry not configured (SENTRY_DSN not set)")
		return func() {}
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          "tasteofcontrol@" + release,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		Debug:            environment != "production",
	}); err != nil {
		log.Printf("Failed to initialize Sentry: %v", err)
		return func() {}
	}
	log.Printf("Sentry initialized (environment: %s, release: %s)", environment, release)
	return func() { sentry.Flush(sentryFlushTimeout) }
}
