// ABOUTME: Local stand-in for the feedback API backed by the in-memory stub.
// ABOUTME: Serves seeded demo data so the CLI and TUI can be tried without the real server.

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/amanks009/feedback-client/apitest"
	"github.com/amanks009/feedback-client/models"
)

func main() {
	addr := flag.String("addr", ":5000", "Listen address")
	prefix := flag.String("prefix", "/api", "Path prefix the API is mounted under")
	demo := flag.Bool("demo", true, "Seed a few feedback items")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	store := apitest.Seed()
	if *demo {
		seedDemo(store)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Mount(*prefix, store.Handler())

	server := &http.Server{Addr: *addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("stub feedback API listening",
		zap.String("addr", *addr),
		zap.String("prefix", *prefix),
		zap.String("manager", "mona@example.com"),
		zap.String("employee", "ada@example.com"),
		zap.String("password", apitest.Password))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func seedDemo(store *apitest.Server) {
	now := time.Now().UTC()
	store.AddFeedback(models.FeedbackItem{
		EmployeeID:     1,
		Strengths:      "Clear design docs and thorough code reviews",
		AreasToImprove: "Share progress earlier in the sprint",
		Sentiment:      models.SentimentPositive,
		CreatedAt:      now.Add(-72 * time.Hour),
	})
	store.AddFeedback(models.FeedbackItem{
		EmployeeID:     1,
		Strengths:      "Steady delivery on the billing migration",
		AreasToImprove: "Delegate more of the on-call load",
		Sentiment:      models.SentimentNeutral,
		CreatedAt:      now.Add(-24 * time.Hour),
	})
	store.AddFeedback(models.FeedbackItem{
		EmployeeID:     2,
		Strengths:      "Great mentor to new hires",
		AreasToImprove: "Estimate larger tasks more carefully",
		Sentiment:      models.SentimentPositive,
		CreatedAt:      now.Add(-48 * time.Hour),
	})
}
