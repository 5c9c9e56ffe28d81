package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"libraryexplorer/internal/catalog"
	"libraryexplorer/internal/detail"
	"libraryexplorer/internal/httpx"
	"libraryexplorer/internal/ledger"
	"libraryexplorer/internal/metrics"
	"libraryexplorer/internal/platform/openlibrary"
	"libraryexplorer/internal/saved"
	"libraryexplorer/internal/search"
	"libraryexplorer/internal/session"
	"libraryexplorer/internal/shelf"
)

func main() {
	_ = godotenv.Load(".env.local")

	serverAddress := getEnv("APP_ADDR", ":8080")
	catalogBaseURL := getEnv("CATALOG_BASE_URL", "https://openlibrary.org")
	userAgent := getEnv("CATALOG_USER_AGENT", "libraryexplorer/1.0")
	catalogRPS := getEnvInt("CATALOG_RPS", 3)
	pageSize := getEnvInt("SEARCH_PAGE_SIZE", search.DefaultPageSize)
	reviewDelay := getEnvDuration("REVIEW_DELAY", shelf.DefaultReviewDelay)
	allowedOrigins := strings.Split(getEnv("CORS_ORIGINS", "http://localhost:5173"), ",")

	reg := metrics.NewRegistry()

	client := openlibrary.NewClient(catalogBaseURL, userAgent, catalogRPS)

	shelfStore := shelf.NewStore(reviewDelay)
	shelfStore.SetOnPublish(func(b catalog.Book) {
		log.Printf("shelf published key=%s title=%q", b.Key, b.Title)
		reg.Publications.Inc()
	})

	savedStore := saved.NewStore()
	ledgerEngine := ledger.NewEngine()

	searchSvc := search.NewService(client, shelfStore, pageSize)
	resolver := detail.NewResolver(client)

	sess := session.New(searchSvc, resolver, shelfStore, savedStore, ledgerEngine)
	sess.SetOnDetail(func(u detail.Update) {
		if u.Err != nil {
			reg.EnrichmentFailures.Inc()
			return
		}
		reg.Enrichments.Inc()
	})

	sessionHandler := session.NewHTTPHandler(sess, reg)
	shelfHandler := shelf.NewHTTPHandler(shelfStore, reg)
	ledgerHandler := ledger.NewHTTPHandler(ledgerEngine)
	searchHandler := search.NewHTTPHandler(searchSvc, reg)

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("GET /metrics", reg.Handler())

	router.HandleFunc("GET /search", sessionHandler.Search)
	router.HandleFunc("GET /subjects/{subject}", searchHandler.BrowseSubject)

	router.HandleFunc("GET /session", sessionHandler.Overview)
	router.HandleFunc("POST /session/selection", sessionHandler.Select)
	router.HandleFunc("GET /session/selection", sessionHandler.GetSelection)
	router.HandleFunc("DELETE /session/selection", sessionHandler.ClearSelection)

	router.HandleFunc("POST /books", shelfHandler.Submit)
	router.HandleFunc("GET /books", shelfHandler.List)
	router.HandleFunc("POST /books/{key}/save", sessionHandler.ToggleSave)
	router.HandleFunc("POST /books/{key}/purchase", sessionHandler.Purchase)

	router.HandleFunc("GET /ledger", ledgerHandler.Get)
	router.HandleFunc("POST /ledger/withdrawals", ledgerHandler.Withdraw)
	router.HandleFunc("GET /ledger/preview", ledgerHandler.Preview)

	rateLimit := httpx.NewRateLimitMiddleware(10, 20)
	handler := httpx.RequestIDMiddleware(
		httpx.AccessLogMiddleware(
			httpx.RecoveryMiddleware(
				httpx.SecurityHeadersMiddleware(
					httpx.CORSMiddleware(allowedOrigins)(
						httpx.RequestSizeLimitMiddleware(1<<20)(
							rateLimit.Middleware(router)))))))

	httpServer := &http.Server{
		Addr:         serverAddress,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting server on %s", serverAddress)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
