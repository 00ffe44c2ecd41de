package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	api "github.com/docuscore/docuscore/internal/api/http"
	"github.com/docuscore/docuscore/internal/archive"
	auth "github.com/docuscore/docuscore/internal/auth/middleware"
	"github.com/docuscore/docuscore/internal/cache"
	"github.com/docuscore/docuscore/internal/config"
	"github.com/docuscore/docuscore/internal/db"
	"github.com/docuscore/docuscore/internal/engine"
	"github.com/docuscore/docuscore/internal/results"
	"github.com/docuscore/docuscore/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := results.NewSQLStore(dbh)

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	// --- Engine (redis result cache only when configured) ---
	engOpts := []engine.Option{
		engine.WithArchiveOptions(archive.Options{
			MaxTotalBytes: cfg.MaxArchiveBytes,
			MaxFiles:      cfg.MaxArchiveFiles,
			MaxDepth:      cfg.MaxNestingDepth,
		}),
		engine.WithBatchConcurrency(cfg.BatchConcurrency),
	}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		engOpts = append(engOpts, engine.WithCache(cache.NewResultCache(rdb, cfg.CacheTTL)))
	}
	eng := engine.New(engOpts...)

	authSvc := auth.NewAuthService(cfg.AuthSecret, cfg.AdminUser, cfg.AdminPassHash)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc))

	// Protected API
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(api.RateLimit(cfg.GradeRatePerMinute)).
			Post("/grade", api.GradeHandler(eng, store, bs))
		pr.With(api.RateLimit(cfg.GradeRatePerMinute)).
			Post("/grade/batch", api.BatchGradeHandler(eng, store, bs))

		pr.Get("/results", api.ListResultsHandler(store))
		pr.Get("/results/{resultID}", api.GetResultHandler(store))

		pr.Get("/rubrics", api.ListRubricsHandler(store))
		pr.Get("/rubrics/{name}", api.GetRubricHandler(store))
		pr.Post("/rubrics", api.PutRubricHandler(store))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("gateway listening on %s", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal(err)
	}
}
