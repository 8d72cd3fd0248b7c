package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/retailkit/pos/internal/auth"
	"github.com/retailkit/pos/internal/catalog"
	"github.com/retailkit/pos/internal/config"
	"github.com/retailkit/pos/internal/httpx"
	kafkax "github.com/retailkit/pos/internal/kafka"
	"github.com/retailkit/pos/internal/operator"
	"github.com/retailkit/pos/internal/postgres"
	"github.com/retailkit/pos/internal/redisx"
	"github.com/retailkit/pos/internal/sale"
)

func taxPolicy(cfg config.Config) sale.TaxPolicy {
	if cfg.TaxPolicy == "none" {
		return sale.NoTax
	}
	label := func(name string, rate decimal.Decimal) string {
		return fmt.Sprintf("%s (%s%%)", name, rate.Mul(decimal.NewFromInt(100)).String())
	}
	return sale.FlatRates(
		sale.TaxRate{Name: label("CGST", cfg.CGSTRate), Rate: cfg.CGSTRate},
		sale.TaxRate{Name: label("IGST", cfg.IGSTRate), Rate: cfg.IGSTRate},
	)
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, sale.TopicSaleFinalized, 1024)
	prod.Start(ctx)

	// Repos & handlers
	tokens := auth.New(cfg.JWTSecret)
	catalogRepo := &catalog.Repo{DB: db}
	saleRepo := &sale.Repo{DB: db}
	operatorRepo := &operator.Repo{DB: db}

	ah := &httpx.AuthHandler{Operators: operatorRepo, Tokens: tokens}
	ch := &httpx.CatalogHandler{Catalog: catalogRepo}
	sh := &httpx.SaleHandler{
		Catalog:  catalogRepo,
		Orders:   saleRepo,
		Redis:    rdb,
		Producer: prod,
		Policy:   taxPolicy(cfg),
		Service:  cfg.ServiceName,
	}

	router := httpx.NewRouter()
	ah.Register(router)
	router.Group(func(r chi.Router) {
		r.Use(httpx.Authenticator(tokens))
		ch.Register(r)
		sh.Register(r)
		r.Group(func(r chi.Router) {
			r.Use(httpx.RequireRole(operator.RoleManager))
			ch.RegisterManagement(r)
		})
	})

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()
	cancel()
	prod.WaitClosed()
}
