package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/retailkit/pos/internal/config"
	kafkax "github.com/retailkit/pos/internal/kafka"
	"github.com/retailkit/pos/internal/postgres"
	"github.com/retailkit/pos/internal/receipt"
	"github.com/retailkit/pos/internal/redisx"
	"github.com/retailkit/pos/internal/sale"
)

// printer consumes sale.finalized events, loads the committed order and
// writes the rendered receipt to stdout (the stand-in for a receipt printer).
type printer struct {
	repo  *sale.Repo
	redis *redis.Client
	name  string
}

func (p *printer) handle(ctx context.Context, m kafkago.Message) error {
	var env sale.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != sale.EventSaleFinalized {
		return nil
	}

	// dedup via Redis so a redelivered event does not print twice
	dkey := fmt.Sprintf(redisx.KeyDedup, p.name, env.EventID)
	if exists, _ := redisx.Exists(ctx, p.redis, dkey); exists {
		return nil
	}

	payload, err := kafkax.UnwrapPayload[sale.SaleFinalizedPayload](env.Payload)
	if err != nil {
		return err
	}
	order, err := p.repo.Order(ctx, payload.OrderID)
	if err != nil {
		return err
	}

	fmt.Print(receipt.Render(order))
	_ = p.redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	return nil
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	p := &printer{
		repo:  &sale.Repo{DB: db},
		redis: rdb,
		name:  cfg.ServiceName + "-printer",
	}

	group := getenv("PRINTER_GROUP", "receipt-printer")
	workers := mustAtoi(os.Getenv("PRINTER_WORKERS"), "1")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, sale.TopicSaleFinalized, workers)

	go func() {
		log.Printf("printer consumer started: group=%s topic=%s workers=%d", group, sale.TopicSaleFinalized, workers)
		if err := cons.Start(ctx, p.handle); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down printer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}
