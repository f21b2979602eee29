package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	httpctrl "coffee-orders/internal/controllers/http"
	"coffee-orders/internal/domain"
	"coffee-orders/internal/infra"
	"coffee-orders/internal/infra/changefeed"
	mmysql "coffee-orders/internal/infra/mysql"
	"coffee-orders/internal/infra/rabbitmq"
	"coffee-orders/internal/notifier"
	mysqlrepo "coffee-orders/internal/repository/mysql"
	"coffee-orders/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"
)

func main() {
	db, err := mmysql.NewMySQLFromEnv()
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	repo := mysqlrepo.NewOrderRepository(db)

	publisher, err := rabbitmq.NewPublisher(os.Getenv("RABBITMQ_URL"), "orders.exchange")
	if err != nil {
		log.Fatalf("failed to init publisher: %v", err)
	}
	defer publisher.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:         os.Getenv("REDIS_HOST") + ":6379",
		DB:           0,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	feed := changefeed.New(redisClient)
	s := services.NewOrderService(repo, publisher, feed)

	pushClient := infra.NewPushClient(os.Getenv("EXPO_PUSH_URL"), 5*time.Second)
	handler := httpctrl.NewHandler(s, pushClient, redisClient)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	handler.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: r}

	staleAfter := services.DefaultStaleAfter
	if v := os.Getenv("STALE_ORDER_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			staleAfter = time.Duration(minutes) * time.Minute
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		events, err := feed.Subscribe(ctx)
		if err != nil {
			return err
		}
		watcher := notifier.NewBoardWatcher(s, events, func(board services.Board) {
			logBoard(board, staleAfter)
		})
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		log.Printf("Starting order service on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server run: %v", err)
	}
}

func logBoard(board services.Board, staleAfter time.Duration) {
	now := time.Now()
	stale := 0
	for _, order := range board[domain.StatusNew] {
		if services.IsStale(order.CreatedAt, order.Status, now, staleAfter) {
			stale++
		}
	}
	log.Printf("Board refreshed: new=%d in_progress=%d ready=%d completed=%d stale=%d",
		len(board[domain.StatusNew]),
		len(board[domain.StatusInProgress]),
		len(board[domain.StatusReady]),
		len(board[domain.StatusCompleted]),
		stale)
}
