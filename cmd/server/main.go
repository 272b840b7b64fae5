package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/rosaarteira/storefront/internal/config"
	"github.com/rosaarteira/storefront/internal/es"
	"github.com/rosaarteira/storefront/internal/handlers"
	"github.com/rosaarteira/storefront/internal/kvstore"
	"github.com/rosaarteira/storefront/internal/logging"
	"github.com/rosaarteira/storefront/internal/mykafka"
	"github.com/rosaarteira/storefront/internal/service/search"
	"github.com/rosaarteira/storefront/internal/service/token"
	"github.com/rosaarteira/storefront/internal/session"
	"github.com/rosaarteira/storefront/internal/store"
	httpserver "github.com/rosaarteira/storefront/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	ctx := logging.IntoContext(context.Background(), logger)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	kv, err := kvstore.Open(db)
	if err != nil {
		log.Fatalf("kv store init error: %v", err)
	}

	st := store.New(kv)
	sessions := session.NewStore(kv)

	if err := st.Users.EnsureDefaultAdmin(ctx, configuration.ADMIN_PASSWORD); err != nil {
		log.Fatalf("default admin error: %v", err)
	}

	var prod *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		prod, err = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
		if err != nil {
			log.Fatal(err)
		}
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}
	searchSvc := search.New(esClient, search.DefaultIndex)

	tokens := &token.Service{
		KV:            kv,
		JWTSecret:     []byte(configuration.JWT_SECRET),
		RefreshSecret: []byte(configuration.REFRESH_SECRET),
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())

	deps := httpserver.Deps{
		AuthHandler:    &handlers.AuthHandler{Store: st, Sessions: sessions, Tokens: tokens, Producer: prod},
		ProductHandler: &handlers.ProductHandler{Store: st, Producer: prod, Search: searchSvc},
		CartHandler:    &handlers.CartHandler{Store: st, Producer: prod},
		OrderHandler:   &handlers.OrderHandler{Store: st, Producer: prod},
		AddressHandler: &handlers.AddressHandler{Store: st},
		AdminHandler:   &handlers.AdminHandler{Store: st, Producer: prod},
		SearchHandler:  &handlers.SearchHandler{Search: searchSvc},
		Tokens:         tokens,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	logger.Info("storefront started", "addr", configuration.HTTP_ADDR, "driver", configuration.DB_DRIVER)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	logger.Info("shutdown complete")
}
