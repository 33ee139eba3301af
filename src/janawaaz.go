package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/janawaaz/janawaaz/src/config"
	"github.com/janawaaz/janawaaz/src/data"
	"github.com/janawaaz/janawaaz/src/webserver"
)

func main() {
	cfg := config.Load()

	db := data.MustMySQL(cfg.MySQLDSN)
	if err := data.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	settings := data.NewSettings(db)
	if err := settings.Load(); err != nil {
		log.Printf("Failed to load settings: %v", err)
	}

	rdb := data.MustRedis(cfg.RedisURL)

	router := webserver.New(cfg, db, rdb, settings)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	log.Printf("JanAwaaz API listening on %s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
