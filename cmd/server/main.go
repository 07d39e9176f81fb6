package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	clobtypes "github.com/whalebot/gowhale/clob/types"
	"github.com/whalebot/gowhale/internal/server"
	"github.com/whalebot/gowhale/pkg/config"
	"github.com/whalebot/gowhale/pkg/logger"
	"github.com/whalebot/gowhale/pkg/sdk/api"
)

func main() {
	// Load .env (best-effort). If missing, fall back to real env vars.
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", "", "optional YAML config file")
		listenAddr = flag.String("listen", "", "HTTP listen address (overrides config)")
	)
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.WithComponent("main")

	var creds *clobtypes.Credentials
	if cfg.HasPreDerivedCreds() {
		creds = &clobtypes.Credentials{
			Key:        cfg.ClobAPIKey,
			Secret:     cfg.ClobAPISecret,
			Passphrase: cfg.ClobAPIPassphrase,
		}
	}

	client := api.New(api.Config{
		GammaAPIURL: cfg.GammaAPIURL,
		DataAPIURL:  cfg.DataAPIURL,
		ClobAPIURL:  cfg.ClobAPIURL,
		PrivateKey:  cfg.PrivateKey,
		Credentials: creds,
		Timeout:     cfg.RequestTimeout,

		RequestsPerSecond: cfg.RequestsPerSecond,
		MarketCacheTTL:    cfg.MarketCacheTTL,
	})
	if err := client.Connect(context.Background()); err != nil {
		log.WithError(err).Fatal("connect data client")
	}
	defer client.Close()

	srv := server.New(server.Config{
		AppName:        cfg.AppName,
		Debug:          cfg.Debug,
		WhaleThreshold: cfg.WhaleThreshold,
	}, client)

	addr := cfg.ListenAddr()
	if *listenAddr != "" {
		addr = *listenAddr
	}
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("addr", addr).Info("listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("http server error")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	<-stopCh

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
	log.Info("server stopped")
}
