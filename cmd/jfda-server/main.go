package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/esimov/jfda"
	"github.com/esimov/jfda/onnx"
	"github.com/esimov/jfda/server"
	"github.com/esimov/jfda/utils"
)

var envFile = flag.String("env", "", "Optional .env file, ./.env is read when empty")

func main() {
	flag.Parse()
	os.Exit(run())
}

// run starts the service and blocks until it is stopped. Returning instead of
// exiting lets the deferred runtime and cache cleanup run.
func run() int {
	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	cfg, err := server.LoadConfig(files...)
	if err != nil {
		log.Printf("Error loading configuration: %v", err)
		return 1
	}

	logger, err := utils.NewLogger(utils.LogConfig{Level: cfg.LogLevel, File: cfg.LogFile, Caller: true})
	if err != nil {
		log.Print(err)
		return 1
	}

	if err := onnx.Initialize(cfg.OrtLib); err != nil {
		logger.Error(err)
		return 1
	}
	defer onnx.Shutdown()

	resizer, _ := jfda.ResizerByName(cfg.Resizer)
	order := jfda.BGR
	if cfg.RGB {
		order = jfda.RGB
	}
	loader := onnx.Loader{IntraOpThreads: cfg.IntraOpThreads}
	det, err := jfda.NewFromNets(cfg.Nets, loader.Load,
		jfda.WithResizer(resizer),
		jfda.WithChannelOrder(order),
		jfda.WithWorkers(cfg.Workers),
		jfda.WithLogger(logger),
	)
	if err != nil {
		logger.Error(err)
		return 1
	}
	defer det.Close()

	options := []server.ServerOption{
		server.WithDetector(det, cfg.Params),
		server.WithLogger(logger),
		server.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		server.WithBodyLimit(cfg.BodyLimit),
	}
	if cfg.RedisAddr != "" {
		cache := server.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		defer cache.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := cache.Ping(ctx); err != nil {
			logger.WithError(err).Warn("result cache unavailable")
		} else {
			logger.WithField("addr", cfg.RedisAddr).Info("result cache connected")
		}
		cancel()
		options = append(options, server.WithCache(cache))
	}

	srv, err := server.New(options...)
	if err != nil {
		logger.Error(err)
		return 1
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Listen(cfg.Addr)
	}()

	select {
	case err := <-errChan:
		logger.WithError(err).Error("Error starting server")
		return 1
	case <-sigChan:
	}
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("server shutdown failed")
		return 1
	}
	return 0
}
