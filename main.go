package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/judgegodwins/chess-arena/api"
	"github.com/judgegodwins/chess-arena/archive"
	"github.com/judgegodwins/chess-arena/coordinator"
	"github.com/judgegodwins/chess-arena/tokens"
	"github.com/judgegodwins/chess-arena/util"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	archiveQueueSize = 64
	shutdownTimeout  = 10 * time.Second
)

func main() {
	util.InitValidator()

	config, err := util.LoadConfig()

	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := util.NewLogger(config.LogLevel, config.LogPretty)

	maker, err := tokens.NewMaker(config.TokenKind, config.TokenSecret)

	if err != nil {
		log.Fatal().Err(err).Msg("cannot create token maker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []coordinator.Option{coordinator.WithMonitorInterval(config.MonitorInterval)}

	var history api.GameHistory

	if config.RedisAddress != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddress,
			Password: config.RedisPassword,
			DB:       0,
		})
		defer rdb.Close()

		// check redis connection status
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", config.RedisAddress).Msg("cannot reach redis")
		}

		recorder := archive.NewRedisRecorder(rdb)
		queue := archive.NewQueue(recorder, archiveQueueSize, log)
		go queue.Run(ctx)

		opts = append(opts, coordinator.WithArchiver(queue))
		history = recorder
	}

	coord := coordinator.New(log, opts...)
	go coord.Run(ctx)

	server := api.NewServer(config, coord, maker, history, log)

	errs := make(chan error, 1)
	go func() {
		errs <- server.Start()
	}()

	select {
	case err := <-errs:
		if err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}
