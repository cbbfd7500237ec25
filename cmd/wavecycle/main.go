// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wavecycle/wavecycle"
	"github.com/wavecycle/wavecycle/hwsim"
)

func main() {
	confPath := flag.String("config", "", "path to YAML config")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Optional .env overlay for LOG_LEVEL and friends
	godotenv.Load()

	conf := wavecycle.DefaultConfig()
	if *confPath != "" {
		var err error
		conf, err = wavecycle.LoadConfig(*confPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load config")
		}
	}

	lev, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || lev == zerolog.NoLevel {
		lev, err = zerolog.ParseLevel(conf.LogLevel)
		if err != nil || lev == zerolog.NoLevel {
			lev = zerolog.InfoLevel
		}
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMicro
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.StampMicro,
	}).With().Timestamp().Logger().Level(lev)

	if err := run(ctx, conf); err != nil {
		log.Fatal().Err(err).Msg("Deck finished with error")
	}
}

func run(ctx context.Context, conf wavecycle.Config) error {
	format := conf.Format()
	source := hwsim.NewToneSource(format, 700)
	sink := hwsim.NewRateLimitedSink(format, hwsim.DefaultSinkBuffer, nil)
	storage := wavecycle.NewDirStorage(conf.StorageDir)

	deck, err := wavecycle.NewDeck(conf, source, sink, storage,
		wavecycle.WithLogger(log.Logger),
		wavecycle.WithMetricsRegistry(prometheus.DefaultRegisterer),
		wavecycle.WithAuxiliaryTask("heartbeat", 5*time.Second, func(ctx context.Context) {
			log.Info().Msg("Deck running")
		}),
	)
	if err != nil {
		return err
	}

	if conf.MetricsAddr != "" {
		go serveMetrics(conf.MetricsAddr)
	}

	return deck.Run(ctx)
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info().Str("addr", addr).Msg("Serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
