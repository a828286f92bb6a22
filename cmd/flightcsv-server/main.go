// Command flightcsv-server starts a standalone Arrow Flight server over a
// directory of CSV files. Flag/env parsing, signal handling, and process
// lifetime are deliberately kept out of the engine packages; this
// is the thin bootstrap that wires the engine's packages together and
// runs them until a termination signal arrives.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/flightcsv/flightcsv-server/csvadapter"
	"github.com/flightcsv/flightcsv-server/csvsource"
	"github.com/flightcsv/flightcsv-server/flightsvc"
	"github.com/flightcsv/flightcsv-server/registry"
	"github.com/flightcsv/flightcsv-server/schemainfer"
)

func main() {
	var (
		host                = flag.String("host", "", "bind host (empty = all interfaces)")
		port                = flag.Int("port", 8815, "bind port")
		dataDirectory       = flag.String("data-directory", ".", "directory of CSV files to serve")
		address             = flag.String("address", "", "public grpc://host:port advertised in FlightInfo endpoints (defaults to host:port)")
		maxMessageSize      = flag.Int("max-message-size", flightsvc.DefaultMaxMessageSize, "max gRPC receive/send message size in bytes")
		batchSize           = flag.Int("batch-size", 10_000, "target rows per record batch")
		delimiter           = flag.String("delimiter", ",", "CSV field delimiter")
		hasHeaders          = flag.Bool("has-headers", true, "CSV files include a header row")
		skipEmptyLines      = flag.Bool("skip-empty-lines", true, "skip blank CSV lines")
		sampleSize          = flag.Int("sample-size", 1000, "rows sampled for schema inference")
		confidenceThreshold = flag.Float64("confidence-threshold", 0.8, "minimum fraction of non-null samples a type must cover to win")
		nullThreshold       = flag.Float64("null-threshold", 0.5, "null ratio above which a column falls back to utf8")
		shutdownGrace       = flag.Duration("shutdown-grace", flightsvc.DefaultShutdownGrace, "graceful drain window on shutdown")
		compressIPC         = flag.Bool("compress-ipc", false, "zstd-compress DoGet's record-batch stream")
		verbose             = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if len(*delimiter) != 1 {
		log.Fatalf("--delimiter must be exactly one character, got %q", *delimiter)
	}

	adapterCfg := csvadapter.Config{
		DataDirectory: *dataDirectory,
		CSV: csvsource.Options{
			Delimiter:      rune((*delimiter)[0]),
			HasHeaders:     *hasHeaders,
			SkipEmptyLines: *skipEmptyLines,
			BatchSize:      *batchSize,
		},
		Schema: schemainfer.Options{
			SampleSize:          *sampleSize,
			NullThreshold:       *nullThreshold,
			ConfidenceThreshold: *confidenceThreshold,
		},
		Logger: logger,
	}
	adp := csvadapter.New(adapterCfg)

	reg := registry.New(adp)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := reg.Discover(ctx); err != nil {
		log.Fatalf("initial dataset discovery failed: %v", err)
	}

	endpointAddress := *address
	if endpointAddress == "" {
		endpointAddress = *host + ":" + strconv.Itoa(*port)
	}

	srv, err := flightsvc.New(flightsvc.Config{
		Registry:    reg,
		Adapter:     adp,
		Logger:      logger,
		Address:     endpointAddress,
		CompressIPC: *compressIPC,
	})
	if err != nil {
		log.Fatalf("failed to construct flight server: %v", err)
	}

	rtCfg := flightsvc.DefaultRuntimeConfig(*host, *port)
	rtCfg.MaxMessageSize = *maxMessageSize
	rtCfg.ShutdownGrace = *shutdownGrace

	rt, err := flightsvc.NewRuntime(srv, rtCfg)
	if err != nil {
		log.Fatalf("failed to construct server runtime: %v", err)
	}

	if err := rt.Start(); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, draining")
	stopDone := make(chan error, 1)
	go func() { stopDone <- rt.Stop() }()

	select {
	case err := <-stopDone:
		if err != nil {
			log.Fatalf("server stopped with error: %v", err)
		}
	case <-time.After(*shutdownGrace + 5*time.Second):
		log.Fatal("server did not stop within the expected window")
	}
}
