// bloomd serves named bloom filters over http.
//
// Every flag defaults from a BLOOMD_ prefixed environment variable, for
// example -listen from BLOOMD_LISTEN.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-bloomfilter/filterstore"
	"github.com/forestrie/go-bloomfilter/service"
)

const shutdownGrace = 10 * time.Second

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv("BLOOMD_" + key); ok {
		return v
	}
	return fallback
}

func parseConfig(args []string) (service.Config, error) {
	cfg := service.DefaultConfig()
	maxBits := cfg.MaxBits
	if v := envOr("MAX_BITS", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return service.Config{}, fmt.Errorf("BLOOMD_MAX_BITS: %w", err)
		}
		maxBits = n
	}
	fs := flag.NewFlagSet("bloomd", flag.ContinueOnError)
	fs.StringVar(&cfg.ListenAddr, "listen", envOr("LISTEN", cfg.ListenAddr), "http listen address")
	fs.StringVar(&cfg.StoreBackend, "store", envOr("STORE", cfg.StoreBackend), "store backend: dir or azurite")
	fs.StringVar(&cfg.StoreDir, "store-dir", envOr("STORE_DIR", cfg.StoreDir), "directory (or blob prefix) filters are saved to")
	fs.StringVar(&cfg.StoreContainer, "store-container", envOr("STORE_CONTAINER", cfg.StoreContainer), "azurite blob container")
	fs.StringVar(&cfg.StoreFormat, "store-format", envOr("STORE_FORMAT", cfg.StoreFormat), "save encoding: json, cbor, binary or proto")
	fs.StringVar(&cfg.DefaultAlgorithm, "algo", envOr("ALGO", cfg.DefaultAlgorithm), "default digest algorithm")
	fs.IntVar(&cfg.MaxBits, "max-bits", maxBits, "largest filter, in bits, that create will allocate")
	fs.StringVar(&cfg.SigningKeyFile, "signing-key", envOr("SIGNING_KEY", cfg.SigningKeyFile), "pem ec private key used to cose sign saved filters")
	fs.StringVar(&cfg.SigningKeyID, "signing-key-id", envOr("SIGNING_KEY_ID", cfg.SigningKeyID), "cose kid for signed filters")
	fs.StringVar(&cfg.LogLevel, "log-level", envOr("LOG_LEVEL", cfg.LogLevel), "log level")
	if err := fs.Parse(args); err != nil {
		return service.Config{}, err
	}
	return cfg, cfg.Validate()
}

func openStore(log logger.Logger, cfg service.Config) (filterstore.Store, error) {
	var store filterstore.Store
	switch cfg.StoreBackend {
	case service.BackendAzurite:
		storer, err := azblob.NewDev(azblob.NewDevConfigFromEnv(), cfg.StoreContainer)
		if err != nil {
			return nil, fmt.Errorf("connecting to blob store emulator: %w", err)
		}
		store = filterstore.NewBlobStore(log, storer, cfg.StoreDir)
	default:
		ds, err := filterstore.NewDirStore(log, cfg.StoreDir)
		if err != nil {
			return nil, err
		}
		store = ds
	}
	if cfg.SigningKeyFile == "" {
		return store, nil
	}
	signer, verifier, err := filterstore.LoadSigningKey(cfg.SigningKeyFile)
	if err != nil {
		return nil, err
	}
	log.Infof("signing saved filters with %s (%s)", cfg.SigningKeyID, signer.Algorithm())
	return filterstore.NewSignedStore(store, signer, verifier, cfg.SigningKeyID), nil
}

func run(ctx context.Context, cfg service.Config) error {
	log := logger.Sugar.WithServiceName("bloomd")

	store, err := openStore(log, cfg)
	if err != nil {
		return err
	}
	s, err := service.NewServer(log, cfg, store)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Infof("listening on %s, store %s (%s)", cfg.ListenAddr, cfg.StoreDir, cfg.StoreFormat)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err = <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Infof("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(sctx)
}

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "bloomd: %v\n", err)
		os.Exit(2)
	}

	logger.New(cfg.LogLevel)
	defer logger.OnExit()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Sugar.Infof("bloomd: %v", err)
		stop()
		logger.OnExit()
		os.Exit(1)
	}
}
