// Package main provides the libris action-server entry point.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/akazawan/libris/internal/action"
	"github.com/akazawan/libris/internal/config"
	"github.com/akazawan/libris/internal/db/sqlite"
	"github.com/akazawan/libris/internal/resolve"
	"github.com/akazawan/libris/internal/search"
	"github.com/akazawan/libris/internal/server"
	"github.com/akazawan/libris/internal/session"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "libris.yaml", "Path to config file")
	dbPath := flag.String("db", "", "Database path (overrides config)")
	listenAddr := flag.String("listen", "", "Listen address (overrides config)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if *dbPath != "" {
		cfg.DB.Path = *dbPath
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}

	store, err := sqlite.NewStore(sqlite.StoreConfig{
		Path:     cfg.DB.Path,
		MaxConns: cfg.DB.MaxConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open catalog store")
	}
	defer store.Close()

	bookIndex := search.NewIndex(store, search.CollectionBook)
	authorIndex := search.NewIndex(store, search.CollectionAuthor)
	catalog := sqlite.NewCatalogStore(store)
	loans := sqlite.NewLoanStore(store, cfg.MaxBooks, cfg.RentDays)

	searchAction := action.NewSearchAction(bookIndex, authorIndex, catalog, cfg.DisplayLimit)
	borrowAction := action.NewBorrowAction(loans, bookIndex)
	resolver := resolve.New(bookIndex, authorIndex, cfg.Resolver.TitlePrecedence)
	sessions := session.NewManager()

	srv := server.New(store, searchAction, borrowAction, resolver, sessions)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("version", Version).Str("addr", cfg.ListenAddr).
			Msg("libris action server listening")
		return server.Serve(gctx, cfg.ListenAddr, srv.Router())
	})
	g.Go(func() error {
		select {
		case <-sigCh:
			log.Info().Msg("Shutting down")
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Server exited")
	}
}
