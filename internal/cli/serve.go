package cli

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/tx"
	"github.com/mitgajera/Token2022-Hook-AMM/internal/rpc"
	"github.com/mitgajera/Token2022-Hook-AMM/internal/storage/historydb"
	"github.com/mitgajera/Token2022-Hook-AMM/internal/storage/ledgerstore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the hookswapd server",
	Long: `Start the hookswapd server which provides:
- HTTP JSON-RPC API for transaction submission and state queries
- WebSocket stream of applied transactions
- Health check endpoint

This is the default command when no subcommand is specified.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Running hookswapd with no subcommand serves.
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, manager, err := ledgerstore.Open(cfg.Storage.Backend, cfg.Storage.Path, cfg.Storage.CacheSize)
	if err != nil {
		return err
	}
	defer manager.Close()

	var history *historydb.DB
	if cfg.History.Enabled {
		history, err = historydb.Open(cfg.HistoryDir())
		if err != nil {
			return err
		}
		defer history.Close()
	}

	if len(cfg.Genesis.Accounts) > 0 {
		genesis := make([]tx.GenesisAccount, 0, len(cfg.Genesis.Accounts))
		for _, account := range cfg.Genesis.Accounts {
			var addr tx.Address
			if err := addr.UnmarshalText([]byte(account.Address)); err != nil {
				return err
			}
			genesis = append(genesis, tx.GenesisAccount{Account: addr, Balance: account.Balance})
		}
		if err := tx.SeedGenesis(store, genesis); err != nil {
			return err
		}
		logger.Info("genesis accounts seeded", zap.Int("count", len(genesis)))
	}

	engine := tx.NewEngine(store, tx.EngineConfig{
		SecondsPerDay: cfg.Engine.SecondsPerDay,
	})

	var pub *rpc.Publisher
	if cfg.Server.Websocket {
		pub = rpc.NewPublisher(logger)
	}

	service := rpc.NewService(engine, store, history, pub, logger)
	registry := rpc.NewMethodRegistry()
	service.RegisterMethods(registry)
	rpcServer := rpc.NewServer(registry, logger)

	mux := http.NewServeMux()
	mux.Handle("/", rpcServer)
	mux.Handle("/rpc", rpcServer)
	if pub != nil {
		mux.Handle("/ws", rpc.NewWebSocketServer(pub, logger))
	}
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"hookswapd"}`))
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	logger.Info("starting hookswapd",
		zap.String("addr", cfg.Addr()),
		zap.String("backend", cfg.Storage.Backend),
		zap.Bool("history", cfg.History.Enabled),
		zap.Bool("websocket", cfg.Server.Websocket),
		zap.String("config", cfg.GetConfigPath()))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
