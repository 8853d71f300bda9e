package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"my-blog/internal/config"
	"my-blog/internal/seed"
	"my-blog/internal/server"
	"my-blog/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	cfg        *config.Config
	configFile string
	v          = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "blog",
	Short: "blog - article, comment and upvote API for the blog frontend",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(v, configFile)
		if err != nil {
			return err
		}

		if cfg.Log.Development {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		return err
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API and static file server",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		dialer, closeStore, err := store.Open(cfg.Store)
		if err != nil {
			logger.Fatal("Failed to init store", zap.Error(err))
		}
		defer closeStore()

		if bs, ok := dialer.(*store.BadgerStore); ok {
			go bs.RunGC(ctx, 5*time.Minute, logger)
		}

		srv := server.NewServer(dialer, cfg.StaticDir, logger)

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			logger.Info("Shutting down...")
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			if err := srv.Stop(shutdownCtx); err != nil {
				logger.Error("Shutdown failed", zap.Error(err))
			}
			cancel()
		}()

		logger.Info("Store selected",
			zap.String("driver", cfg.Store.Driver),
			zap.String("database", cfg.Store.Database))

		if err := srv.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}

		<-ctx.Done()
		logger.Info("Goodbye!")
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed [fixtures.yaml]",
	Short: "Load articles from a YAML fixture file into the store",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(args[0])
		if err != nil {
			logger.Fatal("Failed to open fixtures", zap.Error(err))
		}
		defer f.Close()

		articles, err := seed.Parse(f)
		if err != nil {
			logger.Fatal("Failed to parse fixtures", zap.Error(err))
		}

		dialer, closeStore, err := store.Open(cfg.Store)
		if err != nil {
			logger.Fatal("Failed to init store", zap.Error(err))
		}
		defer closeStore()

		if err := seed.Load(context.Background(), dialer, articles, logger); err != nil {
			logger.Fatal("Failed to seed articles", zap.Error(err))
		}
		logger.Info("Seeding complete", zap.Int("articles", len(articles)))
	},
}

func main() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to a YAML/JSON/TOML config file")
	flags.String("addr", ":8000", "HTTP listen address")
	flags.String("static", "build", "Directory holding the frontend bundle")
	flags.String("driver", config.DriverMongo, "Store driver: mongo, redis or badger")
	flags.String("mongo", "mongodb://localhost:27017", "MongoDB connection string")
	flags.String("database", "my-blog", "MongoDB database name")
	flags.String("redis", "localhost:6379", "Address of Redis server")
	flags.String("badger", "./badger-data", "Path to BadgerDB data directory")

	for key, flag := range map[string]string{
		"addr":              "addr",
		"static_dir":        "static",
		"store.driver":      "driver",
		"store.uri":         "mongo",
		"store.database":    "database",
		"store.redis_addr":  "redis",
		"store.badger_path": "badger",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)

	err := rootCmd.Execute()
	if logger != nil {
		logger.Sync()
	}
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
