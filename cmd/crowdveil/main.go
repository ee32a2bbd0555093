package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/metadb"

	"github.com/crowdveil/crowdveil/log"
	"github.com/crowdveil/crowdveil/service"
)

// Config holds the runtime configuration, populated from CROWDVEIL_*
// environment variables.
type Config struct {
	DataDir  string `envconfig:"data_dir" default:"./crowdveil-data"`
	Host     string `envconfig:"host" default:"0.0.0.0"`
	Port     int    `envconfig:"port" default:"8080"`
	LogLevel string `envconfig:"log_level" default:"info"`
	Admin    string `envconfig:"admin"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("crowdveil", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel, "stdout", nil)

	if !common.IsHexAddress(cfg.Admin) {
		log.Fatalf("CROWDVEIL_ADMIN must be a valid address, got %q", cfg.Admin)
	}
	admin := common.HexToAddress(cfg.Admin)

	database, err := metadb.New(db.TypePebble, cfg.DataDir)
	if err != nil {
		log.Fatalf("cannot open database at %s: %v", cfg.DataDir, err)
	}

	node, err := service.NewNode(database, admin, prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("cannot assemble node: %v", err)
	}
	defer node.Close()

	apiService := service.NewAPI(node, cfg.Host, cfg.Port)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := apiService.Start(ctx); err != nil {
		log.Fatalf("cannot start API service: %v", err)
	}
	log.Infow("node running", "dataDir", cfg.DataDir, "host", cfg.Host, "port", cfg.Port)

	<-ctx.Done()
	log.Infow("shutting down")
	apiService.Stop()
}
