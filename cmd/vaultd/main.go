package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"vaultdao/config"
	"vaultdao/core"
	"vaultdao/core/events"
	"vaultdao/native/vault"
	"vaultdao/observability/logging"
	"vaultdao/rpc"
	"vaultdao/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	memDB := flag.Bool("memdb", false, "DEV ONLY: keep all state in memory instead of the data directory")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	env := strings.TrimSpace(os.Getenv("VAULT_ENV"))
	logger := logging.Setup("vaultd", env, logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})

	var db storage.Database
	if *memDB {
		logger.Warn("using in-memory database; state will not survive a restart")
		db = storage.NewMemDB()
	} else {
		db, err = storage.NewLevelDB(cfg.DataDir)
		if err != nil {
			panic(fmt.Sprintf("Failed to open database: %v", err))
		}
	}
	defer db.Close()

	node := core.NewNode(db)
	node.SetEmitter(&logEmitter{logger: logger})

	genesisCfg, err := cfg.Genesis.VaultConfig()
	if err != nil {
		logger.Error("Failed to build vault policy from config", slog.Any("error", err))
		os.Exit(1)
	}
	balances, err := cfg.Genesis.TokenBalances()
	if err != nil {
		logger.Error("Failed to parse genesis balances", slog.Any("error", err))
		os.Exit(1)
	}
	if err := node.ApplyGenesis(vault.Address(cfg.Genesis.Admin), genesisCfg, balances); err != nil {
		logger.Error("Failed to apply genesis", slog.Any("error", err))
		os.Exit(1)
	}

	server := rpc.NewServer(node, logger, cfg.RPCRateLimit, cfg.RPCRateBurst)
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

// logEmitter forwards engine events to the structured log. Attribute values
// carrying addresses are masked; operational fields pass through the
// redaction allowlist unchanged.
type logEmitter struct {
	logger *slog.Logger
}

func (e *logEmitter) Emit(evt events.Event) {
	record, ok := evt.(*events.Record)
	if !ok || record == nil {
		return
	}
	attrs := make([]any, 0, len(record.Attributes)+1)
	attrs = append(attrs, slog.String("event", record.Type))
	for key, value := range record.Attributes {
		attrs = append(attrs, logging.MaskField(key, value))
	}
	e.logger.Info("vault event", attrs...)
}
