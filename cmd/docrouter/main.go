// cmd/docrouter/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"docrouter/internal/classifier"
	"docrouter/internal/common/config"
	"docrouter/internal/common/database"
	"docrouter/internal/common/filetype"
	"docrouter/internal/common/logger"
	"docrouter/internal/conversation"
	"docrouter/internal/processors/document"
	"docrouter/internal/processors/message"
	"docrouter/internal/processors/structured"
	"docrouter/internal/router"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file (default: ./configs/config.yaml)")
		convID     = flag.String("conversation", "", "append to an existing conversation instead of starting a new one")
		exportPath = flag.String("export", "", "export the conversation to this sqlite database after processing")
	)
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting docrouter",
		zap.String("conversation_backend", cfg.Conversation.Backend),
		zap.String("document_engine", cfg.Document.Engine),
	)

	ctx := context.Background()

	convLog, closeBackend, err := buildConversationLog(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("conversation backend init failed", zap.Error(err))
	}
	defer closeBackend()

	if cfg.Metrics.Enabled {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.Metrics.ListenAddr, nil); err != nil {
				zapLog.Warn("metrics endpoint stopped", zap.Error(err))
			}
		}()
		zapLog.Info("metrics endpoint enabled", zap.String("addr", cfg.Metrics.ListenAddr))
	}

	docHandler, err := document.NewHandler(document.Config{
		Engine:       cfg.Document.Engine,
		MaxSizeBytes: cfg.Document.MaxSizeBytes,
	}, log)
	if err != nil {
		zapLog.Fatal("document handler init failed", zap.Error(err))
	}

	r := router.New(
		classifier.New(classifier.DefaultConfig(), log),
		structured.NewHandler(structured.DefaultConfig(), log),
		message.NewHandler(message.DefaultConfig(), log),
		docHandler,
		convLog,
		log,
	)

	input, source, err := readInput(flag.Args())
	if err != nil {
		zapLog.Fatal("failed to read input", zap.Error(err))
	}

	if source != "" {
		zapLog.Info("processing file",
			zap.String("path", source),
			zap.String("detected_format", string(filetype.Detect(source))),
		)
	}

	outcome, err := r.Process(ctx, input, *convID)
	if err != nil {
		zapLog.Fatal("processing failed", zap.Error(err))
	}

	printOutcome(outcome)

	if *exportPath != "" {
		db, err := conversation.OpenSQLite(*exportPath)
		if err != nil {
			zapLog.Fatal("export database open failed", zap.Error(err))
		}
		defer db.Close()

		if err := conversation.ExportSQLite(ctx, db, convLog, outcome.ConversationID); err != nil {
			zapLog.Fatal("conversation export failed", zap.Error(err))
		}
		zapLog.Info("conversation exported",
			zap.String("conversation_id", outcome.ConversationID),
			zap.String("path", *exportPath),
		)
	}
}

// buildConversationLog selects the configured backend.
func buildConversationLog(ctx context.Context, cfg *config.Config, log logger.Logger) (conversation.Log, func(), error) {
	switch cfg.Conversation.Backend {
	case "redis":
		client, err := database.NewRedis(cfg.Conversation.Redis)
		if err != nil {
			return nil, nil, err
		}
		if err := client.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, err
		}
		return conversation.NewRedisLog(client.GetClient(), log), func() { client.Close() }, nil
	default:
		return conversation.NewMemoryLog(), func() {}, nil
	}
}

// readInput loads the positional file argument, or stdin when absent.
func readInput(args []string) ([]byte, string, error) {
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, "", err
		}
		return data, args[0], nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, "", err
	}
	return data, "", nil
}

func printOutcome(outcome *router.Outcome) {
	fmt.Printf("conversation: %s\n", outcome.ConversationID)
	fmt.Printf("format:       %s\n", outcome.Classification.Format)
	fmt.Printf("intent:       %s\n", outcome.Classification.Intent)

	if outcome.Result.OK() {
		data, err := json.MarshalIndent(outcome.Result.Data, "", "  ")
		if err == nil {
			fmt.Printf("result:\n%s\n", data)
		}
	} else {
		fmt.Printf("error:  %s\ndetail: %s\n", outcome.Result.Error.Kind, outcome.Result.Error.Details)
	}

	fmt.Println("trail:")
	for _, entry := range outcome.History {
		line, err := json.Marshal(entry)
		if err != nil {
			continue
		}
		fmt.Printf("  %s\n", line)
	}
}

