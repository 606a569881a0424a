package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/timmy/modguard/internal/config"
	"github.com/timmy/modguard/internal/logger"
	"github.com/timmy/modguard/internal/repository"
	"github.com/timmy/modguard/internal/service"
	"github.com/timmy/modguard/internal/storage"
)

const s3Prefix = "s3://"

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "modguard-lexicon",
	})
	logger.SetDefaultLogger(appLogger)

	seed := flag.Bool("seed", false, "Insert the configured seed words")
	importFrom := flag.String("import", "", "Word list to import: a local file, or s3://<key> in the configured bucket (s3:// alone uses storage.lexicon_key)")
	exportTo := flag.String("export", "", "Object key to export the lexicon to; '-' writes to stdout")
	ensureBucket := flag.Bool("ensure-bucket", false, "Create the storage bucket before exporting")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if !*seed && *importFrom == "" && *exportTo == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	var objectStorage storage.ObjectStorage
	if cfg.Storage.Enabled() {
		objectStorage, err = storage.NewStorage(&cfg.Storage)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize storage")
		}
	}

	ctx, cancel := context.WithCancel(appLogger.WithContext(context.Background()))
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	lexicon := service.NewLexiconService(repository.NewLexiconRepository(db), objectStorage)

	if *seed {
		added, err := lexicon.Seed(ctx, cfg.Lexicon.SeedWords)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to seed lexicon")
		}
		appLogger.WithField(logger.FieldCount, added).Info("Seed completed")
	}

	if *importFrom != "" {
		var added int
		if key, ok := strings.CutPrefix(*importFrom, s3Prefix); ok {
			added, err = lexicon.ImportObject(ctx, objectKey(key, cfg))
		} else {
			added, err = importFile(ctx, lexicon, *importFrom)
		}
		if errors.Is(err, service.ErrWordListNotFound) {
			appLogger.WithField("source", *importFrom).Fatal("Word list object does not exist in the configured bucket")
		}
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to import lexicon")
		}
		appLogger.WithFields(logger.Fields{
			"source":          *importFrom,
			logger.FieldCount: added,
		}).Info("Import completed")
	}

	if *exportTo != "" {
		if *exportTo == "-" {
			if _, err := lexicon.Export(ctx, os.Stdout); err != nil {
				appLogger.WithError(err).Fatal("Failed to export lexicon")
			}
			return
		}

		key := objectKey(strings.TrimPrefix(*exportTo, s3Prefix), cfg)
		if *ensureBucket && objectStorage != nil {
			if err := objectStorage.EnsureBucket(ctx); err != nil {
				appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
			}
		}
		n, err := lexicon.ExportObject(ctx, key)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to export lexicon")
		}
		appLogger.WithFields(logger.Fields{
			"key":             key,
			logger.FieldCount: n,
		}).Info("Export completed")
	}
}

func importFile(ctx context.Context, lexicon *service.LexiconService, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return lexicon.Import(ctx, f)
}

// objectKey falls back to the configured lexicon key for a bare "s3://".
func objectKey(key string, cfg *config.Config) string {
	if key == "" {
		return cfg.Storage.LexiconKey
	}
	return key
}
