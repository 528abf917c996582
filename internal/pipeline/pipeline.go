// Package pipeline wires configuration into a fetcher, a sink and a batch
// runner. Both commands go through it.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tyler180/bbref-season-stats/internal/ath"
	"github.com/tyler180/bbref-season-stats/internal/batch"
	"github.com/tyler180/bbref-season-stats/internal/bbref"
	"github.com/tyler180/bbref-season-stats/internal/config"
	"github.com/tyler180/bbref-season-stats/internal/lake"
	"github.com/tyler180/bbref-season-stats/internal/store"
)

func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// BuildSink opens the configured sink. The returned func releases it and is
// never nil.
func BuildSink(ctx context.Context, cfg *config.Config, cats []bbref.Category, logger *slog.Logger) (store.Sink, func() error, error) {
	nop := func() error { return nil }
	layout, err := cfg.StoreLayout()
	if err != nil {
		return nil, nop, err
	}

	switch cfg.Sink {
	case config.SinkFile:
		return &store.FileSink{Dir: cfg.OutDir, Layout: layout}, nop, nil

	case config.SinkSQLite:
		s, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nop, err
		}
		return s, s.Close, nil

	case config.SinkPostgres:
		s, pool, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nop, err
		}
		return s, func() error { pool.Close(); return nil }, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, nop, fmt.Errorf("load aws config: %w", err)
	}
	return buildAWSSink(ctx, cfg, awsCfg, layout, cats, logger)
}

func buildAWSSink(ctx context.Context, cfg *config.Config, awsCfg aws.Config, layout store.Layout, cats []bbref.Category, logger *slog.Logger) (store.Sink, func() error, error) {
	nop := func() error { return nil }
	switch cfg.Sink {
	case config.SinkDynamoDB:
		return store.NewDynamoSink(dynamodb.NewFromConfig(awsCfg), cfg.TableName), nop, nil

	case config.SinkS3:
		s := &store.S3Sink{
			Client: s3.NewFromConfig(awsCfg),
			Bucket: cfg.S3Bucket,
			Prefix: cfg.S3Prefix,
			Layout: layout,
		}
		if !cfg.Athena() {
			return s, nop, nil
		}
		runner := newAthenaRunner(cfg, athena.NewFromConfig(awsCfg), logger)
		reg, err := lake.NewRegistrar(s, runner, cfg.AthenaDB, logger)
		if err != nil {
			return nil, nop, err
		}
		if err := reg.EnsureTables(ctx, cats); err != nil {
			return nil, nop, err
		}
		return reg, nop, nil
	}
	return nil, nop, fmt.Errorf("unknown sink %q", cfg.Sink)
}

// NewAthenaRunner builds the query runner for the configured database.
func NewAthenaRunner(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*ath.Runner, error) {
	if !cfg.Athena() {
		return nil, fmt.Errorf("ATHENA_DB is required")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newAthenaRunner(cfg, athena.NewFromConfig(awsCfg), logger), nil
}

func newAthenaRunner(cfg *config.Config, client ath.AthenaAPI, logger *slog.Logger) *ath.Runner {
	return &ath.Runner{
		Client:    client,
		Workgroup: cfg.AthenaWorkgroup,
		Database:  cfg.AthenaDB,
		OutputS3:  cfg.AthenaOutput,
		Logger:    logger,
	}
}

// StatSeries returns season/value records (header first) for one player.
func StatSeries(ctx context.Context, q Querier, db string, c bbref.Category, player, stat string) ([][]string, error) {
	return q.Query(ctx, lake.BuildStatSeries(db, c, player, stat))
}

// Querier is satisfied by *ath.Runner.
type Querier interface {
	Query(ctx context.Context, sql string) ([][]string, error)
}

// LoadStoredSeason reads the published DynamoDB copy of one season.
func LoadStoredSeason(ctx context.Context, cfg *config.Config, k store.Key) ([][]string, error) {
	if cfg.TableName == "" {
		return nil, fmt.Errorf("TABLE_NAME is required")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return store.LoadSeason(ctx, dynamodb.NewFromConfig(awsCfg), cfg.TableName, k)
}

func NewFetcher(cfg *config.Config, logger *slog.Logger) *bbref.Fetcher {
	g := bbref.NewHTTPGetter(bbref.HTTPOptions{
		Timeout:           cfg.HTTPTimeout,
		UserAgent:         cfg.UserAgent,
		RequestsPerMinute: cfg.RequestsPerMinute,
	})
	return bbref.NewFetcher(g, cfg.BaseURL, logger)
}

func NewRunner(cfg *config.Config, f batch.SeasonFetcher, sink store.Sink, logger *slog.Logger) *batch.Runner {
	return &batch.Runner{
		Fetcher:   f,
		Sink:      sink,
		Sleeper:   batch.TimerSleeper{Logger: logger},
		BatchSize: cfg.BatchSize,
		Cooldown:  cfg.Cooldown,
		Logger:    logger,
	}
}

// Run scrapes cats over the configured season range.
func Run(ctx context.Context, cfg *config.Config, cats []bbref.Category, logger *slog.Logger) (*batch.Summary, error) {
	if len(cats) == 0 {
		return nil, fmt.Errorf("no categories requested")
	}
	sink, closeSink, err := BuildSink(ctx, cfg, cats, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s sink: %w", cfg.Sink, err)
	}
	defer func() {
		if err := closeSink(); err != nil {
			logger.Warn("close sink", "err", err)
		}
	}()

	r := NewRunner(cfg, NewFetcher(cfg, logger), sink, logger)
	return r.Run(ctx, batch.Request{Categories: cats, Start: cfg.SeasonStart, End: cfg.SeasonEnd})
}
