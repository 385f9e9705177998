// Command indexer runs the GRC-20 knowledge-graph ingestion pipeline: it
// wires a Neo4j-backed store, an optional Redis-compatible cache, an IPFS
// gateway client, and a blockchain event source into ingest.Pipeline, then
// drives ProcessBlock over the source until canceled. It is not a general
// CLI (SPEC_FULL.md D): no subcommands, no flags, only environment-driven
// wiring.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/geo-kg/indexer/cache"
	"github.com/geo-kg/indexer/chain"
	"github.com/geo-kg/indexer/config"
	"github.com/geo-kg/indexer/ingest"
	"github.com/geo-kg/indexer/ipfs"
	"github.com/geo-kg/indexer/store"
	"github.com/geo-kg/indexer/telemetry"
)

// embeddingDim is the vector width produced by the Gemini embedding model
// spec.md §4.8's semantic_search is built against.
const embeddingDim = 768

func main() {
	logger := telemetry.NewLogger(telemetry.DefaultConfig("indexer"))

	cfg, err := config.Load("INDEXER")
	if err != nil {
		logger.WithError(err).Fatal("loading configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	graphStore, err := store.NewNeo4jStore(ctx, cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password)
	if err != nil {
		logger.WithError(err).Fatal("connecting to neo4j")
	}
	defer graphStore.Close(ctx)

	if err := graphStore.CreateVectorIndex(ctx, "vector_index", embeddingDim); err != nil {
		logger.WithError(err).Fatal("ensuring vector index")
	}

	var kvCache *cache.Cache
	if len(cfg.Cache.Servers) > 0 {
		kvCache, err = cache.New(cfg.Cache.Servers)
		if err != nil {
			logger.WithError(err).Warn("cache unavailable, continuing without it")
			kvCache = nil
		}
	}

	localCache, err := ipfs.NewLocalCache(os.TempDir() + "/indexer-ipfs-cache")
	if err != nil {
		logger.WithError(err).Fatal("creating ipfs local cache")
	}
	ipfsClient := ipfs.NewHTTPClient(
		cfg.Ipfs.GatewayURL,
		cfg.Ipfs.RetryMax,
		time.Duration(cfg.Ipfs.RetryCapSecs)*time.Second,
		localCache,
	)

	pipeline := ingest.NewPipeline(graphStore, kvCache, ipfsClient, logger)

	source, err := newChainSource(cfg.Chain)
	if err != nil {
		logger.WithError(err).Fatal("constructing chain source")
	}

	run(ctx, logger, pipeline, source)
}

// run drains source until ctx is canceled, handing each block to pipeline
// in order. A ProcessBlock error is logged with a correlation id and the
// loop continues at the next block: per §4.6's idempotency note, a failed
// block is safe to retry on the next run rather than aborting the process.
func run(ctx context.Context, logger *logrus.Logger, pipeline *ingest.Pipeline, source chain.Source) {
	for {
		block, err := source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("shutting down")
				return
			}
			logger.WithError(err).Error("reading next block")
			continue
		}

		blockCtx := telemetry.WithCorrelationID(ctx, block.Cursor.Opaque)
		if err := pipeline.ProcessBlock(blockCtx, block); err != nil {
			telemetry.FromContext(blockCtx, logger).
				WithField("block_number", block.BlockNumber).
				WithError(err).
				Error("processing block")
		}
	}
}

// newChainSource constructs the blockchain event source. The substreams gRPC
// client itself is out of scope here (SPEC_FULL.md Non-goals: no consensus);
// this indexer is built to consume chain.Source, and operators supply a
// concrete implementation that decodes a Substreams package into
// chain.BlockScopedData at cfg.SubstreamsEndpointURL.
func newChainSource(cfg config.ChainConfig) (chain.Source, error) {
	if cfg.SubstreamsEndpointURL == "" {
		return nil, fmt.Errorf("INDEXER_SUBSTREAMS_ENDPOINT_URL not set: no chain.Source configured")
	}
	return nil, fmt.Errorf("no chain.Source implementation wired for endpoint %s: provide one via a build-specific newChainSource", cfg.SubstreamsEndpointURL)
}
