package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "staybook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisDB              = 0
	DefaultListingOwnerCacheTTL = 10 * time.Minute

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Recent-window scan used when no start position is given and the deploy
	// block is unknown.
	DefaultLedgerLookbackBlocks = 500_000
	DefaultLedgerDeployBlock    = 0
	DefaultCheckInHourUTC       = 15

	DefaultLedgerTopic    = "staybook.ledger"
	DefaultLedgerDLQTopic = "dlq-staybook-ingest"
	DefaultIngestGroupID  = "staybook-ingest"

	DefaultAuditCron = "@every 5m"

	DefaultPaginationLimit = 100
)
