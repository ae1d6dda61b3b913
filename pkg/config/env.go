package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr            = "REDIS_ADDR"
	EnvRedisPassword        = "REDIS_PASSWORD"
	EnvRedisDB              = "REDIS_DB"
	EnvListingOwnerCacheTTL = "LISTING_OWNER_CACHE_TTL"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvLedgerLookbackBlocks = "LEDGER_LOOKBACK_BLOCKS"
	EnvLedgerDeployBlock    = "LEDGER_DEPLOY_BLOCK"
	EnvCheckInHourUTC       = "CHECKIN_HOUR_UTC"

	EnvLedgerTopic    = "LEDGER_TOPIC"
	EnvLedgerDLQTopic = "LEDGER_DLQ_TOPIC"
	EnvIngestGroupID  = "INGEST_GROUP_ID"

	EnvAuditCron = "AUDIT_CRON"
)
