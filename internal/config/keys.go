// SPDX-License-Identifier: MIT

package config

// Environment variables. CUSTD_* take precedence over the file.
const (
	EnvConfigFile = "CUSTD_CONFIG"
	EnvLogLevel   = "CUSTD_LOG_LEVEL"
	EnvLogFormat  = "CUSTD_LOG_FORMAT"
	EnvDataDir    = "CUSTD_DATA_DIR"

	EnvListen             = "CUSTD_LISTEN"
	EnvCORSOrigins        = "CUSTD_CORS_ORIGINS"
	EnvSecurityHeaders    = "CUSTD_SECURITY_HEADERS"
	EnvRateLimitEnabled   = "CUSTD_RATE_LIMIT_ENABLED"
	EnvRateLimitRPS       = "CUSTD_RATE_LIMIT_RPS"
	EnvRateLimitWhitelist = "CUSTD_RATE_LIMIT_WHITELIST"
	EnvMaxBodyBytes       = "CUSTD_MAX_BODY_BYTES"

	EnvMetricsEnabled = "CUSTD_METRICS_ENABLED"
	EnvMetricsListen  = "CUSTD_METRICS_LISTEN"

	EnvServerReadTimeout     = "CUSTD_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout    = "CUSTD_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout     = "CUSTD_SERVER_IDLE_TIMEOUT"
	EnvServerMaxHeaderBytes  = "CUSTD_SERVER_MAX_HEADER_BYTES"
	EnvServerShutdownTimeout = "CUSTD_SERVER_SHUTDOWN_TIMEOUT"

	EnvStoreBackend      = "CUSTD_STORE_BACKEND"
	EnvStorePath         = "CUSTD_STORE_PATH"
	EnvStoreDSN          = "CUSTD_STORE_DSN"
	EnvStoreBusyTimeout  = "CUSTD_STORE_BUSY_TIMEOUT"
	EnvStoreMaxOpenConns = "CUSTD_STORE_MAX_OPEN_CONNS"

	// EnvDatabaseURI is the conventional name honoured as an alias of EnvStoreDSN.
	EnvDatabaseURI = "DATABASE_URI"

	EnvCacheBackend         = "CUSTD_CACHE_BACKEND"
	EnvCacheTTL             = "CUSTD_CACHE_TTL"
	EnvCacheCleanupInterval = "CUSTD_CACHE_CLEANUP_INTERVAL"
	EnvCacheKeyPrefix       = "CUSTD_CACHE_KEY_PREFIX"
	EnvRedisAddr            = "CUSTD_REDIS_ADDR"
	EnvRedisPassword        = "CUSTD_REDIS_PASSWORD"
	EnvRedisDB              = "CUSTD_REDIS_DB"

	EnvOTelEnabled      = "CUSTD_OTEL_ENABLED"
	EnvOTelExporter     = "CUSTD_OTEL_EXPORTER"
	EnvOTelEndpoint     = "CUSTD_OTEL_ENDPOINT"
	EnvOTelSamplingRate = "CUSTD_OTEL_SAMPLING_RATE"
	EnvOTelEnvironment  = "CUSTD_OTEL_ENVIRONMENT"
)
