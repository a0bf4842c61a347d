package config

// This file defines the Redis client constructor.  Redis backs the ticket
// store and is also used for distributed rate limiting and QR image caching.
// If the server does not answer during startup the constructor returns nil
// and callers degrade gracefully: the store falls back to the in-process
// backend and caching and rate limiting are disabled.

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// loadRedisConfig reads the Redis connection settings.
// Supported variables are:
//
//	REDIS_URL - redis:// or rediss:// URL (takes precedence over everything else)
//	REDIS_HOST and REDIS_PORT - hostname and port of the Redis server
//	REDIS_ADDR - host:port shorthand (used when host/port are not both set)
//	REDIS_PASSWORD - optional password
//	REDIS_DB - database number (default 0)
//	REDIS_TLS - enable TLS when "true" or "1"
func loadRedisConfig() RedisConfig {
	rc := RedisConfig{
		Addr:     envStr("REDIS_ADDR", ""),
		Password: envStr("REDIS_PASSWORD", ""),
		DB:       envInt("REDIS_DB", 0),
		TLS:      envBool("REDIS_TLS", false),
	}
	host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", "")
	if host != "" && port != "" {
		rc.Addr = host + ":" + port
	}
	if u := envStr("REDIS_URL", ""); u != "" {
		if opt, err := redis.ParseURL(u); err == nil {
			rc.Addr = opt.Addr
			rc.Password = opt.Password
			rc.DB = opt.DB
			rc.TLS = opt.TLSConfig != nil || strings.HasPrefix(u, "rediss://")
		}
	}
	if rc.Addr == "" {
		rc.Addr = "localhost:6379"
	}
	return rc
}

// NewRedisClient instantiates a Redis client from rc and pings it with a
// short timeout.  The returned client is nil if the server cannot be reached.
func NewRedisClient(rc RedisConfig) *redis.Client {
	var tlsConf *tls.Config
	if rc.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      rc.Addr,
		Password:  rc.Password,
		DB:        rc.DB,
		TLSConfig: tlsConf,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
