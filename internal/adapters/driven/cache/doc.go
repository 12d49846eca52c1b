// Package cache implements driven.ResultCache.
//
// MemoryCache keeps entries in process and suits the CLI and single-node
// servers. RedisCache shares entries across API replicas through go-redis.
// Both store opaque bytes; encoding is the caller's concern.
package cache
