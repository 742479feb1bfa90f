// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// piece.go provides a Valkey-backed cache of single content pieces.
// A piece fetched by ID is stored as JSON so repeated reads skip the
// database. Writes through the API invalidate the entry.
//
// Invalidation leaves a short-lived tombstone instead of deleting the key,
// and fills only write absent keys. A read that loaded a piece before a
// concurrent write therefore cannot put the old version back.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"contentplanner/internal/models"
)

const (
	// pieceKeyPrefix is the Valkey key prefix for cached content pieces.
	pieceKeyPrefix = "piece:"

	// DefaultPieceTTL is how long a cached piece stays valid.
	DefaultPieceTTL = 5 * time.Minute

	// tombstoneTTL must outlive any in-flight read (the server's write
	// timeout is 15s).
	tombstoneTTL = 30 * time.Second

	tombstone = "-"
)

// PieceCache manages content piece caching in Valkey. A nil *PieceCache is
// valid: every lookup misses and writes are dropped.
type PieceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPieceCache creates a new piece cache backed by the given Valkey client.
func NewPieceCache(client *redis.Client, ttl time.Duration) *PieceCache {
	if ttl == 0 {
		ttl = DefaultPieceTTL
	}
	return &PieceCache{client: client, ttl: ttl}
}

// PieceKey returns the cache key for a content piece ID.
func PieceKey(id int64) string {
	return pieceKeyPrefix + strconv.FormatInt(id, 10)
}

// Get returns the cached piece for id. Any error counts as a miss.
func (pc *PieceCache) Get(ctx context.Context, id int64) (*models.ContentPiece, bool) {
	if pc == nil {
		return nil, false
	}
	val, err := pc.client.Get(ctx, PieceKey(id)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("piece cache get error", "id", id, "error", err)
		return nil, false
	}
	if string(val) == tombstone {
		return nil, false
	}

	var p models.ContentPiece
	if err := json.Unmarshal(val, &p); err != nil {
		slog.Warn("piece cache decode error", "id", id, "error", err)
		return nil, false
	}
	slog.Debug("piece cache hit", "id", id)
	return &p, true
}

// Set stores a piece under its ID with the configured TTL. It never
// overwrites an existing entry or tombstone.
func (pc *PieceCache) Set(ctx context.Context, p *models.ContentPiece) {
	if pc == nil || p == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		slog.Warn("piece cache encode error", "id", p.ID, "error", err)
		return
	}
	if err := pc.client.SetNX(ctx, PieceKey(p.ID), data, pc.ttl).Err(); err != nil {
		slog.Warn("piece cache set error", "id", p.ID, "error", err)
	}
}

// Invalidate replaces a cached piece with a tombstone, so lookups miss and
// fills are refused until the tombstone expires.
func (pc *PieceCache) Invalidate(ctx context.Context, id int64) {
	if pc == nil {
		return
	}
	if err := pc.client.Set(ctx, PieceKey(id), tombstone, tombstoneTTL).Err(); err != nil {
		slog.Warn("piece cache invalidate error", "id", id, "error", err)
		return
	}
	slog.Debug("piece cache invalidated", "id", id)
}

// InvalidateAll removes all cached pieces by scanning for the prefix.
func (pc *PieceCache) InvalidateAll(ctx context.Context) {
	if pc == nil {
		return
	}
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, pieceKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("piece cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("piece cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("piece cache fully cleared", "deleted", deleted)
	}
}
