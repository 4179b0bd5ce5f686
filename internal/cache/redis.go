package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"serverrewards/internal/model"

	"github.com/redis/go-redis/v9"
)

// Buffer configuration
const (
	MaxBatchSize    = 20
	FlushTimeout    = 2 * time.Minute
	CleanupInterval = 5 * time.Minute
)

// ErrNotCleared is returned by Flush when flushed documents stay pending.
var ErrNotCleared = errors.New("flushed documents were not cleared from the buffer")

// FlushFunc is called to persist buffered documents.
type FlushFunc func(ctx context.Context, docs []*model.BufferedDocument) error

var deleteIfUnchangedScript = redis.NewScript(`
	if redis.call("HGET", KEYS[1], ARGV[1]) == ARGV[2] then
		redis.call("HDEL", KEYS[1], ARGV[1])
		redis.call("SREM", KEYS[2], ARGV[1])
		return 1
	else
		return 0
	end
`)

// RedisDocumentBuffer uses Redis for write-behind persistence. The latest
// body of each document waits in a hash until the background flush hands
// it to the repository; a newer write to the same document replaces it.
type RedisDocumentBuffer struct {
	client        *redis.Client
	flushFunc     FlushFunc
	flushTicker   *time.Ticker
	cleanupTicker *time.Ticker
	stopFlush     chan struct{}
	flushDone     chan struct{}
	stopOnce      sync.Once
	keyPrefix     string
}

// RedisBufferConfig holds configuration for the Redis buffer.
type RedisBufferConfig struct {
	FlushInterval time.Duration
	KeyPrefix     string
}

// NewRedisDocumentBuffer creates a Redis-backed document buffer on client.
// The buffer owns the client and closes it.
func NewRedisDocumentBuffer(client *redis.Client, cfg RedisBufferConfig, flushFunc FlushFunc) (*RedisDocumentBuffer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	if err := deleteIfUnchangedScript.Load(ctx, client).Err(); err != nil {
		return nil, err
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "serverrewards:documents"
	}
	interval := cfg.FlushInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	b := &RedisDocumentBuffer{
		client:        client,
		flushFunc:     flushFunc,
		flushTicker:   time.NewTicker(interval),
		cleanupTicker: time.NewTicker(CleanupInterval),
		stopFlush:     make(chan struct{}),
		flushDone:     make(chan struct{}),
		keyPrefix:     keyPrefix,
	}

	go b.backgroundFlush()
	go b.backgroundCleanup()

	log.Printf("[RedisDocumentBuffer] Started - prefix:%s, flush:%v, batch:%d", keyPrefix, interval, MaxBatchSize)
	return b, nil
}

func (b *RedisDocumentBuffer) bufferKey() string {
	return b.keyPrefix + ":buffer"
}

func (b *RedisDocumentBuffer) pendingKey() string {
	return b.keyPrefix + ":pending"
}

// Add buffers a document write in Redis.
func (b *RedisDocumentBuffer) Add(ctx context.Context, name model.DocumentName, body []byte) error {
	data := &model.BufferedDocument{
		Name:      name,
		Body:      body,
		UpdatedAt: time.Now(),
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	pipe := b.client.Pipeline()
	pipe.HSet(ctx, b.bufferKey(), string(name), jsonData)
	pipe.SAdd(ctx, b.pendingKey(), string(name))
	_, err = pipe.Exec(ctx)
	return err
}

// Get returns a pending write for name, or nil when none is buffered.
func (b *RedisDocumentBuffer) Get(ctx context.Context, name model.DocumentName) (*model.BufferedDocument, error) {
	data, err := b.client.HGet(ctx, b.bufferKey(), string(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var doc model.BufferedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Count returns the number of pending documents.
func (b *RedisDocumentBuffer) Count(ctx context.Context) (int64, error) {
	return b.client.SCard(ctx, b.pendingKey()).Result()
}

// FlushBatch writes up to MaxBatchSize documents to the repository.
func (b *RedisDocumentBuffer) FlushBatch(ctx context.Context) (int, error) {
	flushed, _, err := b.flushBatch(ctx)
	return flushed, err
}

// flushBatch also reports how many written documents left the buffer.
func (b *RedisDocumentBuffer) flushBatch(ctx context.Context) (int, int, error) {
	names, err := b.client.SRandMemberN(ctx, b.pendingKey(), MaxBatchSize).Result()
	if err != nil {
		return 0, 0, err
	}

	if len(names) == 0 {
		return 0, 0, nil
	}

	docs := make([]*model.BufferedDocument, 0, len(names))
	originalData := make(map[string]string)

	for _, name := range names {
		data, err := b.client.HGet(ctx, b.bufferKey(), name).Bytes()
		if errors.Is(err, redis.Nil) {
			b.client.SRem(ctx, b.pendingKey(), name)
			continue
		}
		if err != nil {
			log.Printf("[RedisDocumentBuffer] Error getting %s: %v", name, err)
			continue
		}

		originalData[name] = string(data)

		var doc model.BufferedDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			log.Printf("[RedisDocumentBuffer] Error unmarshaling %s: %v", name, err)
			b.client.HDel(ctx, b.bufferKey(), name)
			b.client.SRem(ctx, b.pendingKey(), name)
			delete(originalData, name)
			continue
		}
		docs = append(docs, &doc)
	}

	if len(docs) == 0 {
		return 0, 0, nil
	}

	if err := b.flushFunc(ctx, docs); err != nil {
		log.Printf("[RedisDocumentBuffer] Flush error: %v", err)
		return 0, 0, err
	}

	// A document rewritten during the flush keeps its newer body pending.
	cleared := 0
	for name, raw := range originalData {
		n, err := deleteIfUnchangedScript.Run(ctx, b.client, []string{b.bufferKey(), b.pendingKey()}, name, raw).Int()
		if err != nil {
			log.Printf("[RedisDocumentBuffer] Error clearing %s: %v", name, err)
			continue
		}
		cleared += n
	}

	log.Printf("[RedisDocumentBuffer] Flushed %d documents (%d cleared)", len(docs), cleared)
	return len(docs), cleared, nil
}

// Flush drains the buffer completely. It stops with ErrNotCleared when a
// batch was written but nothing could be removed from the buffer.
func (b *RedisDocumentBuffer) Flush(ctx context.Context) error {
	for {
		flushed, cleared, err := b.flushBatch(ctx)
		if err != nil {
			return err
		}
		if flushed == 0 {
			return nil
		}
		if cleared == 0 {
			return ErrNotCleared
		}
	}
}

// CleanupOrphans drops pending markers whose body is gone and bodies that
// can no longer be decoded.
func (b *RedisDocumentBuffer) CleanupOrphans(ctx context.Context) (int, error) {
	names, err := b.client.SMembers(ctx, b.pendingKey()).Result()
	if err != nil {
		return 0, err
	}

	removed := 0
	pipe := b.client.Pipeline()
	for _, name := range names {
		data, err := b.client.HGet(ctx, b.bufferKey(), name).Bytes()
		if errors.Is(err, redis.Nil) {
			pipe.SRem(ctx, b.pendingKey(), name)
			removed++
			continue
		}
		if err != nil {
			continue
		}

		var doc model.BufferedDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			pipe.HDel(ctx, b.bufferKey(), name)
			pipe.SRem(ctx, b.pendingKey(), name)
			removed++
		}
	}

	if removed > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			log.Printf("[RedisDocumentBuffer] Cleanup exec error: %v", err)
			return 0, err
		}
		log.Printf("[RedisDocumentBuffer] Cleaned up %d orphaned entries", removed)
	}
	return removed, nil
}

func (b *RedisDocumentBuffer) backgroundFlush() {
	defer close(b.flushDone)
	for {
		select {
		case <-b.flushTicker.C:
			ctx, cancel := context.WithTimeout(context.Background(), FlushTimeout)
			if _, err := b.FlushBatch(ctx); err != nil {
				log.Printf("[RedisDocumentBuffer] Background flush error: %v", err)
			}
			cancel()
		case <-b.stopFlush:
			log.Printf("[RedisDocumentBuffer] Shutdown: flushing remaining documents...")
			ctx, cancel := context.WithTimeout(context.Background(), FlushTimeout)
			if err := b.Flush(ctx); err != nil {
				log.Printf("[RedisDocumentBuffer] Shutdown flush error: %v", err)
			}
			cancel()
			log.Printf("[RedisDocumentBuffer] Shutdown flush complete")
			return
		}
	}
}

func (b *RedisDocumentBuffer) backgroundCleanup() {
	for {
		select {
		case <-b.cleanupTicker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			b.CleanupOrphans(ctx)
			cancel()
		case <-b.stopFlush:
			return
		}
	}
}

// Close stops the background workers, drains the buffer and closes the
// Redis client.
func (b *RedisDocumentBuffer) Close() error {
	b.stopOnce.Do(func() {
		b.flushTicker.Stop()
		b.cleanupTicker.Stop()
		close(b.stopFlush)
	})
	<-b.flushDone
	return b.client.Close()
}

var _ DocumentBuffer = (*RedisDocumentBuffer)(nil)
