// Package block establishes the time of a bitcoin block by asking oracle servers, and caches the
// answers.
//
// Posting expiration is measured from the time of a recent block (the "clock hash") that the
// poster cannot forge. The oracles are not trusted individually: ResolveBlock asks every
// configured oracle and keeps the answer most of them agree on. A resolved block is immutable
// history, so the cache has no eviction and the first stored value for a hash always wins.
package block

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/rein-network/rein-node/internal/database"
)

// Block is the time and height of a block hash on one network.
type Block struct {
	Hash    string `json:"hash"`
	Time    int64  `json:"time"`
	Height  int64  `json:"height"`
	Testnet bool   `json:"testnet"`
}

// ValidHash reports whether hash looks like a block hash (32 bytes, hex encoded).
func ValidHash(hash string) bool {
	if len(hash) != 64 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}

// Store persists blocks keyed by (hash, testnet).
type Store interface {
	// Get returns false if the block is not stored
	Get(ctx context.Context, hash string, testnet bool) (Block, bool, error)

	// PutIfAbsent stores b unless a block with the same key exists and returns the stored block
	PutIfAbsent(ctx context.Context, b Block) (Block, error)
}

// Cache is the block cache for one network.
type Cache struct {
	store   Store
	testnet bool
}

func NewCache(store Store, testnet bool) *Cache {
	return &Cache{store: store, testnet: testnet}
}

func (c *Cache) Get(ctx context.Context, hash string) (Block, bool, error) {
	return c.store.Get(ctx, hash, c.testnet)
}

// PutIfAbsent stores b on the cache network and returns the stored block, which is the existing
// block if the hash was already cached.
func (c *Cache) PutIfAbsent(ctx context.Context, b Block) (Block, error) {
	b.Testnet = c.testnet
	return c.store.PutIfAbsent(ctx, b)
}

type storeKey struct {
	hash    string
	testnet bool
}

// MemoryStore is a Store for a single process.
type MemoryStore struct {
	mu     sync.Mutex
	blocks map[storeKey]Block
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blocks: make(map[storeKey]Block)}
}

func (m *MemoryStore) Get(_ context.Context, hash string, testnet bool) (Block, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blocks[storeKey{hash, testnet}]
	return b, ok, nil
}

func (m *MemoryStore) PutIfAbsent(_ context.Context, b Block) (Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := storeKey{b.Hash, b.Testnet}
	if existing, ok := m.blocks[key]; ok {
		return existing, nil
	}
	m.blocks[key] = b
	return b, nil
}

// PostgresStore is a Store in the node database.
type PostgresStore struct {
	queries *database.Queries
}

func NewPostgresStore(queries *database.Queries) *PostgresStore {
	return &PostgresStore{queries: queries}
}

func (p *PostgresStore) Get(ctx context.Context, hash string, testnet bool) (Block, bool, error) {
	row, err := p.queries.GetBlock(ctx, database.GetBlockParams{Hash: hash, Testnet: testnet})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Block{}, false, nil
		}
		return Block{}, false, fmt.Errorf("failed to get block %s: %w", hash, err)
	}
	return blockFromRow(row), true, nil
}

func (p *PostgresStore) PutIfAbsent(ctx context.Context, b Block) (Block, error) {
	row, err := p.queries.CreateBlockIfNew(ctx, database.CreateBlockIfNewParams{
		Hash:    b.Hash,
		Testnet: b.Testnet,
		Time:    b.Time,
		Height:  b.Height,
	})
	if err == nil {
		return blockFromRow(row), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Block{}, fmt.Errorf("failed to store block %s: %w", b.Hash, err)
	}

	// already stored
	stored, ok, err := p.Get(ctx, b.Hash, b.Testnet)
	if err != nil {
		return Block{}, err
	}
	if !ok {
		return Block{}, fmt.Errorf("block %s was neither inserted nor found", b.Hash)
	}
	return stored, nil
}

func blockFromRow(row database.Block) Block {
	return Block{
		Hash:    row.Hash,
		Time:    row.Time,
		Height:  row.Height,
		Testnet: row.Testnet,
	}
}
