// Package database wraps goleveldb for the state keeper's on-disk stores.
package database

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a key is not in the database.
var ErrNotFound = lerrors.ErrNotFound

// Config for a leveldb database.
type Config struct {
	// Cache is the memory in MiB given to the block cache and write buffers.
	Cache int `mapstructure:"cache"`
	// Handles is the number of open files leveldb may keep.
	Handles int `mapstructure:"handles"`
}

// DefaultConfig returns the default database configuration.
func DefaultConfig() Config {
	return Config{
		Cache:   16,
		Handles: 16,
	}
}

// LDBDatabase is a leveldb instance. All methods are safe for concurrent use.
type LDBDatabase struct {
	path   string
	db     *leveldb.DB
	logger *zap.Logger
}

// Open opens or creates the database at path, recovering it if it is corrupted.
func Open(path string, cfg Config, logger *zap.Logger) (*LDBDatabase, error) {
	cache := max(cfg.Cache, 16)
	handles := max(cfg.Handles, 16)
	logger.Info("opening database",
		zap.String("path", path),
		zap.Int("cache_mib", cache),
		zap.Int("handles", handles),
	)
	db, err := leveldb.OpenFile(path, &opt.Options{
		OpenFilesCacheCapacity: handles,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	})
	var corrupted *lerrors.ErrCorrupted
	if errors.As(err, &corrupted) {
		logger.Warn("recovering corrupted database", zap.String("path", path), zap.Error(err))
		db, err = leveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &LDBDatabase{path: path, db: db, logger: logger}, nil
}

// NewMemDatabase returns a database that lives in memory only.
func NewMemDatabase() *LDBDatabase {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		panic("can't open in-memory leveldb: " + err.Error())
	}
	return &LDBDatabase{path: ":memory:", db: db, logger: zap.NewNop()}
}

// Path returns the location of the database.
func (db *LDBDatabase) Path() string {
	return db.path
}

// Put stores value under key.
func (db *LDBDatabase) Put(key, value []byte) error {
	if err := db.db.Put(key, value, nil); err != nil {
		return fmt.Errorf("put value: %w", err)
	}
	return nil
}

// Get returns the value of key or ErrNotFound.
func (db *LDBDatabase) Get(key []byte) ([]byte, error) {
	value, err := db.db.Get(key, nil)
	if err != nil {
		return nil, fmt.Errorf("get value: %w", err)
	}
	return value, nil
}

// Has returns true if key exists.
func (db *LDBDatabase) Has(key []byte) (bool, error) {
	has, err := db.db.Has(key, nil)
	if err != nil {
		return false, fmt.Errorf("check value: %w", err)
	}
	return has, nil
}

// Delete removes key.
func (db *LDBDatabase) Delete(key []byte) error {
	if err := db.db.Delete(key, nil); err != nil {
		return fmt.Errorf("delete value: %w", err)
	}
	return nil
}

// Batch collects writes that are applied atomically by Write.
type Batch struct {
	db    *leveldb.DB
	batch leveldb.Batch
}

// NewBatch returns an empty batch.
func (db *LDBDatabase) NewBatch() *Batch {
	return &Batch{db: db.db}
}

// Put adds a write to the batch.
func (b *Batch) Put(key, value []byte) {
	b.batch.Put(key, value)
}

// Len returns the number of writes in the batch.
func (b *Batch) Len() int {
	return b.batch.Len()
}

// Write applies the batch.
func (b *Batch) Write() error {
	if err := b.db.Write(&b.batch, nil); err != nil {
		return fmt.Errorf("write batch: %w", err)
	}
	return nil
}

// Iterate returns an iterator over keys in [start, limit). A nil limit means no upper bound.
func (db *LDBDatabase) Iterate(start, limit []byte) iterator.Iterator {
	return db.db.NewIterator(&util.Range{Start: start, Limit: limit}, nil)
}

// Last returns the largest key with the given prefix.
func (db *LDBDatabase) Last(prefix []byte) (key, value []byte, err error) {
	it := db.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer it.Release()
	if !it.Last() {
		if err := it.Error(); err != nil {
			return nil, nil, fmt.Errorf("seek last: %w", err)
		}
		return nil, nil, ErrNotFound
	}
	return append([]byte(nil), it.Key()...), append([]byte(nil), it.Value()...), nil
}

// Close closes the database.
func (db *LDBDatabase) Close() error {
	if err := db.db.Close(); err != nil {
		db.logger.Error("failed to close database", zap.String("path", db.path), zap.Error(err))
		return fmt.Errorf("close %s: %w", db.path, err)
	}
	db.logger.Info("database closed", zap.String("path", db.path))
	return nil
}
