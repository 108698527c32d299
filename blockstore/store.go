// Package blockstore persists applied blocks in order and replays them into the
// state keeper.
package blockstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spacemeshos/go-statekeeper/codec"
	"github.com/spacemeshos/go-statekeeper/common/types"
	"github.com/spacemeshos/go-statekeeper/database"
)

var (
	// ErrNotFound is returned when no block is stored under the number.
	ErrNotFound = errors.New("block not found")
	// ErrOutOfOrder is returned when a block doesn't follow the last stored block.
	ErrOutOfOrder = errors.New("block out of order")
	// ErrConflict is returned when a block with the same number but another root
	// is already stored.
	ErrConflict = errors.New("conflicting block")
)

var (
	blockPrefix = []byte("b/")
	// first key past every block key.
	blockPrefixEnd = []byte("b0")
)

func blockKey(number types.BlockNumber) []byte {
	key := make([]byte, len(blockPrefix)+4)
	copy(key, blockPrefix)
	binary.BigEndian.PutUint32(key[len(blockPrefix):], number.Uint32())
	return key
}

func keyNumber(key []byte) types.BlockNumber {
	return types.BlockNumber(binary.BigEndian.Uint32(key[len(blockPrefix):]))
}

// Opt for configuring Store.
type Opt func(*Store)

// WithLogger defines logger for Store.
func WithLogger(logger *zap.Logger) Opt {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store keeps blocks keyed by their number. Numbers are contiguous from the
// first stored block.
type Store struct {
	logger *zap.Logger
	db     *database.LDBDatabase

	mu sync.Mutex
	// last is zero when the store is empty.
	last types.BlockNumber
}

// New opens the store on top of db.
func New(db *database.LDBDatabase, opts ...Opt) (*Store, error) {
	s := &Store{
		logger: zap.NewNop(),
		db:     db,
	}
	for _, opt := range opts {
		opt(s)
	}
	key, _, err := db.Last(blockPrefix)
	switch {
	case errors.Is(err, database.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("load last block: %w", err)
	default:
		s.last = keyNumber(key)
	}
	s.logger.Info("opened block store", zap.String("path", db.Path()), zap.Uint32("last", s.last.Uint32()))
	return s, nil
}

// Add stores the block. Adding a block that is already stored with the same
// root is a no-op, which makes recording replayed blocks idempotent.
func (s *Store) Add(block *types.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last != 0 && block.Number <= s.last {
		stored, err := s.Get(block.Number)
		if err != nil {
			return err
		}
		if stored.NewRoot != block.NewRoot {
			return fmt.Errorf("%w: block %d has root %s, stored %s",
				ErrConflict, block.Number, block.NewRoot.ShortString(), stored.NewRoot.ShortString())
		}
		return nil
	}
	if s.last != 0 && block.Number != s.last+1 {
		return fmt.Errorf("%w: got %d after %d", ErrOutOfOrder, block.Number, s.last)
	}
	buf, err := codec.Encode(block)
	if err != nil {
		return fmt.Errorf("encode block %d: %w", block.Number, err)
	}
	if err := s.db.Put(blockKey(block.Number), buf); err != nil {
		return fmt.Errorf("store block %d: %w", block.Number, err)
	}
	s.last = block.Number
	return nil
}

// Get returns the block with the number.
func (s *Store) Get(number types.BlockNumber) (*types.Block, error) {
	buf, err := s.db.Get(blockKey(number))
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, number)
	}
	if err != nil {
		return nil, err
	}
	return decodeBlock(buf)
}

// Last returns the number of the last stored block.
func (s *Store) Last() (types.BlockNumber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == 0 {
		return 0, ErrNotFound
	}
	return s.last, nil
}

// Iterate calls fn for every stored block starting at from, in order, until fn
// returns false.
func (s *Store) Iterate(from types.BlockNumber, fn func(*types.Block) bool) error {
	it := s.db.Iterate(blockKey(from), blockPrefixEnd)
	defer it.Release()
	for it.Next() {
		block, err := decodeBlock(it.Value())
		if err != nil {
			return fmt.Errorf("block %d: %w", keyNumber(it.Key()), err)
		}
		if !fn(block) {
			return nil
		}
	}
	if err := it.Error(); err != nil {
		return fmt.Errorf("iterate blocks: %w", err)
	}
	return nil
}

func decodeBlock(buf []byte) (*types.Block, error) {
	var block types.Block
	if err := codec.Decode(buf, &block); err != nil {
		return nil, fmt.Errorf("decode block: %w", err)
	}
	return &block, nil
}
