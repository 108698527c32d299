package types

import (
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap/zapcore"
)

// BlockNumber is the sequence number assigned to a block when it is applied.
type BlockNumber uint32

// FirstBlock is the number assigned to the first block applied to a fresh ledger.
const FirstBlock BlockNumber = 1

// LastBlock is the highest number assigned to a block. The counter is never
// advanced past LastBlock+1, so it can't wrap.
const LastBlock BlockNumber = math.MaxUint32 - 1

// Uint32 returns the block number as uint32.
func (n BlockNumber) Uint32() uint32 {
	return uint32(n)
}

// Add returns the block number advanced by delta.
func (n BlockNumber) Add(delta uint32) BlockNumber {
	return n + BlockNumber(delta)
}

// String implements fmt.Stringer.
func (n BlockNumber) String() string {
	return strconv.FormatUint(uint64(n), 10)
}

// BlockKind selects which transaction list of a Block is populated.
type BlockKind uint8

const (
	// DepositBlock carries deposits observed on chain.
	DepositBlock BlockKind = iota + 1
	// TransferBlock carries signed transfers from the mempool.
	TransferBlock
	// ExitBlock carries exits observed on chain.
	ExitBlock
)

// String implements fmt.Stringer.
func (k BlockKind) String() string {
	switch k {
	case DepositBlock:
		return "deposit"
	case TransferBlock:
		return "transfer"
	case ExitBlock:
		return "exit"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Rejection describes a transaction that was dropped while applying a block.
// Position refers to the transaction list as it was submitted.
type Rejection struct {
	Position uint32
	Reason   string
}

// Block is an ordered batch of transactions of a single kind.
//
// Number and NewRoot are assigned when the block is applied. After application
// the transaction list holds only the honored transactions: all of them if the
// block was committed, none if it was reverted. Rejected lists every dropped
// transaction by its submitted position.
type Block struct {
	Kind      BlockKind
	Number    BlockNumber
	NewRoot   Hash32
	Deposits  []DepositTx
	Transfers []TransferTx
	Exits     []ExitTx
	Rejected  []Rejection
}

// NewDepositBlock returns a block of deposits.
func NewDepositBlock(txs ...DepositTx) *Block {
	return &Block{Kind: DepositBlock, Deposits: txs}
}

// NewTransferBlock returns a block of transfers.
func NewTransferBlock(txs ...TransferTx) *Block {
	return &Block{Kind: TransferBlock, Transfers: txs}
}

// NewExitBlock returns a block of exits.
func NewExitBlock(txs ...ExitTx) *Block {
	return &Block{Kind: ExitBlock, Exits: txs}
}

// Len returns the number of transactions in the list selected by Kind.
func (b *Block) Len() int {
	switch b.Kind {
	case DepositBlock:
		return len(b.Deposits)
	case TransferBlock:
		return len(b.Transfers)
	case ExitBlock:
		return len(b.Exits)
	}
	return 0
}

// Reverted returns true if any transaction was rejected, which means that none
// of the transactions were committed.
func (b *Block) Reverted() bool {
	return len(b.Rejected) > 0
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (b *Block) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	if b == nil {
		return nil
	}
	encoder.AddString("kind", b.Kind.String())
	encoder.AddUint32("number", b.Number.Uint32())
	encoder.AddString("root", b.NewRoot.ShortString())
	encoder.AddInt("txs", b.Len())
	encoder.AddInt("rejected", len(b.Rejected))
	return nil
}
