package ledger

import (
	"fmt"
	"math"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/spacemeshos/go-statekeeper/common/types"
)

// txApplier applies the i-th transaction of a block through the journal.
type txApplier func(j *journal, number types.BlockNumber, i int) error

// ApplyTransferBlock applies signed transfers. The block is committed only if
// every transfer is valid.
func (s *State) ApplyTransferBlock(block *types.Block) error {
	if err := checkKind(block, types.TransferBlock); err != nil {
		return err
	}
	err := s.apply(block, len(block.Transfers), func(j *journal, number types.BlockNumber, i int) error {
		return s.transfer(j, number, &block.Transfers[i])
	})
	if err != nil {
		return err
	}
	if block.Reverted() {
		block.Transfers = block.Transfers[:0]
	}
	return nil
}

// ApplyDepositBlock credits deposits, creating accounts that don't exist yet.
func (s *State) ApplyDepositBlock(block *types.Block) error {
	if err := checkKind(block, types.DepositBlock); err != nil {
		return err
	}
	err := s.apply(block, len(block.Deposits), func(j *journal, _ types.BlockNumber, i int) error {
		return deposit(j, &block.Deposits[i])
	})
	if err != nil {
		return err
	}
	if block.Reverted() {
		block.Deposits = block.Deposits[:0]
	}
	return nil
}

// ApplyExitBlock withdraws the full balance of every exiting account.
// Amount of each honored exit is set to the withdrawn balance.
func (s *State) ApplyExitBlock(block *types.Block) error {
	if err := checkKind(block, types.ExitBlock); err != nil {
		return err
	}
	err := s.apply(block, len(block.Exits), func(j *journal, _ types.BlockNumber, i int) error {
		return exit(j, &block.Exits[i])
	})
	if err != nil {
		return err
	}
	if block.Reverted() {
		block.Exits = block.Exits[:0]
	}
	return nil
}

func (s *State) apply(block *types.Block, n int, applyTx txApplier) error {
	start := time.Now()
	kind := block.Kind.String()
	if s.next > types.LastBlock {
		return fmt.Errorf("%w: %s block after %d", ErrBlocksExhausted, kind, types.LastBlock)
	}
	block.Number = s.next
	block.Rejected = nil

	j := newJournal(s.tree)
	for i := 0; i < n; i++ {
		err := applyTx(j, block.Number, i)
		if err == nil {
			continue
		}
		if !IsRejection(err) {
			if rerr := j.revert(); rerr != nil {
				s.logger.Error("failed to restore accounts",
					zap.Uint32("block", block.Number.Uint32()),
					zap.Error(rerr),
				)
			}
			return fmt.Errorf("%w: %s block %d tx %d: %w", ErrInternal, kind, block.Number, i, err)
		}
		rejectedTxs.WithLabelValues(kind).Inc()
		block.Rejected = append(block.Rejected, types.Rejection{Position: uint32(i), Reason: err.Error()})
		s.logger.Debug("tx rejected",
			zap.Uint32("block", block.Number.Uint32()),
			zap.String("kind", kind),
			zap.Int("position", i),
			zap.Error(err),
		)
	}
	if block.Reverted() {
		if err := j.revert(); err != nil {
			return fmt.Errorf("%w: revert %s block %d: %w", ErrInternal, kind, block.Number, err)
		}
		revertedBlocks.WithLabelValues(kind).Inc()
	}
	root, err := s.tree.RootHash()
	if err != nil {
		return fmt.Errorf("%w: root of %s block %d: %w", ErrInternal, kind, block.Number, err)
	}
	block.NewRoot = root
	s.next = s.next.Add(1)
	blockNumber.Set(float64(s.next))
	applyDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	s.logger.Info("applied block",
		zap.Object("block", block),
		zap.Int("touched", j.touched()),
		zap.Bool("reverted", block.Reverted()),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

func validAmount(amount *big.Int) error {
	if amount == nil {
		return fmt.Errorf("%w: missing", ErrInvalidAmount)
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	return nil
}

func (s *State) transfer(j *journal, number types.BlockNumber, tx *types.TransferTx) error {
	if err := validAmount(tx.Amount); err != nil {
		return err
	}
	sender, ok := j.load(tx.From)
	if !ok {
		return fmt.Errorf("%w: sender %d", ErrUnknownAccount, tx.From)
	}
	receiver := sender
	if tx.To != tx.From {
		receiver, ok = j.load(tx.To)
		if !ok {
			return fmt.Errorf("%w: receiver %d", ErrUnknownAccount, tx.To)
		}
	}
	if tx.ValidUntil < number {
		return fmt.Errorf("%w: valid until %d, block %d", ErrExpired, tx.ValidUntil, number)
	}
	if tx.Nonce != sender.Nonce {
		return fmt.Errorf("%w: expected %d, got %d", ErrNonceMismatch, sender.Nonce, tx.Nonce)
	}
	if sender.Nonce == math.MaxUint32 {
		return fmt.Errorf("%w: account %d", ErrNonceExhausted, tx.From)
	}
	if !s.verifier.VerifyTransfer(sender.PublicKey, tx) {
		return fmt.Errorf("%w: sender %d", ErrBadSignature, tx.From)
	}
	if sender.Balance.Cmp(tx.Amount) < 0 {
		return fmt.Errorf("%w: account %d has %s, needs %s", ErrInsufficientBalance, tx.From, sender.Balance, tx.Amount)
	}

	sender.Nonce++
	if tx.To == tx.From {
		return j.store(tx.From, sender)
	}
	sender.Balance.Sub(sender.Balance, tx.Amount)
	receiver.Balance.Add(receiver.Balance, tx.Amount)
	// receiver first: a rejected credit must leave the sender untouched
	if err := j.store(tx.To, receiver); err != nil {
		return err
	}
	return j.store(tx.From, sender)
}

func deposit(j *journal, tx *types.DepositTx) error {
	if err := validAmount(tx.Amount); err != nil {
		return err
	}
	acc, ok := j.load(tx.Account)
	if !ok {
		if tx.PublicKey.Empty() {
			return fmt.Errorf("%w: %d and no public key to create it", ErrUnknownAccount, tx.Account)
		}
		acc = types.NewAccount(tx.PublicKey)
	}
	acc.Balance.Add(acc.Balance, tx.Amount)
	return j.store(tx.Account, acc)
}

func exit(j *journal, tx *types.ExitTx) error {
	acc, ok := j.load(tx.Account)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownAccount, tx.Account)
	}
	tx.Amount = new(big.Int).Set(acc.Balance)
	acc.Balance.SetInt64(0)
	return j.store(tx.Account, acc)
}
