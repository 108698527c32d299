package types

import (
	"errors"
	"math/big"

	"github.com/spacemeshos/go-scale"
)

const (
	// amounts and balances are limited to 512 bits on the wire.
	maxAmountBytes = 64
	maxReasonBytes = 256
	// MaxBlockTxs is the maximum number of transactions of one kind in a block.
	MaxBlockTxs = 1 << 16
)

var errNegativeAmount = errors.New("negative amount can't be encoded")

func encodeAmount(e *scale.Encoder, v *big.Int) (int, error) {
	if v == nil {
		return scale.EncodeByteSliceWithLimit(e, nil, maxAmountBytes)
	}
	if v.Sign() < 0 {
		return 0, errNegativeAmount
	}
	return scale.EncodeByteSliceWithLimit(e, v.Bytes(), maxAmountBytes)
}

func decodeAmount(d *scale.Decoder) (*big.Int, int, error) {
	buf, n, err := scale.DecodeByteSliceWithLimit(d, maxAmountBytes)
	if err != nil {
		return nil, n, err
	}
	return new(big.Int).SetBytes(buf), n, nil
}

// EncodeScale implements scale codec interface.
func (h *Hash32) EncodeScale(e *scale.Encoder) (int, error) {
	return scale.EncodeByteArray(e, h[:])
}

// DecodeScale implements scale codec interface.
func (h *Hash32) DecodeScale(d *scale.Decoder) (int, error) {
	return scale.DecodeByteArray(d, h[:])
}

// EncodeScale implements scale codec interface.
func (k *PublicKey) EncodeScale(e *scale.Encoder) (int, error) {
	return scale.EncodeByteArray(e, k[:])
}

// DecodeScale implements scale codec interface.
func (k *PublicKey) DecodeScale(d *scale.Decoder) (int, error) {
	return scale.DecodeByteArray(d, k[:])
}

// EncodeScale implements scale codec interface.
func (s *Signature) EncodeScale(e *scale.Encoder) (int, error) {
	return scale.EncodeByteArray(e, s[:])
}

// DecodeScale implements scale codec interface.
func (s *Signature) DecodeScale(d *scale.Decoder) (int, error) {
	return scale.DecodeByteArray(d, s[:])
}

// EncodeScale implements scale codec interface.
func (a *Account) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := encodeAmount(enc, a.Balance)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact32(enc, a.Nonce)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := a.PublicKey.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DecodeScale implements scale codec interface.
func (a *Account) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := decodeAmount(dec)
		if err != nil {
			return total, err
		}
		total += n
		a.Balance = field
	}
	{
		field, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return total, err
		}
		total += n
		a.Nonce = field
	}
	{
		n, err := a.PublicKey.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// EncodeScale implements scale codec interface.
func (tx *DepositTx) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeCompact32(enc, tx.Account.Uint32())
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := encodeAmount(enc, tx.Amount)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := tx.PublicKey.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DecodeScale implements scale codec interface.
func (tx *DepositTx) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return total, err
		}
		total += n
		tx.Account = AccountIndex(field)
	}
	{
		field, n, err := decodeAmount(dec)
		if err != nil {
			return total, err
		}
		total += n
		tx.Amount = field
	}
	{
		n, err := tx.PublicKey.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (tx *TransferTx) encodeBody(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeCompact32(enc, tx.From.Uint32())
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact32(enc, tx.To.Uint32())
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := encodeAmount(enc, tx.Amount)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact32(enc, tx.Nonce)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact32(enc, tx.ValidUntil.Uint32())
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// EncodeScale implements scale codec interface.
func (tx *TransferTx) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := tx.encodeBody(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := tx.Signature.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DecodeScale implements scale codec interface.
func (tx *TransferTx) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return total, err
		}
		total += n
		tx.From = AccountIndex(field)
	}
	{
		field, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return total, err
		}
		total += n
		tx.To = AccountIndex(field)
	}
	{
		field, n, err := decodeAmount(dec)
		if err != nil {
			return total, err
		}
		total += n
		tx.Amount = field
	}
	{
		field, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return total, err
		}
		total += n
		tx.Nonce = field
	}
	{
		field, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return total, err
		}
		total += n
		tx.ValidUntil = BlockNumber(field)
	}
	{
		n, err := tx.Signature.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// EncodeScale implements scale codec interface.
func (tx *ExitTx) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeCompact32(enc, tx.Account.Uint32())
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := encodeAmount(enc, tx.Amount)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DecodeScale implements scale codec interface.
func (tx *ExitTx) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return total, err
		}
		total += n
		tx.Account = AccountIndex(field)
	}
	{
		field, n, err := decodeAmount(dec)
		if err != nil {
			return total, err
		}
		total += n
		tx.Amount = field
	}
	return total, nil
}

// EncodeScale implements scale codec interface.
func (r *Rejection) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeCompact32(enc, r.Position)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeByteSliceWithLimit(enc, []byte(r.Reason), maxReasonBytes)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DecodeScale implements scale codec interface.
func (r *Rejection) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return total, err
		}
		total += n
		r.Position = field
	}
	{
		field, n, err := scale.DecodeByteSliceWithLimit(dec, maxReasonBytes)
		if err != nil {
			return total, err
		}
		total += n
		r.Reason = string(field)
	}
	return total, nil
}

// EncodeScale implements scale codec interface.
func (b *Block) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeCompact8(enc, uint8(b.Kind))
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact32(enc, b.Number.Uint32())
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := b.NewRoot.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeStructSliceWithLimit(enc, b.Deposits, MaxBlockTxs)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeStructSliceWithLimit(enc, b.Transfers, MaxBlockTxs)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeStructSliceWithLimit(enc, b.Exits, MaxBlockTxs)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeStructSliceWithLimit(enc, b.Rejected, MaxBlockTxs)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DecodeScale implements scale codec interface.
func (b *Block) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeCompact8(dec)
		if err != nil {
			return total, err
		}
		total += n
		b.Kind = BlockKind(field)
	}
	{
		field, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return total, err
		}
		total += n
		b.Number = BlockNumber(field)
	}
	{
		n, err := b.NewRoot.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		field, n, err := scale.DecodeStructSliceWithLimit[DepositTx](dec, MaxBlockTxs)
		if err != nil {
			return total, err
		}
		total += n
		b.Deposits = field
	}
	{
		field, n, err := scale.DecodeStructSliceWithLimit[TransferTx](dec, MaxBlockTxs)
		if err != nil {
			return total, err
		}
		total += n
		b.Transfers = field
	}
	{
		field, n, err := scale.DecodeStructSliceWithLimit[ExitTx](dec, MaxBlockTxs)
		if err != nil {
			return total, err
		}
		total += n
		b.Exits = field
	}
	{
		field, n, err := scale.DecodeStructSliceWithLimit[Rejection](dec, MaxBlockTxs)
		if err != nil {
			return total, err
		}
		total += n
		b.Rejected = field
	}
	return total, nil
}
