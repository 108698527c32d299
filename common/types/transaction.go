package types

import (
	"bytes"
	"encoding/hex"
	"math/big"

	"github.com/spacemeshos/go-scale"
	"go.uber.org/zap/zapcore"
)

// SignatureSize is the size of an ed25519 signature.
const SignatureSize = 64

// Signature is an ed25519 signature over the transfer body.
type Signature [SignatureSize]byte

// String returns the hex encoding of the signature.
func (s Signature) String() string {
	return hex.EncodeToString(s[:])
}

// DepositTx credits an account from an on-chain deposit event.
// PublicKey is assigned only when the deposit creates the account.
type DepositTx struct {
	Account   AccountIndex
	Amount    *big.Int
	PublicKey PublicKey
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (tx *DepositTx) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddUint32("account", tx.Account.Uint32())
	encoder.AddString("amount", amountString(tx.Amount))
	return nil
}

// TransferTx moves funds between two accounts. It is the only transaction kind
// that is authenticated.
type TransferTx struct {
	From       AccountIndex
	To         AccountIndex
	Amount     *big.Int
	Nonce      uint32
	ValidUntil BlockNumber
	Signature  Signature
}

// SignedBytes returns the message covered by the transfer signature.
func (tx *TransferTx) SignedBytes() []byte {
	var buf bytes.Buffer
	if _, err := tx.encodeBody(scale.NewEncoder(&buf)); err != nil {
		// body encoding fails only for negative amounts. those are rejected
		// before signature verification.
		return nil
	}
	return buf.Bytes()
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (tx *TransferTx) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddUint32("from", tx.From.Uint32())
	encoder.AddUint32("to", tx.To.Uint32())
	encoder.AddString("amount", amountString(tx.Amount))
	encoder.AddUint32("nonce", tx.Nonce)
	encoder.AddUint32("valid_until", tx.ValidUntil.Uint32())
	return nil
}

// ExitTx withdraws the full balance of an account. Amount is filled in with the
// withdrawn balance when the exit is applied.
type ExitTx struct {
	Account AccountIndex
	Amount  *big.Int
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (tx *ExitTx) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddUint32("account", tx.Account.Uint32())
	encoder.AddString("amount", amountString(tx.Amount))
	return nil
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
