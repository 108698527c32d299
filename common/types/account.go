package types

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"go.uber.org/zap/zapcore"
)

// PublicKeySize is the size of a compressed ed25519 public key.
const PublicKeySize = 32

// AccountIndex is the dense position of an account leaf in the account tree.
type AccountIndex uint32

// String implements fmt.Stringer.
func (i AccountIndex) String() string {
	return strconv.FormatUint(uint64(i), 10)
}

// Uint32 returns the index as uint32.
func (i AccountIndex) Uint32() uint32 {
	return uint32(i)
}

// PublicKey is the key that authenticates transfers originated by an account.
type PublicKey [PublicKeySize]byte

// Empty returns true if no key was set.
func (k PublicKey) Empty() bool {
	return k == PublicKey{}
}

// Bytes returns the key as a byte slice.
func (k PublicKey) Bytes() []byte {
	return k[:]
}

// String returns the hex encoding of the key.
func (k PublicKey) String() string {
	return hex.EncodeToString(k[:])
}

// ShortString returns the first 5 bytes of the key in hex, for logging purposes.
func (k PublicKey) ShortString() string {
	return hex.EncodeToString(k[:5])
}

// UnmarshalText parses a public key in hex syntax.
func (k *PublicKey) UnmarshalText(input []byte) error {
	return decodeFixedHex("PublicKey", input, k[:])
}

// Account is a leaf of the account tree.
type Account struct {
	Balance   *big.Int
	Nonce     uint32
	PublicKey PublicKey
}

// NewAccount returns an account with zero balance and nonce.
func NewAccount(key PublicKey) *Account {
	return &Account{Balance: new(big.Int), PublicKey: key}
}

// Copy returns a deep copy of the account.
func (a *Account) Copy() *Account {
	cp := *a
	cp.Balance = new(big.Int)
	if a.Balance != nil {
		cp.Balance.Set(a.Balance)
	}
	return &cp
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (a *Account) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	if a == nil {
		return nil
	}
	encoder.AddString("balance", a.Balance.String())
	encoder.AddUint32("nonce", a.Nonce)
	encoder.AddString("pubkey", a.PublicKey.ShortString())
	return nil
}

// GenesisAccount is an account that exists before the first block.
type GenesisAccount struct {
	Index     AccountIndex `mapstructure:"index"`
	Balance   *big.Int     `mapstructure:"balance"`
	PublicKey PublicKey    `mapstructure:"public-key"`
}
