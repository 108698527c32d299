package signing

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"

	"github.com/spacemeshos/go-statekeeper/common/types"
)

// Domain separates signatures of different message kinds.
type Domain byte

const (
	// TRANSFER is the domain of transfer transactions.
	TRANSFER Domain = 1
)

// String returns the string representation of a domain.
func (d Domain) String() string {
	switch d {
	case TRANSFER:
		return "TRANSFER"
	default:
		return "UNKNOWN"
	}
}

// PrivateKey is an alias to ed25519.PrivateKey.
type PrivateKey = ed25519.PrivateKey

// PrivateKeySize size of the private key in bytes.
const PrivateKeySize = ed25519.PrivateKeySize

type edSignerOption struct {
	priv   PrivateKey
	rand   io.Reader
	prefix []byte
}

// EdSignerOptionFunc modifies EdSigner.
type EdSignerOptionFunc func(*edSignerOption) error

// WithPrefix sets the prefix used by EdSigner. This usually is the chain ID.
func WithPrefix(prefix []byte) EdSignerOptionFunc {
	return func(opt *edSignerOption) error {
		opt.prefix = prefix
		return nil
	}
}

// WithPrivateKey sets the private key used by EdSigner.
func WithPrivateKey(priv PrivateKey) EdSignerOptionFunc {
	return func(opt *edSignerOption) error {
		if opt.priv != nil {
			return errors.New("invalid option WithPrivateKey: private key already set")
		}
		if len(priv) != ed25519.PrivateKeySize {
			return errors.New("could not create EdSigner: invalid key length")
		}
		keyPair := ed25519.NewKeyFromSeed(priv[:32])
		if !bytes.Equal(keyPair[32:], priv.Public().(ed25519.PublicKey)) {
			return errors.New("private and public do not match")
		}
		opt.priv = priv
		return nil
	}
}

// WithKeyFromRand generates the private key from the given randomness source.
func WithKeyFromRand(rand io.Reader) EdSignerOptionFunc {
	return func(opt *edSignerOption) error {
		opt.rand = rand
		return nil
	}
}

// EdSigner represents an ED25519 signer.
//
// The state keeper never holds private keys. Signers exist on the producer
// side (wallets, tests, demo tooling) to build pre-signed transfers.
type EdSigner struct {
	priv   PrivateKey
	prefix []byte
}

// NewEdSigner returns an ed signer, generating a new key unless one is provided.
func NewEdSigner(opts ...EdSignerOptionFunc) (*EdSigner, error) {
	cfg := &edSignerOption{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.priv == nil {
		_, priv, err := ed25519.GenerateKey(cfg.rand)
		if err != nil {
			return nil, fmt.Errorf("could not generate key pair: %w", err)
		}
		cfg.priv = priv
	}
	return &EdSigner{priv: cfg.priv, prefix: cfg.prefix}, nil
}

// Sign signs the provided message in the given domain.
func (es *EdSigner) Sign(d Domain, m []byte) types.Signature {
	return *(*[types.SignatureSize]byte)(ed25519.Sign(es.priv, message(es.prefix, d, m)))
}

// SignTransfer signs the transfer body and stores the signature in the transaction.
func (es *EdSigner) SignTransfer(tx *types.TransferTx) {
	tx.Signature = es.Sign(TRANSFER, tx.SignedBytes())
}

// PublicKey returns the public key of the signer.
func (es *EdSigner) PublicKey() types.PublicKey {
	var key types.PublicKey
	copy(key[:], es.priv.Public().(ed25519.PublicKey))
	return key
}

// PrivateKey returns private key.
func (es *EdSigner) PrivateKey() PrivateKey {
	return es.priv
}

// Prefix returns the prefix mixed into every signed message.
func (es *EdSigner) Prefix() []byte {
	return es.prefix
}

func message(prefix []byte, d Domain, m []byte) []byte {
	msg := make([]byte, 0, len(prefix)+1+len(m))
	msg = append(msg, prefix...)
	msg = append(msg, byte(d))
	return append(msg, m...)
}
