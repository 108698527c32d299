package signing

import (
	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"

	"github.com/spacemeshos/go-statekeeper/common/types"
)

type edVerifierOption struct {
	prefix []byte
}

// VerifierOptionFunc to modify verifier.
type VerifierOptionFunc func(*edVerifierOption)

// WithVerifierPrefix sets the prefix used by EdVerifier. This usually is the chain ID.
func WithVerifierPrefix(prefix []byte) VerifierOptionFunc {
	return func(opts *edVerifierOption) {
		opts.prefix = prefix
	}
}

// EdVerifier checks signatures against account public keys.
type EdVerifier struct {
	prefix []byte
}

// NewEdVerifier returns a verifier.
func NewEdVerifier(opts ...VerifierOptionFunc) *EdVerifier {
	cfg := &edVerifierOption{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &EdVerifier{prefix: cfg.prefix}
}

// Verify verifies that a signature matches public key and message.
func (ev *EdVerifier) Verify(d Domain, pub types.PublicKey, m []byte, sig types.Signature) bool {
	return ed25519.Verify(pub[:], message(ev.prefix, d, m), sig[:])
}

// VerifyTransfer verifies the signature of the transfer with the sender key.
func (ev *EdVerifier) VerifyTransfer(pub types.PublicKey, tx *types.TransferTx) bool {
	body := tx.SignedBytes()
	if body == nil {
		return false
	}
	return ev.Verify(TRANSFER, pub, body, tx.Signature)
}
