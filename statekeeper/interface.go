package statekeeper

import (
	"github.com/spacemeshos/go-statekeeper/common/types"
)

//go:generate mockgen -typed -package=statekeeper -destination=./mocks.go -source=./interface.go

type ledgerState interface {
	Apply(*types.Block) error
	PubKey(types.AccountIndex) (types.PublicKey, bool)
	Account(types.AccountIndex) (*types.Account, bool)
	RootHash() (types.Hash32, error)
	BlockNumber() types.BlockNumber
}
