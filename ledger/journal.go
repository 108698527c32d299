package ledger

import (
	"fmt"

	"github.com/spacemeshos/go-statekeeper/common/types"
)

// journal records the pre-block value of every account the first time it is
// touched within a block, so that the block can be undone as a whole.
type journal struct {
	tree Tree
	// nil value means that the account didn't exist before the block.
	seen  map[types.AccountIndex]*types.Account
	order []types.AccountIndex
}

func newJournal(tree Tree) *journal {
	return &journal{
		tree: tree,
		seen: map[types.AccountIndex]*types.Account{},
	}
}

// load returns a mutable copy of the account and snapshots it on first touch.
func (j *journal) load(index types.AccountIndex) (*types.Account, bool) {
	acc, ok := j.tree.Get(index)
	if _, touched := j.seen[index]; !touched {
		var snapshot *types.Account
		if ok {
			snapshot = acc.Copy()
		}
		j.seen[index] = snapshot
		j.order = append(j.order, index)
	}
	return acc, ok
}

func (j *journal) store(index types.AccountIndex, acc *types.Account) error {
	if _, touched := j.seen[index]; !touched {
		panic(fmt.Sprintf("account %d stored without being loaded", index))
	}
	return j.tree.Insert(index, acc)
}

func (j *journal) touched() int {
	return len(j.order)
}

// revert writes every snapshot back, in reverse order of first touch.
func (j *journal) revert() error {
	for i := len(j.order) - 1; i >= 0; i-- {
		index := j.order[i]
		prev := j.seen[index]
		if prev == nil {
			j.tree.Remove(index)
			continue
		}
		if err := j.tree.Insert(index, prev); err != nil {
			return fmt.Errorf("restore account %d: %w", index, err)
		}
	}
	return nil
}
