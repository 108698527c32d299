package presets

import (
	"os"
	"path/filepath"

	"github.com/spacemeshos/go-statekeeper/config"
)

func init() {
	register("standalone", standalone())
}

// standalone runs a small ledger out of the temp directory with verbose logs.
func standalone() config.Config {
	conf := config.DefaultConfig()
	conf.DataDir = filepath.Join(os.TempDir(), "statekeeper")
	conf.ChainID = "standalone"
	conf.Logging.Level = "debug"
	conf.Tree.Depth = 16
	conf.Tree.MaxBalanceBits = 64
	conf.Keeper.InboxSize = 16
	conf.Keeper.OutboxSize = 4
	return conf
}
