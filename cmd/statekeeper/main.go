// statekeeper runs the ledger state keeper of the rollup.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cmdp "github.com/spacemeshos/go-statekeeper/cmd"
	"github.com/spacemeshos/go-statekeeper/config"
	"github.com/spacemeshos/go-statekeeper/log"
	"github.com/spacemeshos/go-statekeeper/signing"
)

var (
	version string
	commit  string
	branch  string
)

var flagConf = config.DefaultConfig()

// Cmd is the cobra wrapper for the state keeper.
var Cmd = &cobra.Command{
	Use:           "statekeeper",
	Short:         "start the state keeper",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := cmdp.LoadConfig(afero.NewOsFs(), cmd.Flags(), &flagConf)
		if err != nil {
			return log.ErrMalformedConfig(err)
		}
		logger, err := log.New(conf.Logging)
		if err != nil {
			return log.ErrBadFlags(err)
		}
		defer logger.Sync()

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		app := New(conf, logger, WithOutput(cmd.OutOrStdout()))
		if err := app.Run(ctx); err != nil {
			var fatal *log.FatalError
			if errors.As(err, &fatal) {
				logger.Error("failed to start", zap.Object("fatal", fatal))
			} else {
				logger.Error("state keeper stopped", zap.Error(err))
			}
			return err
		}
		return nil
	},
}

// VersionCmd prints the version of the build.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version info",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), cmdp.Version)
		if cmdp.Commit != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "+%s", cmdp.Commit)
		}
		fmt.Fprintln(cmd.OutOrStdout())
	},
}

// KeyCmd generates a key pair for an account.
var KeyCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an account key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		signer, err := signing.NewEdSigner()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "public-key = %q\nprivate-key = %q\n",
			signer.PublicKey().String(), "0x"+hex.EncodeToString(signer.PrivateKey()))
		return nil
	},
}

func init() {
	cmdp.AddFlags(Cmd.PersistentFlags(), &flagConf)
	Cmd.AddCommand(VersionCmd, KeyCmd)
}

func main() {
	cmdp.Version = version
	cmdp.Commit = commit
	cmdp.Branch = branch
	if err := Cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
