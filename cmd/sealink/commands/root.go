package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sealink/internal/app"
)

var (
	home       string
	passphrase string
	suite      string
	verbose    bool
	wire       *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:   "sealink",
		Short: "Authenticated encrypted channels over TCP",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".sealink")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}
			var err error
			wire, err = app.NewWire(app.Config{Home: home, Suite: suite, Verbose: verbose})
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.sealink)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the identity keys")
	root.PersistentFlags().StringVar(&suite, "suite", "", "key-agreement suite: x25519 (default) or x25519-kyber768")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(keygenCmd(), fingerprintCmd(), serveCmd(), connectCmd())
	return root.Execute()
}
