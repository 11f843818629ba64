package commands

import (
	"crypto/rand"
	"fmt"

	"github.com/spf13/cobra"

	"sealink/internal/crypto"
	"sealink/internal/domain"
)

func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate identity keys and store them securely",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			priv, pub, err := crypto.GenerateEd25519(rand.Reader)
			if err != nil {
				return err
			}
			id := domain.Identity{EdPub: pub, EdPriv: priv}
			if err := wire.Identity.SaveIdentity(passphrase, id); err != nil {
				return err
			}
			fmt.Printf("Identity created.\nFingerprint: %s\nPublic key:  %s\n",
				crypto.Fingerprint(pub.Slice()), wire.Keystore.PublicKeyPath())
			return nil
		},
	}
}
