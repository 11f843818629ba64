package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sealink/internal/crypto"
	"sealink/internal/store"
	"sealink/internal/transport"
)

func connectCmd() *cobra.Command {
	var (
		peerFile string
		ws       bool
	)
	cmd := &cobra.Command{
		Use:   "connect <address>",
		Short: "Open a secure channel and relay stdin lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := wire.Identity.LoadIdentity(passphrase)
			if err != nil {
				return fmt.Errorf("load identity (run keygen first): %w", err)
			}
			peer, err := store.ReadPublicKey(peerFile)
			if err != nil {
				return err
			}

			cfg := wire.TransportConfig(id, peer)
			var conn *transport.Conn
			if ws {
				conn, err = transport.DialWebSocket(args[0], cfg)
			} else {
				conn, err = transport.Dial(args[0], cfg)
			}
			if err != nil {
				return err
			}
			defer conn.Close()
			wire.Logger.Info("connected",
				zap.String("peer", crypto.Fingerprint(conn.PeerKey().Slice())))

			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				line := strings.TrimRight(scanner.Text(), "\r\n")
				if line == "" {
					continue
				}
				if err := conn.Send([]byte(line)); err != nil {
					return err
				}
				reply, err := conn.Receive()
				if err != nil {
					return err
				}
				fmt.Printf("< %s\n", reply)
			}
			return scanner.Err()
		},
	}
	cmd.Flags().StringVar(&peerFile, "peer", "", "expected server .pub file (default: trust first seen)")
	cmd.Flags().BoolVar(&ws, "websocket", false, "treat the address as a WebSocket URL")
	return cmd
}
