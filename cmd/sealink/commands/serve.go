package commands

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sealink/internal/crypto"
	"sealink/internal/store"
	"sealink/internal/transport"
)

func serveCmd() *cobra.Command {
	var (
		addr        string
		peerFile    string
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an echo server accepting secure channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := wire.Identity.LoadIdentity(passphrase)
			if err != nil {
				return fmt.Errorf("load identity (run keygen first): %w", err)
			}
			peer, err := store.ReadPublicKey(peerFile)
			if err != nil {
				return err
			}

			log := wire.Logger
			if metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(wire.Registry, promhttp.HandlerOpts{}))
				go func() {
					if err := http.ListenAndServe(metricsAddr, mux); err != nil {
						log.Warn("metrics endpoint", zap.Error(err))
					}
				}()
			}

			ln, err := transport.Listen(addr, wire.TransportConfig(id, peer))
			if err != nil {
				return err
			}
			defer ln.Close()
			log.Info("listening",
				zap.String("addr", ln.Addr().String()),
				zap.String("fingerprint", crypto.Fingerprint(id.EdPub.Slice())))

			for {
				conn, err := ln.Accept()
				if err != nil {
					log.Warn("accept", zap.Error(err))
					continue
				}
				go echo(conn, log)
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:4040", "listen address")
	cmd.Flags().StringVar(&peerFile, "peer", "", "restrict clients to this .pub file (default: accept any)")
	cmd.Flags().StringVar(&metricsAddr, "metrics", "", "serve Prometheus metrics on this address")
	return cmd
}

// echo mirrors every message back until the client closes.
func echo(conn *transport.Conn, log *zap.Logger) {
	defer conn.Close()
	peer := crypto.Fingerprint(conn.PeerKey().Slice())
	log.Info("client connected", zap.String("peer", peer))
	for {
		msg, err := conn.Receive()
		if err != nil {
			log.Info("client done", zap.String("peer", peer), zap.Error(err))
			return
		}
		if err := conn.Send(msg); err != nil {
			log.Warn("echo send", zap.String("peer", peer), zap.Error(err))
			return
		}
	}
}
