// Command edgemesh is the node-local CLI and server entrypoint (spec.md
// §6): config-check validates a config file, key-generate mints a peer
// key, and serve runs the full supervisor (DNS + LB + health engine +
// control plane) for one named peer until terminated.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"funkhouse.rs/edgemesh/internal/control"
	"funkhouse.rs/edgemesh/internal/keys"
	"funkhouse.rs/edgemesh/internal/model"
	"funkhouse.rs/edgemesh/internal/supervisor"
)

var log = logrus.WithField("component", "cli")

func main() {
	root := &cobra.Command{
		Use:   "edgemesh",
		Short: "Clustered authoritative DNS and load balancer edge node",
	}

	root.AddCommand(configCheckCmd(), keyGenerateCmd(), serveCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func configCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config-check <file>",
		Short: "Parse and validate a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := model.Load(args[0]); err != nil {
				return err
			}
			fmt.Println("Configuration Parsed OK")
			return nil
		},
	}
}

func keyGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "key-generate <peer_name>",
		Short: "Generate a fresh peer key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := keys.Generate(args[0])
			if err != nil {
				return err
			}
			doc, err := key.JSON()
			if err != nil {
				return err
			}
			fmt.Println(doc)
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve <file> <peer_name>",
		Short: "Run this node as the named peer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := model.Load(args[0])
			if err != nil {
				return err
			}
			if err := cfg.SetMe(args[1]); err != nil {
				return err
			}

			metrics := control.NewMetrics()
			sup, err := supervisor.New(cfg, metrics)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- sup.Start(ctx) }()

			select {
			case <-ctx.Done():
				log.Info("shutdown signal received")
				sup.Shutdown()
				// shutdown_wait is advisory (spec.md §4.5): it only governs
				// when we warn that tasks are taking a while, not a deadline
				// we enforce by force-exiting.
				if wait := cfg.ShutdownWait.Duration(); wait > 0 {
					timer := time.AfterFunc(wait, func() {
						log.Warn("tasks still unwinding past shutdown_wait")
					})
					defer timer.Stop()
				}
				return <-errCh
			case err := <-errCh:
				return err
			}
		},
	}
}
