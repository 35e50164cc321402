package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Long:  "Check the health status of the dynchan daemon over the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runHealth,
	}

	return cmd
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Checking health of %s...\n", serverURL)

	health, err := httpClient.GetHealth(ctx)
	if err != nil {
		return err
	}

	if health.Healthy {
		fmt.Fprintf(out, "Server is healthy!\n")
	} else {
		fmt.Fprintf(out, "Server is not healthy!\n")
	}
	fmt.Fprintf(out, "Node ID: %s\n", health.NodeID)
	fmt.Fprintf(out, "Local Address: %s\n", health.LocalAddress)
	fmt.Fprintf(out, "Services: %d\n", health.Services)
	fmt.Fprintf(out, "Open Channels: %d\n", health.OpenChannels)
	fmt.Fprintf(out, "Inbound: pending=%d/%d delivered=%d dropped=%d\n",
		health.Inbound.Pending, health.Inbound.Capacity, health.Inbound.Delivered, health.Inbound.Dropped)
	fmt.Fprintf(out, "Uptime: %s\n", health.Uptime)

	return nil
}
