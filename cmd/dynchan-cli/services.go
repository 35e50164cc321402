package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"
)

func newServicesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "Manage service keys",
		Long:  "Enable, disable and list the service keys registered with the daemon",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List enabled service keys",
		Args:  cobra.NoArgs,
		RunE:  runServicesList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "enable <key>",
		Short: "Enable a service key (decimal or 0x hex)",
		Args:  cobra.ExactArgs(1),
		RunE:  runServicesEnable,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "disable <key>",
		Short: "Disable a service key, closing its channel",
		Args:  cobra.ExactArgs(1),
		RunE:  runServicesDisable,
	})

	return cmd
}

func runServicesList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	if err := requireAuthentication(ctx); err != nil {
		return err
	}

	rows, err := backend.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list services: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(out, "No services enabled")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"Key", "State", "Peer", "MTU", "Sent", "Received", "In Flight"})
	for _, r := range rows {
		peer, mtu := "-", "-"
		if r.Peer != "" {
			peer, mtu = r.Peer, strconv.Itoa(r.MTU)
		}
		t.AppendRow(table.Row{r.Key.String(), r.State, peer, mtu, r.Sent, r.Received, r.SendInFlight})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d service(s)", len(rows))})
	t.Render()
	return nil
}

func runServicesEnable(cmd *cobra.Command, args []string) error {
	key, err := linklayer.ParseServiceKey(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()
	if err := requireAuthentication(ctx); err != nil {
		return err
	}

	if err := backend.Enable(ctx, key); err != nil {
		return fmt.Errorf("failed to enable %s: %w", key, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Service %s enabled\n", key)
	return nil
}

func runServicesDisable(cmd *cobra.Command, args []string) error {
	key, err := linklayer.ParseServiceKey(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()
	if err := requireAuthentication(ctx); err != nil {
		return err
	}

	if err := backend.Disable(ctx, key); err != nil {
		return fmt.Errorf("failed to disable %s: %w", key, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Service %s disabled\n", key)
	return nil
}
