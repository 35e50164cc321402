package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/spf13/cobra"
)

func newStreamCommand() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Stream received packets in real-time",
		Long: `Stream packets received on every open channel. Consumers share the daemon's
inbound queue, so each packet is printed by exactly one running stream.
Press Ctrl+C to stop streaming.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStream(cmd, count)
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "Exit after this many packets (0 = until interrupted)")
	return cmd
}

func runStream(cmd *cobra.Command, count int) error {
	if count < 0 {
		return fmt.Errorf("--count cannot be negative")
	}

	ctx := cmd.Context()
	authCtx, cancel := commandContext(cmd)
	err := requireAuthentication(authCtx)
	cancel()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	target := serverURL
	if transport == transportGRPC {
		target = grpcTarget
	}
	fmt.Fprintf(out, "Streaming packets from %s...\n", target)

	received := 0
	err = backend.Stream(ctx, func(p packetRow) bool {
		received++
		printPacket(out, p, received)
		return count == 0 || received < count
	})
	if err != nil {
		return fmt.Errorf("stream failed: %w", err)
	}
	fmt.Fprintf(out, "Stream stopped. Received %d packet(s).\n", received)
	return nil
}

func printPacket(out io.Writer, p packetRow, n int) {
	fmt.Fprintf(out, "Packet #%d:\n", n)
	fmt.Fprintf(out, "   Key: %s\n", p.Key)
	fmt.Fprintf(out, "   Sequence: %d\n", p.Sequence)
	fmt.Fprintf(out, "   Time: %s\n", p.Timestamp.Format("2006-01-02 15:04:05.000"))
	fmt.Fprintf(out, "   Hex: %s\n", hex.EncodeToString(p.Payload))
	if utf8.Valid(p.Payload) {
		fmt.Fprintf(out, "   Text: %q\n", p.Payload)
	}
}
