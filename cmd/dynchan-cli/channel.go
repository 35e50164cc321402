package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"
)

func newConnectCommand() *cobra.Command {
	var addressType string

	cmd := &cobra.Command{
		Use:   "connect <key> <peer>",
		Short: "Open a channel for an enabled key to a peer device",
		Long: `Open a channel for an enabled service key to a peer device address such as
C0:FF:EE:00:00:02. The command waits for the link layer's answer and exits
non-zero when the peer refuses.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConnect(cmd, args[0], args[1], addressType)
		},
	}

	cmd.Flags().StringVar(&addressType, "address-type", "random", "Peer address type: public or random")
	return cmd
}

func runConnect(cmd *cobra.Command, keyArg, peer, addressType string) error {
	key, err := linklayer.ParseServiceKey(keyArg)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()
	if err := requireAuthentication(ctx); err != nil {
		return err
	}

	result, err := backend.Connect(ctx, key, peer, addressType)
	if err != nil {
		return fmt.Errorf("failed to connect %s: %w", key, err)
	}
	if result != linklayer.ResultSuccess {
		return fmt.Errorf("peer %s refused %s: %s (0x%04x)", peer, key, result, uint16(result))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Channel %s open to %s\n", key, peer)
	return nil
}

func newCloseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "close <key>",
		Short: "Close the channel open for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := linklayer.ParseServiceKey(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()
			if err := requireAuthentication(ctx); err != nil {
				return err
			}

			if err := backend.CloseChannel(ctx, key); err != nil {
				return fmt.Errorf("failed to close %s: %w", key, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Channel %s closed\n", key)
			return nil
		},
	}
}

func newSendCommand() *cobra.Command {
	var (
		hexPayload  string
		textPayload string
	)

	cmd := &cobra.Command{
		Use:   "send <key>",
		Short: "Send one packet on an open channel",
		Long: `Send one packet on the channel open for a key. The payload is given either
as hex (--hex 0a0b0c) or as text (--text hello).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := parsePayload(hexPayload, textPayload)
			if err != nil {
				return err
			}
			return runSend(cmd, args[0], payload)
		},
	}

	cmd.Flags().StringVar(&hexPayload, "hex", "", "Payload as hex bytes")
	cmd.Flags().StringVar(&textPayload, "text", "", "Payload as text")
	return cmd
}

func parsePayload(hexPayload, textPayload string) ([]byte, error) {
	switch {
	case hexPayload != "" && textPayload != "":
		return nil, errors.New("use only one of --hex or --text")
	case hexPayload != "":
		cleaned := strings.NewReplacer(" ", "", ":", "").Replace(hexPayload)
		payload, err := hex.DecodeString(cleaned)
		if err != nil {
			return nil, fmt.Errorf("invalid hex payload: %w", err)
		}
		return payload, nil
	case textPayload != "":
		return []byte(textPayload), nil
	default:
		return nil, errors.New("a payload is required (--hex or --text)")
	}
}

func runSend(cmd *cobra.Command, keyArg string, payload []byte) error {
	key, err := linklayer.ParseServiceKey(keyArg)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()
	if err := requireAuthentication(ctx); err != nil {
		return err
	}

	if err := backend.Send(ctx, key, payload); err != nil {
		return fmt.Errorf("failed to send on %s: %w", key, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sent %d byte(s) on %s\n", len(payload), key)
	return nil
}
