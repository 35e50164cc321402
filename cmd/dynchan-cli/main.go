package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmacdonaldsmith/dynchan-go/pkg/client"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/httpclient"
)

const (
	transportHTTP = "http"
	transportGRPC = "grpc"
)

var (
	// Global flags
	serverURL  string
	grpcTarget string
	transport  string
	clientID   string
	token      string
	timeout    time.Duration
	noAuth     bool

	// Global client instances
	httpClient *httpclient.Client
	backend    controlBackend
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	closeBackend()
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dynchan-cli",
		Short: "dynchan command line interface",
		Long: `dynchan-cli drives a dynchan daemon. It enables service keys, opens and
closes channels, sends packets and streams received packets, over either the
HTTP API (default) or the gRPC control surface.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initializeClient,
	}

	// Add global flags
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8081", "dynchan HTTP API URL")
	rootCmd.PersistentFlags().StringVar(&grpcTarget, "grpc", "localhost:7999", "dynchan gRPC address")
	rootCmd.PersistentFlags().StringVar(&transport, "transport", transportHTTP, "Control transport: http or grpc")
	rootCmd.PersistentFlags().StringVar(&clientID, "client-id", "", "Client ID for authentication")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "JWT token (if already authenticated)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
	rootCmd.PersistentFlags().BoolVar(&noAuth, "no-auth", false, "Skip authentication (for development with no_auth servers)")

	// Add subcommands
	rootCmd.AddCommand(newAuthCommand())
	rootCmd.AddCommand(newHealthCommand())
	rootCmd.AddCommand(newServicesCommand())
	rootCmd.AddCommand(newConnectCommand())
	rootCmd.AddCommand(newCloseCommand())
	rootCmd.AddCommand(newSendCommand())
	rootCmd.AddCommand(newStreamCommand())

	return rootCmd
}

// initializeClient sets up the clients with global configuration
func initializeClient(cmd *cobra.Command, args []string) error {
	// Skip client initialization for help commands
	if cmd.Name() == "help" || cmd.Parent() == nil {
		return nil
	}

	effectiveClientID := clientID
	if noAuth && effectiveClientID == "" {
		effectiveClientID = "dev-client"
	}

	var err error
	httpClient, err = httpclient.NewClient(httpclient.Config{
		ServerURL: serverURL,
		ClientID:  effectiveClientID,
		Timeout:   timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	// Set token if provided, or set dummy token in no-auth mode
	if token != "" {
		httpClient.SetToken(token)
	} else if noAuth {
		httpClient.SetToken("no-auth-mode")
	}

	switch transport {
	case transportHTTP:
		backend = &httpBackend{client: httpClient}
	case transportGRPC:
		c, err := client.Dial(grpcTarget)
		if err != nil {
			return fmt.Errorf("failed to dial %s: %w", grpcTarget, err)
		}
		backend = &grpcBackend{client: c}
	default:
		return fmt.Errorf("unknown transport %q (want http or grpc)", transport)
	}
	return nil
}

func closeBackend() {
	if backend != nil {
		_ = backend.Close()
		backend = nil
	}
}

// requireAuthentication makes sure HTTP calls carry a token, logging in with
// --client-id when none was supplied
func requireAuthentication(ctx context.Context) error {
	if transport != transportHTTP || httpClient.IsAuthenticated() {
		return nil
	}
	if clientID == "" {
		return fmt.Errorf("not authenticated - run 'dynchan-cli auth' first, or provide --token or --client-id")
	}
	if err := httpClient.Authenticate(ctx); err != nil {
		return err
	}
	return nil
}

// commandContext bounds a single request by --timeout
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}
