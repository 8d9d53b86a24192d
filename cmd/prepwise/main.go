package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	apiToken  string
)

var rootCmd = &cobra.Command{
	Use:           "prepwise",
	Short:         "Generate mock interviews and run voice interview calls",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOrDefault("PREPWISE_SERVER", "http://localhost:8080"), "interview service base URL")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", os.Getenv("PREPWISE_TOKEN"), "bearer token for authenticated endpoints")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(interviewsCmd)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
