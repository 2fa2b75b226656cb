package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "surprise-cli",
	Short: "Command-line client for the Digital Surprise API",
	Long: `surprise-cli creates and inspects surprises on a running surprise-api.

Examples:
  surprise-cli create --file photo.jpg --message "Happy birthday!" --qr-out share.png
  surprise-cli create --file clip.mp4 --message "Guess who" --password hunter2
  surprise-cli get V1StGXR8_Z5j
  surprise-cli verify V1StGXR8_Z5j --password hunter2
  surprise-cli status`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(statusCmd)

	defaultURL := os.Getenv("SURPRISE_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:5000"
	}
	rootCmd.PersistentFlags().String("api-url", defaultURL, "Base URL of the surprise API")
}
