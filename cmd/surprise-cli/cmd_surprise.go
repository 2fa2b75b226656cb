package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/janhq/surprise-api/internal/client"
)

const qrDataURLPrefix = "data:image/png;base64,"

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Upload a photo or video and get a share link",
	RunE:  runCreate,
}

var getCmd = &cobra.Command{
	Use:   "get <slug>",
	Short: "Show a surprise",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var verifyCmd = &cobra.Command{
	Use:   "verify <slug>",
	Short: "Check the password of a protected surprise",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show API status",
	RunE:  runStatus,
}

func init() {
	createCmd.Flags().StringP("file", "f", "", "Image or video to upload")
	createCmd.Flags().StringP("message", "m", "", "Message shown with the media")
	createCmd.Flags().StringP("password", "p", "", "Optional password")
	createCmd.Flags().String("origin", "", "Origin used for the share link")
	createCmd.Flags().String("qr-out", "", "Write the QR code PNG to this path")
	_ = createCmd.MarkFlagRequired("file")
	_ = createCmd.MarkFlagRequired("message")

	verifyCmd.Flags().StringP("password", "p", "", "Password to check")
}

func newClient(cmd *cobra.Command) *client.Client {
	apiURL, _ := cmd.Flags().GetString("api-url")
	return client.New(apiURL)
}

func runCreate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	message, _ := cmd.Flags().GetString("message")
	password, _ := cmd.Flags().GetString("password")
	origin, _ := cmd.Flags().GetString("origin")
	qrOut, _ := cmd.Flags().GetString("qr-out")

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	res, err := newClient(cmd).Create(cmd.Context(), client.Upload{
		Filename: filepath.Base(path),
		File:     f,
		Message:  message,
		Password: password,
		Origin:   origin,
	})
	if err != nil {
		return err
	}

	if qrOut != "" {
		if err := writeQRCode(qrOut, res.QRCode); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "QR code written to %s\n", qrOut)
	}
	return printJSON(cmd.OutOrStdout(), res)
}

func runGet(cmd *cobra.Command, args []string) error {
	res, err := newClient(cmd).Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}

func runVerify(cmd *cobra.Command, args []string) error {
	password, _ := cmd.Flags().GetString("password")
	if err := newClient(cmd).VerifyPassword(cmd.Context(), args[0], password); err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), map[string]bool{"success": true})
}

func runStatus(cmd *cobra.Command, args []string) error {
	res, err := newClient(cmd).Status(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}

func writeQRCode(path, dataURL string) error {
	if !strings.HasPrefix(dataURL, qrDataURLPrefix) {
		return fmt.Errorf("unexpected qr code format")
	}
	png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, qrDataURLPrefix))
	if err != nil {
		return fmt.Errorf("decode qr code: %w", err)
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("write qr code: %w", err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
