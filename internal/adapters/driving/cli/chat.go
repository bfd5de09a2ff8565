package cli

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deskhand/internal/core/ports/driving"
)

var (
	chatTenant       string
	chatConversation string
	chatImages       []string
	chatWithSources  bool
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Ask a question over the knowledge base",
	Long: `Answers a question using retrieved context from the tenant's
documents. Sheet-related messages without image attachments are routed
to the spreadsheet tool agent instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatTenant, "tenant", "t", "", "tenant ID (required)")
	chatCmd.Flags().StringVarP(&chatConversation, "conversation", "c", "", "conversation ID to continue")
	chatCmd.Flags().StringArrayVar(&chatImages, "image", nil, "image file to attach (repeatable)")
	chatCmd.Flags().BoolVar(&chatWithSources, "with-source-images", false, "inline stored tenant images as context")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	if chatTenant == "" {
		return errors.New("--tenant is required")
	}

	attachments, err := loadAttachments(chatImages)
	if err != nil {
		return err
	}

	resp, err := chatService.Chat(context.Background(), driving.ChatRequest{
		TenantID:            chatTenant,
		Message:             args[0],
		ConversationID:      chatConversation,
		Images:              attachments,
		IncludeSourceImages: chatWithSources,
	})
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	cmd.Println(resp.Text)

	if len(resp.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i := range resp.Sources {
			cmd.Printf("  [%d] %s (%.2f)\n", i+1, resp.Sources[i].Title, resp.Sources[i].Score)
		}
	}

	if len(resp.Operations) > 0 {
		cmd.Println()
		cmd.Println("Spreadsheet operations:")
		for i := range resp.Operations {
			op := resp.Operations[i]
			if op.Success {
				cmd.Printf("  [%d] %s %s: %s\n", i+1, op.Tool, op.Target, op.Result)
			} else {
				cmd.Printf("  [%d] %s %s failed: %s\n", i+1, op.Tool, op.Target, op.Error)
			}
		}
	}
	return nil
}

func loadAttachments(paths []string) ([]driving.ImageAttachment, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	attachments := make([]driving.ImageAttachment, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}

		mimeType := mime.TypeByExtension(filepath.Ext(path))
		if mimeType == "" {
			mimeType = "image/png"
		}

		attachments = append(attachments, driving.ImageAttachment{
			Data:     base64.StdEncoding.EncodeToString(data),
			MIMEType: mimeType,
		})
	}
	return attachments, nil
}
