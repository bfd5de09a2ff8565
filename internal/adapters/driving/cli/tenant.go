package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/google/uuid"

	"github.com/custodia-labs/deskhand/internal/core/domain"
)

var (
	tenantName        string
	tenantDescription string
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage tenants",
}

var tenantAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a tenant",
	Args:  cobra.ExactArgs(1),
	RunE:  runTenantAdd,
}

var tenantShowCmd = &cobra.Command{
	Use:   "show [tenant-id]",
	Short: "Show tenant info",
	Args:  cobra.ExactArgs(1),
	RunE:  runTenantShow,
}

var tenantSetCmd = &cobra.Command{
	Use:   "set [tenant-id]",
	Short: "Update tenant name or description",
	Args:  cobra.ExactArgs(1),
	RunE:  runTenantSet,
}

func init() {
	tenantAddCmd.Flags().StringVarP(&tenantDescription, "description", "d", "", "business description used as chat context")
	tenantSetCmd.Flags().StringVar(&tenantName, "name", "", "new display name")
	tenantSetCmd.Flags().StringVarP(&tenantDescription, "description", "d", "", "new business description")

	tenantCmd.AddCommand(tenantAddCmd)
	tenantCmd.AddCommand(tenantShowCmd)
	tenantCmd.AddCommand(tenantSetCmd)
	rootCmd.AddCommand(tenantCmd)
}

func runTenantAdd(cmd *cobra.Command, args []string) error {
	if tenantStore == nil {
		return errors.New("tenant store not configured")
	}

	tenant := &domain.Tenant{
		ID:          uuid.New().String(),
		Name:        args[0],
		Description: tenantDescription,
		CreatedAt:   time.Now().UTC(),
	}

	if err := tenantStore.Save(context.Background(), tenant); err != nil {
		return fmt.Errorf("failed to save tenant: %w", err)
	}

	cmd.Printf("Created tenant %s\n", tenant.ID)
	return nil
}

func runTenantShow(cmd *cobra.Command, args []string) error {
	if tenantStore == nil {
		return errors.New("tenant store not configured")
	}

	tenant, err := tenantStore.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get tenant: %w", err)
	}

	cmd.Printf("ID:   %s\n", tenant.ID)
	cmd.Printf("Name: %s\n", tenant.Name)
	if tenant.Description != "" {
		cmd.Println()
		cmd.Println(tenant.Description)
	}
	return nil
}

func runTenantSet(cmd *cobra.Command, args []string) error {
	if tenantStore == nil {
		return errors.New("tenant store not configured")
	}

	ctx := context.Background()
	tenant, err := tenantStore.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get tenant: %w", err)
	}

	if cmd.Flags().Changed("name") {
		tenant.Name = tenantName
	}
	if cmd.Flags().Changed("description") {
		tenant.Description = tenantDescription
	}

	if err := tenantStore.Save(ctx, tenant); err != nil {
		return fmt.Errorf("failed to save tenant: %w", err)
	}

	cmd.Printf("Updated tenant %s\n", tenant.ID)
	return nil
}
