package cli

import (
	"bytes"
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tenant Command Tests

func TestTenantCmd_Use(t *testing.T) {
	assert.Equal(t, "tenant", tenantCmd.Use)
}

func TestTenantCmd_HasSubcommands(t *testing.T) {
	commands := tenantCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "add")
	assert.Contains(t, commandNames, "show")
	assert.Contains(t, commandNames, "set")
}

// Tenant Add Tests

func TestTenantAddCmd_Use(t *testing.T) {
	assert.Equal(t, "add [name]", tenantAddCmd.Use)
}

func TestTenantAddCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"tenant", "add"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestTenantAddCmd_CreatesTenant(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"tenant", "add", "Globex", "--description", "Globex makes widgets."})
	defer func() {
		rootCmd.SetArgs(nil)
		tenantDescription = ""
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Created tenant ")

	id := createdTenantID(t, buf.String())
	tenant, getErr := tenantStore.Get(context.Background(), id)
	require.NoError(t, getErr)
	assert.Equal(t, "Globex", tenant.Name)
	assert.Equal(t, "Globex makes widgets.", tenant.Description)
}

func TestTenantAddCmd_StoreNotConfigured(t *testing.T) {
	oldStore := tenantStore
	tenantStore = nil
	defer func() { tenantStore = oldStore }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"tenant", "add", "Globex"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "tenant store not configured")
}

// Tenant Show Tests

func TestTenantShowCmd_Use(t *testing.T) {
	assert.Equal(t, "show [tenant-id]", tenantShowCmd.Use)
}

func TestTenantShowCmd_PrintsTenantInfo(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"tenant", "show", "tenant-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "ID:   tenant-1")
	assert.Contains(t, buf.String(), "Name: Acme")
	assert.Contains(t, buf.String(), "Acme sells rockets.")
}

func TestTenantShowCmd_UnknownTenant(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"tenant", "show", "tenant-missing"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get tenant")
}

// Tenant Set Tests

func TestTenantSetCmd_Use(t *testing.T) {
	assert.Equal(t, "set [tenant-id]", tenantSetCmd.Use)
}

func TestTenantSetCmd_UpdatesDescription(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"tenant", "set", "tenant-1", "--description", "Acme sells anvils now."})
	defer func() {
		rootCmd.SetArgs(nil)
		tenantDescription = ""
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Updated tenant tenant-1")

	tenant, getErr := tenantStore.Get(context.Background(), "tenant-1")
	require.NoError(t, getErr)
	assert.Equal(t, "Acme", tenant.Name)
	assert.Equal(t, "Acme sells anvils now.", tenant.Description)
}

// createdTenantID pulls the generated ID out of the add command output.
func createdTenantID(t *testing.T, output string) string {
	t.Helper()
	m := regexp.MustCompile(`Created tenant (\S+)`).FindStringSubmatch(output)
	require.Len(t, m, 2)
	return m[1]
}
