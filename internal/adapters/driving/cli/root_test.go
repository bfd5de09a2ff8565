package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Root Command Tests

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "deskhand", rootCmd.Use)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	commands := rootCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "ingest")
	assert.Contains(t, commandNames, "document")
	assert.Contains(t, commandNames, "search")
	assert.Contains(t, commandNames, "chat")
	assert.Contains(t, commandNames, "sheet")
	assert.Contains(t, commandNames, "verify")
	assert.Contains(t, commandNames, "tenant")
	assert.Contains(t, commandNames, "audit")
	assert.Contains(t, commandNames, "config")
	assert.Contains(t, commandNames, "serve")
	assert.Contains(t, commandNames, "version")
}

func TestRootCmd_HasVerboseFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	assert.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)
}

// Version Command Tests

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
}

func TestVersionCmd_PrintsVersion(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "deskhand version dev")
}

func TestSetVersion_OverridesReportedVersion(t *testing.T) {
	oldVersion := version
	defer func() { version = oldVersion }()

	SetVersion("1.2.3")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "deskhand version 1.2.3")
}

func TestSetVersion_IgnoresEmpty(t *testing.T) {
	oldVersion := version
	defer func() { version = oldVersion }()

	SetVersion("")

	assert.Equal(t, oldVersion, version)
}

func TestSetServices_InjectsEverything(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	assert.NotNil(t, ingestService)
	assert.NotNil(t, searchService)
	assert.NotNil(t, chatService)
	assert.NotNil(t, sheetService)
	assert.NotNil(t, verifyService)
	assert.NotNil(t, docStore)
	assert.NotNil(t, tenantStore)
	assert.NotNil(t, auditStore)
	assert.NotNil(t, configStore)
	assert.NotNil(t, validator)
}
