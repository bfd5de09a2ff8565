package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Verify Command Tests

func TestVerifyCmd_Use(t *testing.T) {
	assert.Equal(t, "verify", verifyCmd.Use)
}

func TestVerifyCmd_RequiresTenant(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"verify", "--spreadsheet", "ss-1", "--email-column", "3"})
	defer func() {
		rootCmd.SetArgs(nil)
		verifySpreadsheet = ""
		verifyEmailCol = -1
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "--tenant is required")
}

func TestVerifyCmd_RequiresSpreadsheet(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"verify", "--tenant", "tenant-1", "--email-column", "3"})
	defer func() {
		rootCmd.SetArgs(nil)
		verifyTenant = ""
		verifyEmailCol = -1
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "--spreadsheet is required")
}

func TestVerifyCmd_RequiresAtLeastOneColumn(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"verify", "--tenant", "tenant-1", "--spreadsheet", "ss-1"})
	defer func() {
		rootCmd.SetArgs(nil)
		verifyTenant = ""
		verifySpreadsheet = ""
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at least one of --email-column or --phone-column is required")
}

func TestVerifyCmd_PrintsProgressLines(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"verify", "--tenant", "tenant-1", "--spreadsheet", "ss-1", "--email-column", "3"})
	defer func() {
		rootCmd.SetArgs(nil)
		verifyTenant = ""
		verifySpreadsheet = ""
		verifyEmailCol = -1
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "[1/2] row 2: ana@example.com -> safe")
	assert.Contains(t, buf.String(), "[2/2] row 3: skipped")
	assert.Contains(t, buf.String(), "quota exceeded at H4, waiting 60s (attempt 1/5)")
}

func TestVerifyCmd_ServiceError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	verifyService = &stubVerificationService{err: errServiceDown}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"verify", "--tenant", "tenant-1", "--spreadsheet", "ss-1", "--phone-column", "4"})
	defer func() {
		rootCmd.SetArgs(nil)
		verifyTenant = ""
		verifySpreadsheet = ""
		verifyPhoneCol = -1
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "verification failed")
}

func TestVerifyCmd_ServiceNotConfigured(t *testing.T) {
	oldService := verifyService
	verifyService = nil
	defer func() { verifyService = oldService }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"verify", "--tenant", "tenant-1", "--spreadsheet", "ss-1", "--email-column", "3"})
	defer func() {
		rootCmd.SetArgs(nil)
		verifyTenant = ""
		verifySpreadsheet = ""
		verifyEmailCol = -1
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "verification service not configured")
}
