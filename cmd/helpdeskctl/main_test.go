package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/helpdesk-core/internal/auth"
	"github.com/lorrc/helpdesk-core/internal/core/domain"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--env-file", "testdata-missing.env"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("JWT_ISSUER", "helpdesk")

	out, err := execute(t, "token", "--user-id", "7", "--login", "ana", "--ttl", "1h")
	require.NoError(t, err)

	claims, err := auth.NewTokenManager("cli-secret", "helpdesk", 0).ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "ana", claims.Login)
}

func TestTokenCommand_Errors(t *testing.T) {
	t.Setenv("JWT_ISSUER", "")

	t.Setenv("JWT_SECRET", "")
	_, err := execute(t, "token", "--user-id", "7", "--login", "ana")
	assert.ErrorContains(t, err, "JWT_SECRET is required")

	t.Setenv("JWT_SECRET", "cli-secret")
	_, err = execute(t, "token", "--user-id", "0", "--login=")
	assert.ErrorContains(t, err, "--user-id or --login")
}

func TestReportCommands_RequireDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := execute(t, "report", "analysts", "--as", "ana", "--output", "table")
	assert.ErrorContains(t, err, "DATABASE_URL is required")

	_, err = execute(t, "report", "analysts", "--as", "ana", "--output", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func paramsCommand(t *testing.T, flags map[string]string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.Flags().Int("year", 0, "")
	cmd.Flags().Int("month", 0, "")
	cmd.Flags().Int64("team", 0, "")
	for name, value := range flags {
		require.NoError(t, cmd.Flags().Set(name, value))
	}
	return cmd
}

func TestReportParams(t *testing.T) {
	params, err := reportParams(paramsCommand(t, map[string]string{"year": "2025", "month": "6", "team": "3"}))
	require.NoError(t, err)
	assert.Equal(t, 2025, params.Year)
	assert.Equal(t, 6, params.Month)
	require.NotNil(t, params.TeamID)
	assert.Equal(t, int64(3), *params.TeamID)

	params, err = reportParams(paramsCommand(t, nil))
	require.NoError(t, err)
	assert.Zero(t, params.Year)
	assert.Nil(t, params.TeamID)

	_, err = reportParams(paramsCommand(t, map[string]string{"month": "13"}))
	assert.ErrorContains(t, err, "invalid month")

	_, err = reportParams(paramsCommand(t, map[string]string{"year": "1900"}))
	assert.ErrorContains(t, err, "invalid year")
}

func TestWriteReport(t *testing.T) {
	rows := []domain.AnalystCount{{Name: "Carla", Count: 12}, {Name: "Bruno", Count: 3}}
	out := report{
		Headers: []string{"ANALYST", "CLOSED"},
		Rows:    [][]string{{"Carla", "12"}, {"Bruno", "3"}},
		Data:    rows,
	}

	var table bytes.Buffer
	require.NoError(t, writeReport(&table, "table", out))
	assert.Equal(t, "ANALYST  CLOSED\nCarla    12\nBruno    3\n", table.String())

	var js bytes.Buffer
	require.NoError(t, writeReport(&js, "json", out))
	assert.JSONEq(t, `[{"name":"Carla","count":12},{"name":"Bruno","count":3}]`, js.String())

	js.Reset()
	require.NoError(t, writeReport(&js, "json", report{Headers: out.Headers}))
	assert.JSONEq(t, `[]`, js.String())
}
