package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"kollab-api/internal/config"

	"github.com/stretchr/testify/require"
)

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	root := NewRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	require.Contains(t, names, "serve")
	require.Contains(t, names, "dispatch-updates")
}

func TestDispatchUpdates_EmptyDatabase(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "kollab.db"))
	t.Setenv("LOG_LEVEL", "error")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"dispatch-updates", "--config-dir", dir})

	require.NoError(t, root.Execute())
	require.JSONEq(t, `{"processed":0,"sent":0,"skipped":0,"errors":0}`, out.String())
}

func TestServe_RefusesDefaultSecretInProduction(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "kollab.db"))
	t.Setenv("LOG_LEVEL", "error")

	root := NewRootCmd()
	root.SetArgs([]string{"serve", "--config-dir", dir})
	require.ErrorIs(t, root.Execute(), config.ErrInsecureSecret)
}
