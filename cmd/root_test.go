package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	t.Parallel()
	cmd := NewRootCmd()

	assert.Equal(t, "saleorwipe", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	expectedKeywords := []string{
		"login",
		"list products",
		"wipe products",
		"bulk delete",
		"config",
	}

	for _, keyword := range expectedKeywords {
		assert.Contains(t, cmd.Long, keyword)
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	t.Parallel()
	cmd := NewRootCmd()

	for _, path := range [][]string{
		{"login"},
		{"list", "products"},
		{"wipe", "products"},
		{"config", "show"},
		{"config", "set"},
		{"completion"},
	} {
		found, _, err := cmd.Find(path)
		require.NoError(t, err, "Failed to find %v", path)
		assert.Equal(t, path[len(path)-1], strings.Fields(found.Use)[0])
	}
}

func TestConnectionFlags(t *testing.T) {
	t.Parallel()
	cmd := NewRootCmd()

	for _, path := range [][]string{{"login"}, {"list", "products"}, {"wipe", "products"}} {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err)
		for _, name := range []string{"endpoint", "email", "password", "channel", "page-size", "timeout", "max-pages"} {
			assert.NotNil(t, sub.Flags().Lookup(name), "%v is missing --%s", path, name)
		}
	}
}

func TestRootCommandHelp(t *testing.T) {
	t.Parallel()
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"--help"})

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()

	assert.NoError(t, err, "Expected --help to succeed")
	assert.Contains(t, stdout.String(), "--log-api-calls")
}

func TestRootCommandVersion(t *testing.T) {
	t.Parallel()
	cmd := NewRootCmd()

	assert.NotEmpty(t, cmd.Version, "cmd.Version should not be empty")

	// Version should be set (either "dev" or injected at build time)
	validVersion := cmd.Version == "dev" || strings.HasPrefix(cmd.Version, "v")
	assert.True(t, validVersion, "Expected version to be 'dev' or start with 'v', got %q", cmd.Version)
}

func TestRootCommandOutputIncludesVersion(t *testing.T) {
	t.Parallel()
	res := runCmd(t, "")

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "saleorwipe version", "Expected root command output to contain version")
}

func TestRootCommandPersistentFlags(t *testing.T) {
	t.Parallel()
	cmd := NewRootCmd()

	for _, name := range []string{"config", "log-api-calls", "quiet", "verbose"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "Expected --%s persistent flag to exist", name)
	}
	assert.NotNil(t, cmd.PersistentFlags().ShorthandLookup("q"), "Expected -q shorthand for --quiet flag")
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()
	res := runCmd(t, "", "delete")
	assert.Error(t, res.err)
}
