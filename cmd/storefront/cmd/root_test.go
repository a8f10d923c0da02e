package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"serve"},
		{"migrate"},
		{"keys", "init"},
		{"sessions", "revoke"},
		{"sessions", "list"},
		{"products", "import"},
	} {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			found, _, err := rootCmd.Find(path)
			require.NoError(t, err)
			assert.Equal(t, path[len(path)-1], found.Name())
		})
	}
}

func TestLoadRuntime(t *testing.T) {
	t.Run("valid log settings", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "warn")
		t.Setenv("LOG_FORMAT", "console")

		cfg, logger, err := loadRuntime(context.Background(), false)
		require.NoError(t, err)
		require.NotNil(t, cfg)
		require.NotNil(t, logger)
	})

	t.Run("invalid log level", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "loud")

		cfg, logger, err := loadRuntime(context.Background(), false)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Nil(t, logger)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("validation failure", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "info")
		t.Setenv("PASSWORD_ARGON2_MEMORY_KB", "64")

		_, _, err := loadRuntime(context.Background(), true)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config")
	})
}

func TestKeysInit(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	keyPath := filepath.Join(t.TempDir(), "security", "jwt_private_key.der")
	t.Setenv("AUTH_KEY_PATH", keyPath)

	out, err := execute(t, "keys", "init")
	require.NoError(t, err)

	_, statErr := os.Stat(keyPath)
	require.NoError(t, statErr)
	assert.True(t, strings.HasPrefix(out, keyPath+"\t"))

	// the fingerprint is stable across runs
	again, err := execute(t, "keys", "init")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestArgumentValidation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "migrate needs a direction",
			args:    []string{"migrate"},
			wantErr: "accepts 1 arg",
		},
		{
			name:    "migrate rejects unknown direction",
			args:    []string{"migrate", "sideways"},
			wantErr: "invalid argument",
		},
		{
			name:    "revoke needs a uuid",
			args:    []string{"sessions", "revoke", "not-a-uuid"},
			wantErr: "invalid token id",
		},
		{
			name:    "list needs a uuid",
			args:    []string{"sessions", "list", "ada"},
			wantErr: "invalid user id",
		},
		{
			name:    "import needs a readable file",
			args:    []string{"products", "import", filepath.Join(t.TempDir(), "missing.json")},
			wantErr: "failed to read products file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReadProducts(t *testing.T) {
	write := func(t *testing.T, content string) string {
		path := filepath.Join(t.TempDir(), "products.json")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	t.Run("parses variants", func(t *testing.T) {
		path := write(t, `[
			{"title":"Hacker Hoodie","slug":"hoodie-black-m","desc":"warm","category":"hoodies","color":"black","size":"M","price":1499,"stock_qty":3},
			{"title":"Hacker Hoodie","slug":"hoodie-grey-l","category":"hoodies","color":"grey","size":"L","price":1499,"stock_qty":0}
		]`)

		products, err := readProducts(path)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "hoodie-black-m", products[0].Slug)
		assert.Equal(t, "warm", products[0].Description)
		assert.Equal(t, 3, products[0].StockQty)
		assert.False(t, products[1].InStock())
	})

	t.Run("empty array", func(t *testing.T) {
		_, err := readProducts(write(t, `[]`))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "is empty")
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := readProducts(write(t, `{"title":`))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse products file")
	})
}
