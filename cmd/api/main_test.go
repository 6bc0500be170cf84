package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/simpage/backend/internal/config"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		kv, err := openBackend(ctx, config.Storage{Backend: config.StoreMemory}, discard)
		require.NoError(t, err)
		assert.Nil(t, kv.sweeper)
		assert.NoError(t, kv.close())
	})

	t.Run("bolt", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "kv.db")
		kv, err := openBackend(ctx, config.Storage{Backend: config.StoreBolt, BoltPath: path}, discard)
		require.NoError(t, err)
		assert.NotNil(t, kv.sweeper)

		require.NoError(t, kv.store.Set(ctx, "k", "v", 0))
		assert.NoError(t, kv.close())
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := openBackend(ctx, config.Storage{Backend: "etcd"}, discard)
		assert.ErrorContains(t, err, "etcd")
	})
}

func TestRunPasswd(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	require.NoError(t, runPasswd(context.Background(), "brand-new-pass", &out))
	assert.Contains(t, out.String(), `"admin"`)

	assert.Error(t, runPasswd(context.Background(), "short", &out))
}

func TestPasswdCmd_Flag(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"passwd", "--password", "another-pass"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "updated")
}
