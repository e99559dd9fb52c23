package middleware

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/MrSnakeDoc/borg-exporter/internal/config"
	"github.com/MrSnakeDoc/borg-exporter/internal/logger"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.UseTestMode()
}

func TestUseMiddlewareChain_Order(t *testing.T) {
	var calls []string
	mark := func(name string) MiddlewareFunc {
		return func(cmd *cobra.Command, args []string, next func(*cobra.Command, []string) error) error {
			calls = append(calls, name)
			return next(cmd, args)
		}
	}

	factory := func() *cobra.Command {
		return &cobra.Command{
			Use: "test",
			PreRunE: func(*cobra.Command, []string) error {
				calls = append(calls, "orig")
				return nil
			},
			RunE: func(*cobra.Command, []string) error {
				calls = append(calls, "run")
				return nil
			},
		}
	}

	cmd := UseMiddlewareChain(mark("a"), mark("b"))(factory)()
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, []string{"a", "b", "orig", "run"}, calls)
}

func TestUseMiddlewareChain_StopsOnError(t *testing.T) {
	ran := false
	fail := func(*cobra.Command, []string, func(*cobra.Command, []string) error) error {
		return errors.New("boom")
	}
	factory := func() *cobra.Command {
		return &cobra.Command{
			Use:           "test",
			SilenceErrors: true,
			SilenceUsage:  true,
			RunE: func(*cobra.Command, []string) error {
				ran = true
				return nil
			},
		}
	}

	cmd := UseMiddlewareChain(fail)(factory)()
	cmd.SetArgs([]string{})
	assert.EqualError(t, cmd.Execute(), "boom")
	assert.False(t, ran)
}

func TestGet(t *testing.T) {
	cmd := &cobra.Command{}
	_, err := Get[*config.Config](cmd, CtxKeyConfig)
	assert.Error(t, err, "nil context")

	cmd.SetContext(context.Background())
	_, err = Get[*config.Config](cmd, CtxKeyConfig)
	assert.Error(t, err, "missing value")

	cmd.SetContext(context.WithValue(context.Background(), CtxKeyConfig, "not a config"))
	_, err = Get[*config.Config](cmd, CtxKeyConfig)
	assert.Error(t, err, "wrong type")

	want := config.Default()
	cmd.SetContext(context.WithValue(context.Background(), CtxKeyConfig, want))
	got, err := Get[*config.Config](cmd, CtxKeyConfig)
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9100\nrepositories:\n  - /data/repo\n"), 0o644))

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	var got *config.Config
	err := LoadConfig(cmd, []string{path}, func(c *cobra.Command, _ []string) error {
		var err error
		got, err = Get[*config.Config](c, CtxKeyConfig)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, uint16(9100), got.Port)
	assert.Equal(t, []string{"/data/repo"}, got.Repositories)
}

func TestLoadConfig_Errors(t *testing.T) {
	next := func(*cobra.Command, []string) error {
		t.Fatal("next must not run")
		return nil
	}

	cmd := &cobra.Command{}
	assert.Error(t, LoadConfig(cmd, nil, next))

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("port: [\n"), 0o644))
	assert.Error(t, LoadConfig(cmd, []string{path}, next))
}

func TestCheckBorgBinary(t *testing.T) {
	orig := lookPath
	defer func() { lookPath = orig }()

	cfg := config.Default()
	cfg.BorgBinary = "/opt/borg/bin/borg"

	cmd := &cobra.Command{}
	cmd.SetContext(context.WithValue(context.Background(), CtxKeyConfig, cfg))

	for _, found := range []bool{true, false} {
		var looked string
		lookPath = func(file string) (string, error) {
			looked = file
			if found {
				return file, nil
			}
			return "", errors.New("not found")
		}

		nextCalled := false
		err := CheckBorgBinary(cmd, nil, func(*cobra.Command, []string) error {
			nextCalled = true
			return nil
		})
		require.NoError(t, err)
		assert.True(t, nextCalled, "found=%v", found)
		assert.Equal(t, "/opt/borg/bin/borg", looked)
	}
}

func TestCheckBorgBinary_RequiresConfig(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	assert.Error(t, CheckBorgBinary(cmd, nil, func(*cobra.Command, []string) error { return nil }))
}
