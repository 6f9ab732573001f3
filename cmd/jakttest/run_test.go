package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jakt-lang/jakttest/internal/config"
)

func TestResolvePathsPrefersPositionalArgs(t *testing.T) {
	cfg := config.Default()
	cfg.Paths = []string{"from-config.jakt"}

	paths, err := resolvePaths([]string{"from-args.jakt"}, cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"from-args.jakt"}, paths)
}

func TestResolvePathsFallsBackToConfigFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths = []string{"a.jakt", "b.jakt"}

	paths, err := resolvePaths(nil, cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"a.jakt", "b.jakt"}, paths)
}

func TestResolvePathsErrorsWithNeither(t *testing.T) {
	_, err := resolvePaths(nil, config.Default())
	require.ErrorIs(t, err, errArg)
}
