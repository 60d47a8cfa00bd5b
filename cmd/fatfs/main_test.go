package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	out := &bytes.Buffer{}
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "test.img")
	flags := []string{"--image", img, "--blocks", "32"}
	cmd := func(stdin string, args ...string) (string, error) {
		return run(t, stdin, append(args, flags...)...)
	}

	_, err := cmd("", "format")
	require.Nil(t, err)
	_, err = cmd("", "mkdir", "/docs")
	require.Nil(t, err)
	_, err = cmd("hello\n", "create", "/docs/a")
	require.Nil(t, err)
	_, err = cmd("", "cp", "/docs/a", "/b")
	require.Nil(t, err)
	_, err = cmd("", "append", "/docs/a", "/b")
	require.Nil(t, err)
	_, err = cmd("", "chmod", "4", "/b")
	require.Nil(t, err)

	out, err := cmd("", "cat", "/b")
	require.Nil(t, err)
	require.Equal(t, "hello\nhello\n", out)

	out, err = cmd("", "ls", "/")
	require.Nil(t, err)
	require.Contains(t, out, "docs")
	require.Contains(t, out, "r--")

	out, err = cmd("", "tree")
	require.Nil(t, err)
	require.Contains(t, out, "  docs/")
	require.Contains(t, out, "    a")

	_, err = cmd("", "mv", "/b", "/docs")
	require.Nil(t, err)
	_, err = cmd("", "cat", "/b")
	require.NotNil(t, err)

	out, err = cmd("", "check")
	require.Nil(t, err)
	require.Contains(t, out, "ok")

	out, err = cmd("pwd\ncd docs\nls\n", "shell")
	require.Nil(t, err)
	require.Contains(t, out, "/\n")
	require.Contains(t, out, "b ")

	_, err = cmd("", "rewrite", filepath.Join(dir, "copy.img"))
	require.Nil(t, err)
}
