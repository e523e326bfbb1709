package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/cmdext/types"
)

func writeConfig(t *testing.T, level string) string {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "cmdext.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("game_root: "+dir+"\nlog_level: "+level+"\n"), 0o644))
	return cfg
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := writeConfig(t, "error")

	root := newRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(append([]string{"--config", cfg}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeMod(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mod.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCommands_ListsBuiltins(t *testing.T) {
	out, err := execute(t, "commands")
	require.NoError(t, err)
	assert.Contains(t, out, "usage: Clone")
	assert.Contains(t, out, "usage: SetEarly")
}

func TestInspect_JSON(t *testing.T) {
	path := writeMod(t, "# @title Inspected\nClone GD_A GD_B\n")
	out, err := execute(t, "inspect", path, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "Inspected"`)
	assert.Contains(t, out, `"name": "Clone"`)
}

func TestInspect_KnownNames(t *testing.T) {
	path := writeMod(t, "<BLCMM v=\"1\">\n<body>\n<comment>MyCmd x</comment>\n<comment>Other y</comment>\n</body>\n</BLCMM>\n")
	out, err := execute(t, "inspect", path, "--known", "MyCmd")
	require.NoError(t, err)
	assert.Contains(t, out, "name: MyCmd")
	assert.NotContains(t, out, "name: Other")
}

func TestInspect_BadFormat(t *testing.T) {
	path := writeMod(t, "Clone GD_A GD_B\n")
	_, err := execute(t, "inspect", path, "--format", "toml")
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	path := writeMod(t, "Clone GD_A GD_B\nset GD_A B 1\n")
	_, err := execute(t, "run", path)
	require.NoError(t, err)

	_, err = execute(t, "run", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestConsole_Script(t *testing.T) {
	script := writeMod(t, "/commands\n/quit\n")
	out, err := execute(t, "console", "--script", script)
	require.NoError(t, err)
	assert.Contains(t, out, "usage: Clone")
	assert.Contains(t, out, "[Goodbye.]")
}

func TestSession_GameLogsFollowEngineLogger(t *testing.T) {
	s, err := newSession(context.Background(), &rootFlags{configFile: writeConfig(t, "info")})
	require.NoError(t, err)
	defer s.Close()

	// Redirecting the engine logger, as the console does, must capture the
	// dry-run game and the host as well.
	buf := &bytes.Buffer{}
	s.engine.Logger.SetOutput(buf)

	s.engine.Execute("KeepAlive GD_Foo.Bar")
	require.Equal(t, types.NotRecognized, s.engine.Execute("obj dump GD_Foo"))
	s.engine.Host.Native("obj dump GD_Foo")
	assert.Contains(t, buf.String(), "keep alive")
	assert.Contains(t, buf.String(), "object=GD_Foo.Bar")
	assert.Contains(t, buf.String(), "native")

	buf.Reset()
	s.engine.Logger.SetLevel(log.WarnLevel)
	s.engine.Execute("KeepAlive GD_Quiet")
	assert.Empty(t, buf.String())
}
