package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- JSON merge ---

func TestMergeServerEntry_EmptyFile(t *testing.T) {
	out, err := mergeServerEntry(nil, "mcpServers", nil)
	require.NoError(t, err)

	var config map[string]any
	require.NoError(t, json.Unmarshal(out, &config))
	entry := config["mcpServers"].(map[string]any)[serverName].(map[string]any)
	assert.Equal(t, "displayname", entry["command"])
	assert.Equal(t, []any{"serve"}, entry["args"])
}

func TestMergeServerEntry_KeepsOtherServers(t *testing.T) {
	existing := []byte(`{"theme":"dark","mcpServers":{"other":{"command":"other","args":["start"]}}}`)
	out, err := mergeServerEntry(existing, "mcpServers", map[string]string{"type": "stdio"})
	require.NoError(t, err)

	var config map[string]any
	require.NoError(t, json.Unmarshal(out, &config))
	assert.Equal(t, "dark", config["theme"])
	servers := config["mcpServers"].(map[string]any)
	assert.Contains(t, servers, "other")
	assert.Equal(t, "stdio", servers[serverName].(map[string]any)["type"])
	assert.True(t, bytes.HasSuffix(out, []byte("\n")))
}

func TestMergeServerEntry_AlreadyConfigured(t *testing.T) {
	existing := []byte(`{"servers":{"displayname":{"command":"displayname"}}}`)
	out, err := mergeServerEntry(existing, "servers", nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestMergeServerEntry_InvalidJSON(t *testing.T) {
	_, err := mergeServerEntry([]byte("{"), "servers", nil)
	assert.ErrorContains(t, err, "invalid JSON")
}

// --- detection and orchestration ---

func fakeEnv(t *testing.T, home string, binaries ...string) (*setupEnv, *[]string) {
	t.Helper()
	var ran []string
	return &setupEnv{
		lookPath: func(name string) (string, error) {
			for _, b := range binaries {
				if b == name {
					return "/usr/bin/" + name, nil
				}
			}
			return "", errors.New("not found")
		},
		stat:    os.Stat,
		homeDir: func() (string, error) { return home, nil },
		getenv:  func(string) string { return "" },
		goos:    "linux",
		run: func(name string, args ...string) error {
			ran = append(ran, name+" "+strings.Join(args, " "))
			return nil
		},
	}, &ran
}

func TestDetectAgents(t *testing.T) {
	dir := t.TempDir()
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".vscode"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".config", "Claude"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".config", "Claude", "claude_desktop_config.json"),
		[]byte(`{"mcpServers":{"displayname":{}}}`), 0o644))

	env, _ := fakeEnv(t, home, "codex")
	detected := detectAgents(env, dir)

	ids := make([]string, 0, len(detected))
	for _, d := range detected {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"codex", "vscode", "desktop"}, ids)
	assert.Equal(t, filepath.Join(dir, ".vscode", "mcp.json"), detected[1].Path)
	assert.False(t, detected[1].Configured)
	assert.True(t, detected[2].Configured)
}

func TestDesktopConfigPath(t *testing.T) {
	env, _ := fakeEnv(t, "/home/u")
	env.goos = "darwin"
	assert.Equal(t, filepath.Join("/home/u", "Library", "Application Support", "Claude", "claude_desktop_config.json"), desktopConfigPath(env))

	env.goos = "windows"
	env.getenv = func(string) string { return `C:\AppData` }
	assert.Equal(t, filepath.Join(`C:\AppData`, "Claude", "claude_desktop_config.json"), desktopConfigPath(env))
}

func TestExecuteSetup_Auto(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".cursor"), 0o755))

	env, ran := fakeEnv(t, t.TempDir(), "codex")
	var out bytes.Buffer
	executeSetup(env, dir, strings.NewReader(""), &out, true)

	assert.Equal(t, []string{"codex mcp add displayname -- displayname serve"}, *ran)
	assert.True(t, hasServerEntry(filepath.Join(dir, ".cursor", "mcp.json"), "mcpServers"))
	assert.Contains(t, out.String(), "+ Cursor configured")
	assert.Contains(t, out.String(), "+ Codex CLI configured")
}

func TestExecuteSetup_Prompted(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".vscode"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".cursor"), 0o755))

	env, _ := fakeEnv(t, t.TempDir())
	var out bytes.Buffer
	executeSetup(env, dir, strings.NewReader("n\ny\n"), &out, false)

	assert.False(t, hasServerEntry(filepath.Join(dir, ".vscode", "mcp.json"), "servers"))
	assert.True(t, hasServerEntry(filepath.Join(dir, ".cursor", "mcp.json"), "mcpServers"))
	assert.Contains(t, out.String(), "skipped")
}

func TestExecuteSetup_NothingDetected(t *testing.T) {
	env, _ := fakeEnv(t, t.TempDir())
	var out bytes.Buffer
	executeSetup(env, t.TempDir(), strings.NewReader(""), &out, true)
	assert.Equal(t, "No supported MCP clients detected.\n", out.String())
}
