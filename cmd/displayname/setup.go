package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

// serverName is the key the MCP server is registered under.
const serverName = "displayname"

// agent describes one MCP client and where its server list lives.
type agent struct {
	ID   string
	Name string
	// Binary is set for clients configured through `<binary> mcp add`.
	Binary string
	// Markers are project directories whose presence means the client is in use.
	Markers []string
	// ConfigPath returns the JSON file holding the server list.
	ConfigPath func(env *setupEnv) string
	ServersKey string
	Extra      map[string]string
}

// setupEnv holds the system lookups setup depends on, replaceable in tests.
type setupEnv struct {
	lookPath func(string) (string, error)
	stat     func(string) (os.FileInfo, error)
	homeDir  func() (string, error)
	getenv   func(string) string
	goos     string
	run      func(name string, args ...string) error
}

func defaultSetupEnv(stdout, stderr io.Writer) *setupEnv {
	return &setupEnv{
		lookPath: exec.LookPath,
		stat:     os.Stat,
		homeDir:  os.UserHomeDir,
		getenv:   os.Getenv,
		goos:     runtime.GOOS,
		run: func(name string, args ...string) error {
			cmd := exec.Command(name, args...)
			cmd.Stdout = stdout
			cmd.Stderr = stderr
			return cmd.Run()
		},
	}
}

var agents = []agent{
	{
		ID: "codex", Name: "Codex CLI",
		Binary: "codex",
	},
	{
		ID: "vscode", Name: "VS Code",
		Markers:    []string{".vscode"},
		ConfigPath: func(*setupEnv) string { return filepath.Join(".vscode", "mcp.json") },
		ServersKey: "servers",
		Extra:      map[string]string{"type": "stdio"},
	},
	{
		ID: "cursor", Name: "Cursor",
		Markers:    []string{".cursor"},
		ConfigPath: func(*setupEnv) string { return filepath.Join(".cursor", "mcp.json") },
		ServersKey: "mcpServers",
	},
	{
		ID: "desktop", Name: "Claude Desktop",
		ConfigPath: desktopConfigPath,
		ServersKey: "mcpServers",
	},
}

func desktopConfigPath(env *setupEnv) string {
	home, _ := env.homeDir()
	switch env.goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Claude", "claude_desktop_config.json")
	case "windows":
		return filepath.Join(env.getenv("APPDATA"), "Claude", "claude_desktop_config.json")
	default:
		return filepath.Join(home, ".config", "Claude", "claude_desktop_config.json")
	}
}

// detectedAgent is an agent found on this machine or in this project.
type detectedAgent struct {
	agent
	Configured bool
	Path       string
}

// detectAgents resolves paths relative to dir.
func detectAgents(env *setupEnv, dir string) []detectedAgent {
	var found []detectedAgent
	for _, ag := range agents {
		if ag.Binary != "" {
			if _, err := env.lookPath(ag.Binary); err == nil {
				found = append(found, detectedAgent{agent: ag})
			}
			continue
		}

		path := ag.ConfigPath(env)
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}

		present := false
		for _, m := range ag.Markers {
			if _, err := env.stat(filepath.Join(dir, m)); err == nil {
				present = true
				break
			}
		}
		if len(ag.Markers) == 0 {
			if _, err := env.stat(filepath.Dir(path)); err == nil {
				present = true
			}
		}
		if present {
			found = append(found, detectedAgent{agent: ag, Path: path, Configured: hasServerEntry(path, ag.ServersKey)})
		}
	}
	return found
}

func hasServerEntry(path, serversKey string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var config map[string]any
	if err := json.Unmarshal(data, &config); err != nil {
		return false
	}
	servers, ok := config[serversKey].(map[string]any)
	if !ok {
		return false
	}
	_, exists := servers[serverName]
	return exists
}

func serverEntry(extra map[string]string) map[string]any {
	entry := map[string]any{
		"command": "displayname",
		"args":    []any{"serve"},
	}
	for k, v := range extra {
		entry[k] = v
	}
	return entry
}

// mergeServerEntry adds the server under serversKey, keeping every other
// key. It returns nil, nil when the entry already exists.
func mergeServerEntry(existing []byte, serversKey string, extra map[string]string) ([]byte, error) {
	config := make(map[string]any)
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &config); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	servers, ok := config[serversKey].(map[string]any)
	if !ok {
		servers = make(map[string]any)
	}
	if _, exists := servers[serverName]; exists {
		return nil, nil
	}
	servers[serverName] = serverEntry(extra)
	config[serversKey] = servers

	out, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func configureFile(d detectedAgent) error {
	if err := os.MkdirAll(filepath.Dir(d.Path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	existing, err := os.ReadFile(d.Path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	merged, err := mergeServerEntry(existing, d.ServersKey, d.Extra)
	if err != nil || merged == nil {
		return err
	}
	return os.WriteFile(d.Path, merged, 0o644)
}

func configureBinary(env *setupEnv, d detectedAgent) error {
	return env.run(d.Binary, "mcp", "add", serverName, "--", "displayname", "serve")
}

// promptYesNo reads a Y/n answer. Empty input and EOF mean yes.
func promptYesNo(sc *bufio.Scanner, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s ", question)
	if !sc.Scan() {
		return true
	}
	answer := strings.TrimSpace(strings.ToLower(sc.Text()))
	return answer == "" || answer == "y" || answer == "yes"
}

// executeSetup registers the MCP server with every detected agent, asking
// first unless auto is set.
func executeSetup(env *setupEnv, dir string, r io.Reader, w io.Writer, auto bool) {
	detected := detectAgents(env, dir)
	if len(detected) == 0 {
		fmt.Fprintln(w, "No supported MCP clients detected.")
		return
	}

	fmt.Fprintln(w, "Detected MCP clients:")
	for _, d := range detected {
		if d.Configured {
			fmt.Fprintf(w, "  * %s (already configured)\n", d.Name)
		} else {
			fmt.Fprintf(w, "  * %s\n", d.Name)
		}
	}
	fmt.Fprintln(w)

	sc := bufio.NewScanner(r)
	for _, d := range detected {
		if d.Configured {
			continue
		}
		target := d.Path
		if d.Binary != "" {
			target = d.Binary + " mcp add"
		}
		if !auto && !promptYesNo(sc, w, fmt.Sprintf("Add the %s server to %s (%s)? [Y/n]", serverName, d.Name, target)) {
			fmt.Fprintln(w, "  skipped")
			continue
		}

		var err error
		if d.Binary != "" {
			err = configureBinary(env, d)
		} else {
			err = configureFile(d)
		}
		if err != nil {
			fmt.Fprintf(w, "  ! %s: %v\n", d.Name, err)
			continue
		}
		fmt.Fprintf(w, "  + %s configured\n", d.Name)
	}
}

func (a *app) newSetupCmd() *cobra.Command {
	var auto bool
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register the MCP server with installed clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			executeSetup(defaultSetupEnv(a.stdout, a.stderr), a.dir, a.stdin, a.stdout, auto)
			return nil
		},
	}
	cmd.Flags().BoolVar(&auto, "auto", false, "configure every detected client without asking")
	return cmd
}
