package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	appSource  = "export const App = () => <div />;\n"
	appLabeled = "export const App = () => <div />;\nApp.displayName = \"App\";\n"
)

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, dir string, stdin io.Reader, args ...string) cliResult {
	t.Helper()
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	var stdout, stderr bytes.Buffer
	a := &app{stdin: stdin, stdout: &stdout, stderr: &stderr, dir: dir}
	code := a.execute(args)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestVersion(t *testing.T) {
	res := runCLI(t, t.TempDir(), nil, "version")
	assert.Equal(t, 0, res.code)
	assert.Equal(t, "displayname "+version+"\n", res.stdout)
}

func TestUnknownCommand(t *testing.T) {
	res := runCLI(t, t.TempDir(), nil, "frobnicate")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "unknown command")
}

func TestPrint(t *testing.T) {
	dir := writeTree(t, map[string]string{"App.jsx": appSource})

	res := runCLI(t, dir, nil, "print", "App.jsx")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, appLabeled, res.stdout)
	assert.Equal(t, appSource, readFile(t, filepath.Join(dir, "App.jsx")), "print must not write")
}

func TestPrintStdin(t *testing.T) {
	src := "const Box = (p: { n: number }) => <div />;\n"
	res := runCLI(t, t.TempDir(), strings.NewReader(src), "print", "-")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, src+"Box.displayName = \"Box\";\n", res.stdout)

	res = runCLI(t, t.TempDir(), strings.NewReader("a {}"), "print", "-", "--filename", "x.css")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "unsupported language")
}

func TestRunAndCheck(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"src/App.jsx":          appSource,
		"src/math.ts":          "export const add = (a: number, b: number) => a + b;\n",
		"node_modules/x/a.jsx": appSource,
	})

	res := runCLI(t, dir, nil, "check")
	assert.Equal(t, 1, res.code)
	assert.Equal(t, "src/App.jsx\n", res.stdout)
	assert.Contains(t, res.stderr, "1 of 2 files need displayName labels")
	assert.Equal(t, appSource, readFile(t, filepath.Join(dir, "src", "App.jsx")))

	res = runCLI(t, dir, nil, "run")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "labeled 1 components in 1 of 2 files\n", res.stdout)
	assert.Equal(t, appLabeled, readFile(t, filepath.Join(dir, "src", "App.jsx")))
	assert.Equal(t, appSource, readFile(t, filepath.Join(dir, "node_modules", "x", "a.jsx")))

	res = runCLI(t, dir, nil, "check")
	assert.Equal(t, 0, res.code, res.stderr)
	assert.Empty(t, res.stdout)
}

func TestRunPathsAndFlags(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a/One.jsx": "export const One = () => <div />;\n",
		"b/Two.tsx": "export const Two = () => <div />;\n",
	})

	res := runCLI(t, dir, nil, "run", "a", "--workers", "1")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, readFile(t, filepath.Join(dir, "a", "One.jsx")), "One.displayName")
	assert.NotContains(t, readFile(t, filepath.Join(dir, "b", "Two.tsx")), "displayName")

	res = runCLI(t, dir, nil, "run", "--include", "**/*.jsx")
	require.Equal(t, 0, res.code, res.stderr)
	assert.NotContains(t, readFile(t, filepath.Join(dir, "b", "Two.tsx")), "displayName")
}

func TestRunFailures(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"App.jsx":    appSource,
		"broken.tsx": "export const A = () => <div\n",
	})

	res := runCLI(t, dir, nil, "run")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "broken.tsx")
	assert.Contains(t, res.stderr, "1 files failed")
	assert.Equal(t, appLabeled, readFile(t, filepath.Join(dir, "App.jsx")))

	res = runCLI(t, dir, nil, "run", "--allow-errors")
	assert.Equal(t, 0, res.code, res.stderr)
}

func TestModuleLevelOnlyFromConfigFile(t *testing.T) {
	src := "export const App = () => <div />;\n\ndescribe(\"x\", () => {\n  const Inner = () => <span />;\n});\n"
	dir := writeTree(t, map[string]string{
		"App.test.jsx":                src,
		".displayname/config.yaml": "module_level_only: true\n",
	})

	res := runCLI(t, dir, nil, "print", "App.test.jsx")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "App.displayName")
	assert.NotContains(t, res.stdout, "Inner.displayName")

	res = runCLI(t, dir, nil, "print", "App.test.jsx", "--module-level-only=false")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Inner.displayName")
}

func TestModuleLevelOnlyHelp(t *testing.T) {
	res := runCLI(t, t.TempDir(), nil, "run", "--help")
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "--module-level-only")
	assert.Contains(t, res.stdout, "test callbacks")
	assert.Contains(t, res.stdout, "Babel and SWC displayName plugins")
}

func TestInvalidConfig(t *testing.T) {
	res := runCLI(t, t.TempDir(), nil, "version", "--log-level", "loud")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "invalid log level")
}

func TestInspect(t *testing.T) {
	dir := writeTree(t, map[string]string{"page.jsx": `export const Header = () => <header />;
Header.displayName = "Header";
export default function Page() {
  return <main />;
}
`})

	res := runCLI(t, dir, nil, "inspect", "page.jsx")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, `page.jsx
  Header  variable          1:14  labeled  exported
  Page    default-function  3:25  missing  exported

2 components, 1 missing a label
`, res.stdout)

	res = runCLI(t, dir, nil, "inspect", "page.jsx", "--json")
	require.Equal(t, 0, res.code, res.stderr)
	var comps []inspectedComponent
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &comps))
	require.Len(t, comps, 2)
	assert.True(t, comps[0].Labeled)
	assert.False(t, comps[1].Labeled)
}

func TestInspectEmpty(t *testing.T) {
	dir := writeTree(t, map[string]string{"util.js": "export const n = 1;\n"})
	res := runCLI(t, dir, nil, "inspect", "util.js")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "util.js\n  no components\n", res.stdout)
}
