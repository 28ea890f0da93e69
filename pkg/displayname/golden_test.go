package displayname_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/gnana997/displayname/pkg/codegen"
	"github.com/gnana997/displayname/pkg/displayname"
	"github.com/gnana997/displayname/pkg/parser"
	"github.com/gnana997/displayname/pkg/resolver"
	"github.com/gnana997/displayname/pkg/util"
)

type fixture struct {
	fileName string
	input    []byte
	output   string
	opts     []displayname.Option
}

func loadFixture(t *testing.T, path string) fixture {
	t.Helper()
	archive, err := txtar.ParseFile(path)
	require.NoError(t, err)

	var fx fixture
	for _, f := range archive.Files {
		switch {
		case f.Name == "options":
			for _, line := range strings.Fields(string(f.Data)) {
				switch line {
				case "module-level-only":
					fx.opts = append(fx.opts, displayname.WithModuleLevelOnly())
				default:
					t.Fatalf("unknown option %q", line)
				}
			}
		case strings.HasPrefix(f.Name, "input."):
			fx.fileName = f.Name
			fx.input = f.Data
		case strings.HasPrefix(f.Name, "output."):
			fx.output = string(f.Data)
		}
	}
	require.NotEmpty(t, fx.fileName, "fixture needs an input.* file")
	return fx
}

func transform(t *testing.T, manager *parser.ParserManager, fileName string, src []byte, opts []displayname.Option) []byte {
	t.Helper()
	doc, err := manager.ParseDocument(src, fileName)
	require.NoError(t, err)
	require.False(t, doc.HasErrors, "%s does not parse cleanly:\n%s", fileName, src)

	resolver.Resolve(doc.Program)
	displayname.Apply(doc.Program, opts...)

	out, err := codegen.Generate(src, doc.Program)
	require.NoError(t, err)
	return out
}

func TestGolden(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	manager := parser.NewParserManager(util.NewDiscardLogger())
	defer manager.Close()

	for _, file := range files {
		t.Run(strings.TrimSuffix(filepath.Base(file), ".txtar"), func(t *testing.T) {
			fx := loadFixture(t, file)

			got := transform(t, manager, fx.fileName, fx.input, fx.opts)
			assert.Equal(t, fx.output, string(got))

			again := transform(t, manager, fx.fileName, got, fx.opts)
			assert.Equal(t, string(got), string(again), "a second run must not change the output")
		})
	}
}

func TestLabelScopeFollowsShadowedBinding(t *testing.T) {
	manager := parser.NewParserManager(util.NewDiscardLogger())
	defer manager.Close()

	src := `const Foo = 1;
function wrap() {
  const Foo = () => <div />;
  return Foo;
}
`
	doc, err := manager.ParseDocument([]byte(src), "shadow.jsx")
	require.NoError(t, err)
	info := resolver.Resolve(doc.Program)

	report := displayname.Apply(doc.Program)
	require.Len(t, report.Labels, 2)

	inner, outer := report.Labels[0], report.Labels[1]
	assert.Equal(t, "Foo", inner.Name)
	assert.Equal(t, "wrap", outer.Name)
	assert.NotEqual(t, outer.Scope, inner.Scope)
	assert.True(t, info.Encloses(outer.Scope, inner.Scope))

	out, err := codegen.Generate([]byte(src), doc.Program)
	require.NoError(t, err)
	assert.Equal(t, `const Foo = 1;
function wrap() {
  const Foo = () => <div />;
  Foo.displayName = "Foo";
  return Foo;
}
wrap.displayName = "wrap";
`, string(out))
}

func TestFindCandidatesOnParsedSource(t *testing.T) {
	manager := parser.NewParserManager(util.NewDiscardLogger())
	defer manager.Close()

	src := "export default function App() { return <main />; }\nconst Ctx = createContext(null);\nconst n = 1;\n"
	doc, err := manager.ParseDocument([]byte(src), "app.jsx")
	require.NoError(t, err)

	cands := displayname.FindCandidates(doc.Program)
	require.Len(t, cands, 2)

	assert.Equal(t, "App", cands[0].Name)
	assert.Equal(t, displayname.KindDefaultFunction, cands[0].Kind)
	assert.True(t, cands[0].Exported)
	assert.Equal(t, "App", src[cands[0].Span.Lo:cands[0].Span.Hi])

	assert.Equal(t, "Ctx", cands[1].Name)
	assert.Equal(t, displayname.KindVariable, cands[1].Kind)
	assert.False(t, cands[1].Exported)
	assert.Equal(t, 1, cands[1].Pos)
}
