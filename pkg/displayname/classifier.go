package displayname

import "github.com/gnana997/displayname/pkg/ast"

// Signals records which component markers a subtree contains.
type Signals uint8

const (
	// SignalElement is a JSX literal or a call to an element-construction function.
	SignalElement Signals = 1 << iota
	// SignalComponentAPI is a call to a component-wrapping API or a styled template.
	SignalComponentAPI
)

// Has reports whether every bit of flag is set.
func (s Signals) Has(flag Signals) bool {
	return s&flag == flag
}

// Any reports whether at least one marker was found.
func (s Signals) Any() bool {
	return s != 0
}

func (s Signals) String() string {
	switch s {
	case 0:
		return "none"
	case SignalElement:
		return "element"
	case SignalComponentAPI:
		return "component-api"
	default:
		return "element|component-api"
	}
}

// elementConstructors are the JSX runtime and classic element factories.
var elementConstructors = map[string]bool{
	"jsx":           true,
	"jsxs":          true,
	"_jsx":          true,
	"_jsxs":         true,
	"jsxDEV":        true,
	"_jsxDEV":       true,
	"createElement": true,
}

// componentAPIs wrap a value into something component-like without JSX
// necessarily appearing in the argument.
var componentAPIs = map[string]bool{
	"createContext": true,
	"observer":      true,
	"connect":       true,
	"styled":        true,
}

// styledTag is the object whose member tags a styled-component template: styled.div`...`.
const styledTag = "styled"

// Classify folds over the whole subtree rooted at n and returns the markers
// found anywhere inside it. Matching is syntactic: X.createElement matches for
// any X, including document.
func Classify(n ast.Node) Signals {
	if n == nil {
		return 0
	}

	var s Signals
	switch n := n.(type) {
	case *ast.EJSXElement, *ast.EJSXFragment:
		s |= SignalElement

	case *ast.ECall:
		if name, ok := calleeName(n.Callee); ok {
			if elementConstructors[name] {
				s |= SignalElement
			}
			if componentAPIs[name] {
				s |= SignalComponentAPI
			}
		}

	case *ast.ETaggedTemplate:
		if m, ok := n.Tag.(*ast.EMember); ok && !m.Computed {
			if obj, ok := m.Object.(*ast.EIdent); ok && obj.Name == styledTag {
				s |= SignalComponentAPI
			}
		}
	}

	for _, c := range ast.Children(n) {
		s |= Classify(c)
		if s.Has(SignalElement | SignalComponentAPI) {
			break
		}
	}
	return s
}

// IsComponentProducing reports whether n contains any component marker.
func IsComponentProducing(n ast.Node) bool {
	return Classify(n).Any()
}

// calleeName returns the bare name of f() or the property name of X.f().
func calleeName(callee ast.Expr) (string, bool) {
	switch c := callee.(type) {
	case *ast.EIdent:
		return c.Name, true
	case *ast.EMember:
		if !c.Computed {
			return c.Prop.Name, true
		}
	}
	return "", false
}
