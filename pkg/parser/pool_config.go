package parser

import (
	"github.com/gnana997/displayname/pkg/util"
)

// getDefaultPoolSize returns the number of parsers kept per grammar.
//
// It MUST match the workspace worker count (both use util.GetOptimalPoolSize)
// so that workers never block waiting for a parser.
func getDefaultPoolSize() int {
	return util.GetOptimalPoolSize()
}
