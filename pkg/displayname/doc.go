// Package displayname inserts `Name.displayName = "Name";` after bindings
// that define UI components.
//
// For every statement list in a tree the pass runs three steps: collect
// candidates (component-shaped declarations at the list's own top level),
// collect names that already carry a displayName assignment, then insert one
// label statement after each unlabeled candidate's originating statement.
// Lists are processed children first, so labels inserted into a parent are
// never revisited.
//
// The pass is a pure syntax transform. It does not evaluate code, follow
// imports or type-check, and it never modifies an existing statement.
package displayname
