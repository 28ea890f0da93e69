package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Tool names exposed by the server.
const (
	ToolAddDisplayNames = "add_display_names"
	ToolFindComponents  = "find_components"
)

// defaultFileName picks the grammar when a call omits filename. TSX accepts
// every JS, JSX and TS input the other grammars accept, apart from legacy
// `<T>expr` casts.
const defaultFileName = "input.tsx"

func addDisplayNamesTool() mcp.Tool {
	return mcp.NewTool(ToolAddDisplayNames,
		mcp.WithDescription("Insert `Name.displayName = \"Name\";` after every React component binding "+
			"(arrow functions, function declarations and wrapped components returning JSX) that is not labeled yet. "+
			"Returns the rewritten code and the inserted labels. Running it twice is a no-op."),
		mcp.WithString("code", mcp.Required(), mcp.Description("JavaScript or TypeScript source")),
		mcp.WithString("filename", mcp.Description("File name used to pick the grammar (.js .jsx .mjs .cjs .ts .tsx .mts .cts). Default input.tsx")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func findComponentsTool() mcp.Tool {
	return mcp.NewTool(ToolFindComponents,
		mcp.WithDescription("List the component bindings in a source file that are eligible for a displayName label, "+
			"including ones already labeled. Does not modify the code."),
		mcp.WithString("code", mcp.Required(), mcp.Description("JavaScript or TypeScript source")),
		mcp.WithString("filename", mcp.Description("File name used to pick the grammar. Default input.tsx")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}
