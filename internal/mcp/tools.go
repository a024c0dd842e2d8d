package mcp

import "github.com/mark3labs/mcp-go/mcp"

var validateToolDef = mcp.NewTool("sets_validate",
	mcp.WithDescription("Check a comma-separated item list without enumerating it. "+
		"Returns the parsed items and how many sets they would produce, or the first rule the input breaks "+
		"(MISSING_INPUT, NUMERIC_ONLY, MISSING_COMMAS, DOUBLE_SPACE, DOUBLE_COMMA, MULTI_WORD_ENTRY)."),
	mcp.WithString("input",
		mcp.Required(),
		mcp.Description("Comma-separated single-word items, e.g. \"English, French, German\""),
	),
)

var generateToolDef = mcp.NewTool("sets_generate",
	mcp.WithDescription("Enumerate every non-empty subset of a comma-separated item list, smallest sets first. "+
		"The result becomes the current result used by sets_chart and sets_save_chart."),
	mcp.WithString("input",
		mcp.Required(),
		mcp.Description("Comma-separated single-word items, e.g. \"English, French, German\""),
	),
	mcp.WithBoolean("labels_only",
		mcp.Description("Return only set labels and sizes, without ids and colors"),
	),
)

var clearToolDef = mcp.NewTool("sets_clear",
	mcp.WithDescription("Discard the current result."),
)

var chartToolDef = mcp.NewTool("sets_chart",
	mcp.WithDescription("Render the set size graph as an image. "+
		"With input, generates first; without, charts the current result (NO_DATA if there is none)."),
	mcp.WithString("input",
		mcp.Description("Optional comma-separated items to generate before charting"),
	),
	mcp.WithString("format",
		mcp.Description("Image format (default png)"),
		mcp.Enum("png", "jpeg"),
	),
)

var saveChartToolDef = mcp.NewTool("sets_save_chart",
	mcp.WithDescription("Write the graph of the current result to a file. "+
		"The extension (.png, .jpg, .jpeg, .pdf) picks the format. Defaults to ~/.splg/charts/sets-<timestamp>.png."),
	mcp.WithString("path",
		mcp.Description("Destination file path inside an allowed directory"),
	),
)
