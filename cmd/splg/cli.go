package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/splg/internal/config"
	"github.com/hpungsan/splg/internal/errors"
	"github.com/hpungsan/splg/internal/ops"
	"github.com/hpungsan/splg/internal/palette"
	"github.com/hpungsan/splg/internal/web"
)

// maxInputBytes caps how much input is read from stdin or --file.
const maxInputBytes = 1 << 20

// newCLIApp creates the CLI application with all commands.
func newCLIApp(cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "splg",
		Usage:   "Enumerate every subset of a comma-separated list and chart their sizes",
		Version: Version,
		Commands: []*cli.Command{
			generateCmd(cfg),
			validateCmd(cfg),
			chartCmd(cfg),
			serveCmd(cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// inputFlags are shared by every command that takes an item list.
func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Read the item list from a file"},
	}
}

// paletteFlags select how sets are colored.
func paletteFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "palette", Aliases: []string{"p"}, Usage: "Color palette: random|fixed (default from config)"},
		&cli.Int64Flag{Name: "seed", Usage: "Seed for the random palette (0 = clock)"},
	}
}

// generateCmd creates the generate command.
func generateCmd(cfg *config.Config) *cli.Command {
	flags := append(inputFlags(), paletteFlags()...)
	flags = append(flags,
		&cli.BoolFlag{Name: "json", Usage: "Print the full result as JSON"},
		&cli.BoolFlag{Name: "no-color", Usage: "Disable colored output"},
	)

	return &cli.Command{
		Name:      "generate",
		Usage:     "List every non-empty subset of the items, smallest first",
		ArgsUsage: "[items]",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			if c.Bool("no-color") {
				color.NoColor = true
			}

			input, err := readInput(c)
			if err != nil {
				return outputError(err)
			}

			result, err := ops.Generate(commandConfig(c, cfg), ops.GenerateInput{Input: input})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("json") {
				return outputJSON(c.App.Writer, result)
			}
			return outputSets(c.App.Writer, result)
		},
	}
}

// validateCmd creates the validate command.
func validateCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check the items without enumerating them",
		ArgsUsage: "[items]",
		Flags:     inputFlags(),
		Action: func(c *cli.Context) error {
			input, err := readInput(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Validate(cfg, ops.ValidateInput{Input: input})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// chartCmd creates the chart command.
func chartCmd(cfg *config.Config) *cli.Command {
	flags := append(inputFlags(), paletteFlags()...)
	flags = append(flags,
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output path (.png, .jpg, .jpeg, .pdf); default ~/.splg/charts/sets-<timestamp>.png"},
	)

	return &cli.Command{
		Name:      "chart",
		Usage:     "Generate the sets and save the set size graph",
		ArgsUsage: "[items]",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			input, err := readInput(c)
			if err != nil {
				return outputError(err)
			}

			cmdCfg := commandConfig(c, cfg)
			result, err := ops.Generate(cmdCfg, ops.GenerateInput{Input: input})
			if err != nil {
				return outputError(err)
			}

			output, err := ops.SaveChart(cmdCfg, ops.SaveChartInput{
				Result: result,
				Path:   c.String("out"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8642, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port < 1 || port > 65535 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("port must be between 1 and 65535, got %d", port)))
			}

			srv := web.NewServer(cfg, Version, c.String("bind"), port)
			if err := web.Run(srv); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// Helper functions

// commandConfig applies --palette and --seed on top of the loaded config.
func commandConfig(c *cli.Context, cfg *config.Config) *config.Config {
	overlay := &config.Config{}
	if c.IsSet("palette") {
		overlay.Palette = c.String("palette")
	}
	if c.IsSet("seed") {
		overlay.Seed = c.Int64("seed")
	}
	return config.Merge(cfg, overlay)
}

// readInput returns the item list from, in order: --file, positional
// arguments, piped stdin. Positional arguments are joined with spaces so
// `splg generate English, French` works unquoted.
func readInput(c *cli.Context) (string, error) {
	if path := c.String("file"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			if stderrors.Is(err, os.ErrNotExist) {
				return "", errors.NewFileNotFound(path)
			}
			return "", errors.NewInternal(err)
		}
		defer f.Close()
		return readLimited(f, maxInputBytes)
	}

	if c.NArg() > 0 {
		return strings.Join(c.Args().Slice(), " "), nil
	}

	if stdinHasData() {
		return readStdin(maxInputBytes)
	}

	return "", nil
}

// outputSets prints one colored line per set.
func outputSets(w io.Writer, result *ops.Result) error {
	var b strings.Builder
	for _, s := range result.Sets {
		b.WriteString(palette.Colorize(s.Color, s.Line()))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// outputJSON marshals result to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var sErr *errors.SplgError
	if stderrors.As(err, &sErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", sErr.Code, sErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin, up to limit bytes.
func readStdin(limit int64) (string, error) {
	return readLimited(os.Stdin, limit)
}

// readLimited reads r fully, failing when it holds more than limit bytes.
func readLimited(r io.Reader, limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if int64(len(data)) > limit {
		return "", errors.NewInvalidRequest(fmt.Sprintf("input exceeds %d bytes", limit))
	}
	return strings.TrimSpace(string(data)), nil
}
