package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/sqlstudio-labs/sqlstudio/pkg/core"
	"github.com/sqlstudio-labs/sqlstudio/pkg/sandbox"
)

func runQueryREPL(cmd *cobra.Command, runner *sandbox.Runner, ex *core.Exercise, opts *queryOptions) error {
	historyFile := filepath.Join(os.TempDir(), "sqlstudio_query_history")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "sqlstudio> ",
		HistoryFile:     historyFile,
		AutoComplete:    newTableCompleter(ex),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "SQLStudio Query REPL (exercise: %s, workspace: %s)\n", ex.Title, sandbox.DeriveNamespace(ex.ID))
	_, _ = fmt.Fprintln(out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(out)

	var multiLineBuffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			multiLineBuffer.Reset()
			rl.SetPrompt("sqlstudio> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if handleDotCommand(cmd, ex, line) {
				if line == ".quit" || line == ".exit" {
					break
				}
				continue
			}
		}

		// Accumulate multi-line SQL until semicolon
		multiLineBuffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			multiLineBuffer.WriteString(" ")
			rl.SetPrompt("      ...> ")
			continue
		}
		rl.SetPrompt("sqlstudio> ")

		query := strings.TrimSuffix(multiLineBuffer.String(), ";")
		multiLineBuffer.Reset()

		if err := executeAndRender(cmd, runner, ex, query, opts.Format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(out)
	}

	return nil
}

func handleDotCommand(cmd *cobra.Command, ex *core.Exercise, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	out := cmd.OutOrStdout()

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(out)
		return true

	case ".tables":
		for _, t := range ex.SampleTables {
			_, _ = fmt.Fprintln(out, t.TableName)
		}
		return true

	case ".schema":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .schema <table>")
			return true
		}
		printTableSchema(cmd, ex, parts[1])
		return true

	case ".question":
		_, _ = fmt.Fprintln(out, ex.Question)
		return true

	case ".clear":
		fmt.Print("\033[H\033[2J")
		return true

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
		return true
	}
}

func printTableSchema(cmd *cobra.Command, ex *core.Exercise, name string) {
	for _, t := range ex.SampleTables {
		if t.TableName != name {
			continue
		}
		for _, c := range t.Columns {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %s\n", c.Name, sandbox.MapType(c.Type))
		}
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown table: %s\n", name)
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .question       Show the exercise question
  .tables         List the exercise's sample tables
  .schema <name>  Show columns of a sample table
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Only read-only statements are admitted
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

// newTableCompleter creates a readline completer for the exercise's tables.
func newTableCompleter(ex *core.Exercise) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, t := range ex.SampleTables {
		items = append(items, readline.PcItem(t.TableName))
	}
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".question"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem(".quit"),
	)
	return readline.NewPrefixCompleter(items...)
}
