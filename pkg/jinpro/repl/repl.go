// Package repl provides an interactive console for trying out component
// templates. Each line is rendered as template text against a mutable
// context, with component tags expanded from the configured search
// paths.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"gopkg.in/yaml.v3"

	"github.com/sophloaf2019/jinpro/pkg/jinpro"
)

const PROMPT = ">> "
const CONTINUATION_PROMPT = ".. "

const LOGO = `
  ░▒▓ jinpro ▓▒░`

// Template keywords and REPL commands for tab completion
var completionWords = []string{
	// Commands
	":help", ":ctx", ":set", ":unset", ":clear", "exit", "quit",
	// Tag syntax
	"{{", "{%", "{#",
	// Control structures
	"if", "else", "elif", "endif", "for", "in", "endfor",
	"block", "endblock", "include", "extends", "macro", "endmacro",
	"set", "with", "endwith",
	// Filters
	"upper", "lower", "title", "capitalize", "trim", "length",
	"default", "join", "first", "last", "escape", "safe", "markdown",
	// Common values
	"true", "false",
}

// Start runs the interactive console, reading template lines until EOF
// or an exit command. searchPaths feeds tab completion of component
// names.
func Start(in io.Reader, out io.Writer, p *jinpro.Processor, searchPaths []string, version string) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	components := componentNames(searchPaths)
	line.SetCompleter(func(line string) []string {
		return filterCompletions(line, components)
	})

	historyFile := filepath.Join(os.TempDir(), ".jinpro_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	ctx := jinpro.Context{}

	fmt.Fprintln(out, LOGO)
	fmt.Fprintln(out, "v", version)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Type template text to render it. Component tags expand from the search paths.")
	fmt.Fprintln(out, "End a line with \\ to continue on the next line.")
	fmt.Fprintln(out, "Type ':help' for commands, 'exit' or Ctrl+D to quit")
	fmt.Fprintln(out, "")

	var inputBuffer strings.Builder

	for {
		currentPrompt := PROMPT
		if inputBuffer.Len() > 0 {
			currentPrompt = CONTINUATION_PROMPT
		}
		input, err := line.Prompt(currentPrompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				if inputBuffer.Len() > 0 {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				inputBuffer.Reset()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		trimmed := strings.TrimSpace(input)
		if inputBuffer.Len() == 0 && (trimmed == "exit" || trimmed == "quit") {
			fmt.Fprintln(out, "Goodbye!")
			return
		}

		if inputBuffer.Len() == 0 && strings.HasPrefix(trimmed, ":") {
			handleCommand(trimmed, ctx, out)
			continue
		}

		if inputBuffer.Len() == 0 && trimmed == "" {
			continue
		}

		// A trailing backslash continues the template on the next line
		if stripped, more := strings.CutSuffix(input, "\\"); more {
			inputBuffer.WriteString(stripped)
			inputBuffer.WriteString("\n")
			continue
		}
		inputBuffer.WriteString(input)

		fullInput := inputBuffer.String()
		inputBuffer.Reset()

		if strings.TrimSpace(fullInput) != "" {
			line.AppendHistory(fullInput)
		}

		result, err := p.RenderString(fullInput, ctx)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		io.WriteString(out, result)
		if !strings.HasSuffix(result, "\n") {
			io.WriteString(out, "\n")
		}
	}
}

// handleCommand handles console meta-commands that start with ':'
func handleCommand(cmd string, ctx jinpro.Context, out io.Writer) {
	name, rest, _ := strings.Cut(cmd, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case ":help", ":h", ":?":
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  :help, :h, :?        Show this help")
		fmt.Fprintln(out, "  :ctx                 Show context variables")
		fmt.Fprintln(out, "  :set name=value      Set a context variable (value is YAML)")
		fmt.Fprintln(out, "  :unset name          Remove a context variable")
		fmt.Fprintln(out, "  :clear               Clear the context")
		fmt.Fprintln(out, "  exit, quit           Exit the console")

	case ":ctx":
		printContext(ctx, out)

	case ":set":
		key, raw, found := strings.Cut(rest, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			fmt.Fprintln(out, "Usage: :set name=value")
			return
		}
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			fmt.Fprintf(out, "Bad value: %v\n", err)
			return
		}
		ctx[key] = value
		fmt.Fprintf(out, "%s = %v\n", key, value)

	case ":unset":
		if rest == "" {
			fmt.Fprintln(out, "Usage: :unset name")
			return
		}
		delete(ctx, rest)
		fmt.Fprintf(out, "unset %s\n", rest)

	case ":clear":
		for key := range ctx {
			delete(ctx, key)
		}
		fmt.Fprintln(out, "Context cleared")

	default:
		fmt.Fprintf(out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
}

// printContext displays the current context variables
func printContext(ctx jinpro.Context, out io.Writer) {
	if len(ctx) == 0 {
		fmt.Fprintln(out, "(empty context)")
		return
	}

	names := make([]string, 0, len(ctx))
	for name := range ctx {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := fmt.Sprintf("%v", ctx[name])
		if len(value) > 60 {
			value = value[:57] + "..."
		}
		fmt.Fprintf(out, "  %s = %s\n", name, value)
	}
}

// componentNames lists the component templates found on the search
// paths, as completions for their tag form ("<Button").
func componentNames(searchPaths []string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, dir := range searchPaths {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			base := strings.TrimSuffix(name, filepath.Ext(name))
			if entry.IsDir() || base == "" || base[0] < 'A' || base[0] > 'Z' || seen[base] {
				continue
			}
			seen[base] = true
			names = append(names, "<"+base)
		}
	}
	sort.Strings(names)
	return names
}

// filterCompletions returns completion suggestions based on the last
// word of the current input
func filterCompletions(line string, components []string) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}

	lastSpace := strings.LastIndexAny(line, " \t")
	prefix := line[:lastSpace+1]
	word := line[lastSpace+1:]
	if word == "" {
		return nil
	}

	var completions []string
	for _, candidate := range completionWords {
		if strings.HasPrefix(candidate, word) {
			completions = append(completions, prefix+candidate)
		}
	}
	for _, candidate := range components {
		if strings.HasPrefix(candidate, word) {
			completions = append(completions, prefix+candidate)
		}
	}
	return completions
}
