package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sophloaf2019/jinpro/pkg/jinpro"
	"github.com/sophloaf2019/jinpro/pkg/jinpro/attr"
	"github.com/sophloaf2019/jinpro/pkg/jinpro/pongo"
	"github.com/sophloaf2019/jinpro/pkg/jinpro/repl"
)

// Version is set at compile time via -ldflags
var Version = "0.3.0"

var (
	// Display flags
	helpFlag        = flag.Bool("h", false, "Show help message")
	helpLongFlag    = flag.Bool("help", false, "Show help message")
	versionFlag     = flag.Bool("V", false, "Show version information")
	versionLongFlag = flag.Bool("version", false, "Show version information")

	// Rendering flags
	evalFlag      = flag.String("e", "", "Render a template string")
	evalLongFlag  = flag.String("eval", "", "Render a template string")
	contextFlag   = flag.String("c", "", "YAML file with context variables")
	contextLong   = flag.String("context", "", "YAML file with context variables")
	templatesFlag = flag.String("t", "", "Comma-separated component search paths")
	templatesLong = flag.String("templates", "", "Comma-separated component search paths")
	outputFlag    = flag.String("o", "", "Write output to file instead of stdout")
	extensionFlag = flag.String("ext", jinpro.DefaultExtension, "Component file extension")
	maxDepthFlag  = flag.Int("max-depth", jinpro.DefaultMaxDepth, "Maximum component nesting depth")
	checkFlag     = flag.Bool("check", false, "Check component attribute declarations without rendering")
)

func main() {
	flag.Usage = printHelp
	flag.Parse()

	if *helpFlag || *helpLongFlag {
		printHelp()
		os.Exit(0)
	}

	if *versionFlag || *versionLongFlag {
		fmt.Printf("jinpro version %s\n", Version)
		os.Exit(0)
	}

	evalText := *evalFlag
	if evalText == "" {
		evalText = *evalLongFlag
	}

	switch {
	case *checkFlag:
		files := flag.Args()
		if len(files) == 0 {
			fmt.Fprintln(os.Stderr, "Error: --check requires at least one component file")
			os.Exit(2)
		}
		os.Exit(checkFiles(files))
	case evalText != "":
		renderInline(evalText)
	case len(flag.Args()) > 0:
		renderFile(flag.Args()[0])
	default:
		paths := searchPaths()
		processor, err := newProcessor(paths)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		repl.Start(os.Stdin, os.Stdout, processor, paths, Version)
	}
}

func printHelp() {
	fmt.Printf(`jinpro - component template renderer version %s

Usage:
  jinpro [options] [file]
  jinpro -e "template text"
  jinpro --check <file>...

Capitalized tags like <Button label="Go"/> expand from component files
found on the search paths; everything else is rendered as template text.

Display Options:
  -h, --help            Show this help message
  -V, --version         Show version information

Rendering Options:
  -e, --eval <text>     Render a template string
  -c, --context <file>  YAML file with context variables
  -t, --templates <p>   Comma-separated component search paths (default ".")
  -o <file>             Write output to a file instead of stdout
  --ext <ext>           Component file extension (default %q)
  --max-depth <n>       Maximum component nesting depth (default %d)
  --check               Check component attribute declarations without rendering

Examples:
  jinpro                                Start interactive console
  jinpro page.html                      Render a page to stdout
  jinpro page.html -o out.html          Render a page to a file
  jinpro -e '<Button label="Go"/>'      Render inline template text
  jinpro -c site.yaml page.html         Render with context variables
  jinpro --check components/*.jinja     Validate attribute declarations
`, Version, jinpro.DefaultExtension, jinpro.DefaultMaxDepth)
}

// searchPaths resolves the component search paths from flags.
func searchPaths() []string {
	raw := *templatesFlag
	if raw == "" {
		raw = *templatesLong
	}
	if raw == "" {
		return []string{"."}
	}
	var paths []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func newProcessor(paths []string) (*jinpro.Processor, error) {
	renderer, err := pongo.New(pongo.Options{SearchPaths: paths})
	if err != nil {
		return nil, err
	}
	return jinpro.New(jinpro.Options{
		Loader:    jinpro.NewFSLoader(paths...),
		Renderer:  renderer,
		MaxDepth:  *maxDepthFlag,
		Extension: *extensionFlag,
	})
}

// loadContext reads the context YAML file, if one was given.
func loadContext() (jinpro.Context, error) {
	path := *contextFlag
	if path == "" {
		path = *contextLong
	}
	if path == "" {
		return jinpro.Context{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading context file: %w", err)
	}
	ctx := jinpro.Context{}
	if err := yaml.Unmarshal(data, &ctx); err != nil {
		return nil, fmt.Errorf("parsing context file %s: %w", path, err)
	}
	return ctx, nil
}

func writeOutput(out string) error {
	if *outputFlag == "" {
		fmt.Print(out)
		if !strings.HasSuffix(out, "\n") {
			fmt.Println()
		}
		return nil
	}
	return os.WriteFile(*outputFlag, []byte(out), 0o644)
}

// renderInline renders template text given via -e.
func renderInline(text string) {
	ctx, err := loadContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	processor, err := newProcessor(searchPaths())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out, err := processor.RenderString(text, ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := writeOutput(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// renderFile renders a page file. Its directory joins the search paths
// so sibling components resolve.
func renderFile(filename string) {
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, err := loadContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	paths := append([]string{filepath.Dir(filename)}, searchPaths()...)
	processor, err := newProcessor(paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out, err := processor.RenderString(string(source), ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering %s: %v\n", filename, err)
		os.Exit(1)
	}
	if err := writeOutput(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// checkFiles validates the attribute declaration of each component file.
// Returns the process exit code.
func checkFiles(files []string) int {
	failed := 0
	for _, filename := range files {
		source, err := os.ReadFile(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", filename, err)
			failed++
			continue
		}

		name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		decls, err := attr.ParseDeclaration(name, string(source))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", filename, err)
			failed++
			continue
		}

		names := make([]string, len(decls))
		for i, d := range decls {
			names[i] = d.Name
			if d.Default != nil {
				names[i] += "=..."
			}
		}
		fmt.Printf("%s: ok (%s)\n", filename, strings.Join(names, ", "))
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d files failed\n", failed, len(files))
		return 1
	}
	return 0
}
