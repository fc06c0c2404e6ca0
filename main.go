// Command origami evaluates a fold script and prints the folded paper.
//
//	origami [-config origami.yaml] [-format json|geojson] script.fold
//
// With no script argument the source is read from stdin.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Wartets/Origami/internal/logging"
	"github.com/Wartets/Origami/pkg/config"
	"github.com/Wartets/Origami/pkg/mesh"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "origami:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("origami", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config file")
	format := fs.String("format", "json", "output format: json or geojson")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.Level()})))

	var source []byte
	var err error
	switch fs.NArg() {
	case 0:
		source, err = io.ReadAll(stdin)
	case 1:
		source, err = os.ReadFile(fs.Arg(0))
	default:
		return fmt.Errorf("expected at most one script, got %d", fs.NArg())
	}
	if err != nil {
		return err
	}

	result := NewApp(cfg).Evaluate(string(source))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			if e.Line > 0 {
				fmt.Fprintf(stderr, "line %d: %s\n", e.Line, e.Message)
			} else {
				fmt.Fprintln(stderr, e.Message)
			}
		}
		return fmt.Errorf("%d error(s)", len(result.Errors))
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	switch *format {
	case "json":
		return enc.Encode(result)
	case "geojson":
		return enc.Encode(mesh.FeatureCollection(result.folded))
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
}
