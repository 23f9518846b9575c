// Command jsonql is the CLI driver: it reads a query source file and a
// JSON input document, optionally a TOML config and a schema file, and
// prints the input query, the input document, and a human-readable
// result dump — the literal requirement of spec.md section 6 — plus,
// supplementing the original system's main.rs, schema validation output
// when a schema file is supplied. Command dispatch style (a flat list of
// flags, no subcommands) is simpler than the teacher's tools/vcli/bw
// Command registry because this driver only ever does one thing; the
// registry idiom would be ceremony without a second command to justify it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/badwolf-labs/jsonql"
	"github.com/badwolf-labs/jsonql/config"
	qio "github.com/badwolf-labs/jsonql/io"
	"github.com/badwolf-labs/jsonql/plan"
	"github.com/badwolf-labs/jsonql/schema"
	"github.com/badwolf-labs/jsonql/tracer"
)

const (
	exitOK             = 0
	exitParseOrCompile = 1
	exitRuntimeError   = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("jsonql", flag.ContinueOnError)
	queryPath := fs.String("query", "", "path to a file containing the query source")
	inputPath := fs.String("input", "", "path to a file containing the JSON input document")
	configPath := fs.String("config", "", "path to an optional TOML config file")
	schemaPath := fs.String("schema", "", "path to an optional schema file (a JSON array of kind names, one per top-level projection)")
	verbosity := fs.Int("v", 1, "tracer verbosity, 1-3")
	if err := fs.Parse(args); err != nil {
		return exitParseOrCompile
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
			return exitParseOrCompile
		}
		cfg = loaded
	}
	if cfg.TracerVerbosity > *verbosity {
		*verbosity = cfg.TracerVerbosity
	}
	tracer.SetVerbosity(*verbosity)
	logger := logrus.New()
	jsonql.SetTraceLogger(logger)

	querySrc, err := readQuery(*queryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading query: %v\n", err)
		return exitParseOrCompile
	}
	inputDoc, err := readDocument(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading input document: %v\n", err)
		return exitParseOrCompile
	}

	fmt.Println("=== query ===")
	fmt.Println(querySrc)
	fmt.Println("=== input ===")
	fmt.Println(string(inputDoc))

	tracer.V(1).Trace(logger, func() (string, logrus.Fields) {
		return "parsing and compiling query", logrus.Fields{"phase": "parse"}
	})

	results, err := jsonql.ParseAndExecute(context.Background(), querySrc, inputDoc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitParseOrCompile
	}

	if *schemaPath == "" {
		*schemaPath = cfg.SchemaPath
	}
	var schemaNodes []schema.Node
	if *schemaPath != "" {
		schemaNodes, err = loadSchemaFile(*schemaPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loading schema: %v\n", err)
			return exitParseOrCompile
		}
	}

	// Each statement's result is independent of every other's, so the
	// dump-plus-schema-validation formatting for all of them runs
	// concurrently; only the printing afterward is ordered. This is the
	// one place this repo uses errgroup (a teacher dependency) — the
	// evaluator itself stays single-threaded per spec.md section 5.
	blocks := make([]string, len(results))
	g, _ := errgroup.WithContext(context.Background())
	for i, sr := range results {
		i, sr := i, sr
		g.Go(func() error {
			blocks[i] = formatStatementResult(i, sr, schemaNodes)
			return nil
		})
	}
	_ = g.Wait()

	exitCode := exitOK
	for i, sr := range results {
		fmt.Print(blocks[i])
		if sr.Err != nil {
			exitCode = exitRuntimeError
		}
	}
	return exitCode
}

func formatStatementResult(i int, sr jsonql.StatementResult, schemaNodes []schema.Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- statement %d (%s) ---\n", i, sr.Type)
	if sr.Err != nil {
		fmt.Fprintf(&b, "error: %v\n", sr.Err)
		return b.String()
	}
	if _, err := qio.WriteResult(&b, sr.Result); err != nil {
		fmt.Fprintf(&b, "error rendering result: %v\n", err)
	}
	if schemaNodes != nil {
		writeSchemaValidation(&b, schemaNodes, sr.Result)
	}
	return b.String()
}

func readQuery(path string) (string, error) {
	if path == "" || path == "-" {
		return qio.ReadQuerySource(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return qio.ReadQuerySource(f)
}

func readDocument(path string) (json.RawMessage, error) {
	if path == "" || path == "-" {
		return qio.ReadDocument(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return qio.ReadDocument(f)
}

func writeSchemaValidation(w *strings.Builder, nodes []schema.Node, r *plan.Result) {
	switch r.Kind {
	case plan.KindSimple:
		fmt.Fprintf(w, "  schema valid: %v\n", schema.ValidateSimpleResult(nodes, r))
	case plan.KindNested:
		for i, ok := range schema.ValidateNestedResult(nodes, r) {
			fmt.Fprintf(w, "  row %d schema valid: %v\n", i, ok)
		}
	}
}

// loadSchemaFile reads a schema description from a JSON file, one entry
// per top-level projection, using the same Null/Bool/Number/String/
// Array/Object/Nullable vocabulary as package schema. This is a minimal
// textual encoding, not a format spec.md fixes — only the schema.Node
// shape and its validation semantics are part of the external contract.
func loadSchemaFile(path string) ([]schema.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	nodes := make([]schema.Node, len(raw))
	for i, kind := range raw {
		node, err := schemaNodeFromName(kind)
		if err != nil {
			return nil, err
		}
		nodes[i] = node
	}
	return nodes, nil
}

func schemaNodeFromName(kind string) (schema.Node, error) {
	if inner, ok := strings.CutPrefix(kind, "nullable "); ok {
		n, err := schemaNodeFromName(inner)
		if err != nil {
			return schema.Node{}, err
		}
		return schema.NullableOf(n), nil
	}
	switch kind {
	case "null":
		return schema.Null(), nil
	case "bool":
		return schema.Bool(), nil
	case "number":
		return schema.Number(), nil
	case "string":
		return schema.String(), nil
	case "array":
		return schema.Array(nil), nil
	case "object":
		return schema.Object(nil), nil
	default:
		return schema.Node{}, fmt.Errorf("unknown schema kind %q", kind)
	}
}
