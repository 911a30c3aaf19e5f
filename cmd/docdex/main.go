package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/fwojciec/docdex"
	"github.com/fwojciec/docdex/bleve"
	"github.com/fwojciec/docdex/goquery"
	dochttp "github.com/fwojciec/docdex/http"
	"github.com/fwojciec/docdex/indexer"
	"github.com/fwojciec/docdex/sqlite"
	docslog "github.com/fwojciec/docdex/slog"
	"github.com/fwojciec/docdex/uuid"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Index storage path. Set before calling Run().
	IndexPath string

	// SQLite database when the sqlite engine is selected.
	DB *sqlite.DB

	// Bleve index when the bleve engine is selected.
	Bleve *bleve.IndexService

	// Index service for end-to-end testing.
	Index docdex.IndexService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		IndexPath: os.Getenv("DOCDEX_INDEX"),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	if m.Bleve != nil {
		return m.Bleve.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docdex"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docdex --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	index, err := m.openIndex(cli.Engine)
	if err != nil {
		fmt.Fprintf(stderr, "Hint: Set DOCDEX_INDEX to use a different index path\n")
		return err
	}
	defer m.Close()
	m.Index = index

	detector := goquery.NewDetector()
	registry := goquery.NewRegistry(detector, goquery.NewBookReducer())
	registry.Register(docdex.PageKindBook, goquery.NewBookReducer())
	registry.Register(docdex.PageKindNotebook, goquery.NewNotebookReducer())

	deps.Indexer = &indexer.Indexer{
		Fetcher:     dochttp.NewFetcher(),
		Reducers:    docslog.NewLoggingRegistry(registry, detector, logger),
		Inspector:   goquery.NewInspector(),
		Epochs:      &uuid.Generator{},
		Index:       docslog.NewLoggingIndexService(index, logger),
		Pages:       dochttp.NewSitemapSource(nil),
		Limiter:     indexer.NewDomainLimiter(defaultRequestsPerSecond),
		Concurrency: cli.Guide.Concurrency,
		Logger:      logger,
	}

	return kongCtx.Run(deps)
}

// defaultRequestsPerSecond limits fetches per documentation host.
const defaultRequestsPerSecond = 4.0

// openIndex opens the index for the selected engine, creating storage
// under the index path as needed.
func (m *Main) openIndex(engine string) (docdex.IndexService, error) {
	path := m.IndexPath
	if path == "" {
		path = defaultIndexPath(engine)
	}

	switch engine {
	case "bleve":
		index, err := bleve.NewIndexService(path)
		if err != nil {
			return nil, err
		}
		m.Bleve = index
		return index, nil
	default:
		m.DB = sqlite.NewDB(path)
		if err := m.DB.Open(); err != nil {
			return nil, fmt.Errorf("failed to open index at %q: %w", path, err)
		}
		return sqlite.NewIndexService(m.DB), nil
	}
}

func defaultIndexPath(engine string) string {
	name := "docdex.db"
	if engine == "bleve" {
		name = "docdex.bleve"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	dir := filepath.Join(home, ".docdex")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, name)
}
