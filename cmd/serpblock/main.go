package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/serpblock"
	"github.com/fwojciec/serpblock/fs"
	"github.com/fwojciec/serpblock/goquery"
	"github.com/fwojciec/serpblock/htmltomarkdown"
	serphttp "github.com/fwojciec/serpblock/http"
	"github.com/fwojciec/serpblock/message"
	"github.com/fwojciec/serpblock/rod"
	"github.com/fwojciec/serpblock/serp"
	serpslog "github.com/fwojciec/serpblock/slog"
	"github.com/fwojciec/serpblock/sqlite"
	"github.com/fwojciec/serpblock/store"
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
	// Database path used when neither --db nor the config file name one.
	DBPath string

	// Input for commands reading from stdin.
	Stdin io.Reader

	// SQLite database used by the local blocklist store.
	DB *sqlite.DB

	// Blocklist service. Set before Run to skip opening the database.
	Blocklist serpblock.BlocklistService

	// Client of the blocklist server, when one is configured.
	Client *serphttp.Client
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
		Stdin:  os.Stdin,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  m.Stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("serpblock"),
		kong.Description("Hide unwanted domains from search results"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'serpblock --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	cfg, err := LoadConfig(cli.Config)
	if err != nil {
		return err
	}
	deps.Config = cfg

	deps.Logger = slog.New(slog.DiscardHandler)
	if cli.Verbose {
		deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if err := m.openBlocklist(ctx, cli, cfg, cmd, stderr); err != nil {
		return err
	}
	defer m.Close()
	deps.Blocklist = serpslog.NewLoggingBlocklistService(m.Blocklist, deps.Logger)
	if m.Client != nil {
		deps.Refresher = message.NewService(m.Client)
		deps.Events = m.Client
	}

	// Wire command-specific dependencies based on command
	switch cmd {
	case "filter":
		fetcher, err := newFilterFetcher(&cli.Filter, stderr)
		if err != nil {
			return err
		}
		defer fetcher.Close()

		deps.Filter = &serp.Filter{
			Fetcher:     serpslog.NewLoggingFetcher(fetcher, goquery.NewParser(), deps.Logger),
			Parser:      serpslog.NewLoggingPageParser(goquery.NewParser(), deps.Logger),
			Blocklist:   deps.Blocklist,
			Converter:   htmltomarkdown.NewConverter(),
			RateLimiter: serp.NewDomainLimiter(1.0),
			Logger:      deps.Logger,
			Concurrency: cli.Filter.Concurrency,
		}

	case "watch":
		manager, err := rod.NewBrowserManager(rod.WithHeadless(false))
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		defer manager.Close()
		deps.Browser = manager
	}

	return kongCtx.Run(deps)
}

// openBlocklist connects to a running server when one is configured, and
// opens the local store otherwise. The serve command always uses the
// local store.
func (m *Main) openBlocklist(ctx context.Context, cli *CLI, cfg *Config, cmd string, stderr io.Writer) error {
	if m.Blocklist != nil {
		return nil
	}

	server := cli.Server
	if server == "" {
		server = cfg.Server
	}
	if server != "" && cmd != "serve" {
		m.Client = serphttp.NewClient(server)
		m.Blocklist = message.NewService(m.Client)
		return nil
	}

	path := cli.DB
	if path == "" {
		path = cfg.DB
	}
	if path == "" {
		path = m.DBPath
	}

	m.DB = sqlite.NewDB(path)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SERPBLOCK_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", path, err)
	}

	svc := store.NewService(sqlite.NewRecordStorage(m.DB))
	if err := svc.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate blocklist: %w", err)
	}
	m.Blocklist = svc
	return nil
}

// newFilterFetcher reads local targets from disk and fetches the others
// with a headless browser, or plain HTTP when static is set.
func newFilterFetcher(c *FilterCmd, stderr io.Writer) (serpblock.Fetcher, error) {
	remote := false
	for _, t := range c.Targets {
		if !fs.IsLocal(t) {
			remote = true
			break
		}
	}
	if !remote {
		return &fs.Fetcher{}, nil
	}

	if c.Static {
		return &fs.Fetcher{Next: serphttp.NewFetcher(serphttp.WithTimeout(c.Timeout))}, nil
	}

	browser, err := rod.NewFetcher(rod.WithFetchTimeout(c.Timeout))
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed, or use --static")
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	return &fs.Fetcher{Next: browser}, nil
}
