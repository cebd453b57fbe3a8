package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	charmLog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/hylla/roost/internal/adapters/remote"
	"github.com/hylla/roost/internal/adapters/server"
	servercommon "github.com/hylla/roost/internal/adapters/server/common"
	"github.com/hylla/roost/internal/adapters/storage/sqlite"
	"github.com/hylla/roost/internal/app"
	"github.com/hylla/roost/internal/config"
	"github.com/hylla/roost/internal/domain"
	"github.com/hylla/roost/internal/platform"
	"github.com/hylla/roost/internal/tui"
	"github.com/spf13/cobra"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// serveCommandRunner starts the HTTP+MCP serve flow.
var serveCommandRunner = func(ctx context.Context, cfg server.Config, deps server.Dependencies) error {
	return server.Run(ctx, cfg, deps)
}

// main handles main.
func main() {
	root := newRootCommand(os.Stdout, os.Stderr)
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}

// run executes the command tree for args without fang's styled error output.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SilenceErrors = true
	return root.ExecuteContext(ctx)
}

// backend is the property surface shared by the local service and the remote client.
type backend interface {
	ListProperties(context.Context, bool) ([]domain.Property, error)
	ListBoardCards(context.Context) ([]domain.Card, error)
	GetProperty(context.Context, string) (domain.Property, error)
	UpdatePropertyStatus(context.Context, string, domain.Status) (domain.Property, error)
	ListStatusHistory(context.Context, string, int) ([]domain.StatusChange, error)
}

// cli holds global flag values shared by every command.
type cli struct {
	stdout     io.Writer
	stderr     io.Writer
	configPath string
	dbPath     string
	appName    string
	remote     string
	devMode    bool
}

// newRootCommand builds the roost command tree.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr, appName: "roost"}
	if envApp := strings.TrimSpace(os.Getenv("ROOST_APP_NAME")); envApp != "" {
		c.appName = envApp
	}
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("ROOST_DEV_MODE"); ok {
		defaultDevMode = envDev
	}

	root := &cobra.Command{
		Use:          "roost",
		Short:        "Track properties on a drag-and-drop board",
		Long:         "roost keeps a kanban board of properties you are looking at, from first seen to offer made.",
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         c.runBoard,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate("roost {{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "path to config TOML")
	flags.StringVar(&c.dbPath, "db", "", "path to sqlite database")
	flags.StringVar(&c.appName, "app", c.appName, "application name for config/data path resolution")
	flags.BoolVar(&c.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	flags.StringVar(&c.remote, "remote", "", "API base URL of a roost serve process, e.g. http://host:8080/api/v1")

	root.AddCommand(
		c.pathsCommand(),
		c.serveCommand(),
		c.addCommand(),
		c.listCommand(),
		c.statusCommand(),
		c.historyCommand(),
		c.rmCommand(),
		c.exportCommand(),
		c.importCommand(),
	)
	return root
}

// session is the resolved runtime for one command: config, logger, and backend.
type session struct {
	cfg        config.Config
	configPath string
	paths      platform.Paths
	logger     *runtimeLogger
	repo       *sqlite.Repository
	svc        *app.Service
	remote     *remote.Client
	prevLogger *charmLog.Logger
}

// open resolves paths and config, configures logging, and opens the backend.
// Local commands always use the sqlite store.
func (c *cli) open(command string, local bool) (*session, error) {
	if local && strings.TrimSpace(c.remote) != "" {
		return nil, fmt.Errorf("%s needs the local database; drop --remote", command)
	}
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: c.appName,
		DevMode: c.devMode,
	})
	if err != nil {
		return nil, err
	}

	configPath := strings.TrimSpace(c.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("ROOST_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	dbPath := strings.TrimSpace(c.dbPath)
	dbOverridden := dbPath != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("ROOST_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}
	if endpoint := strings.TrimSpace(c.remote); endpoint != "" {
		cfg.Remote.Endpoint = endpoint
	}

	logger, err := newRuntimeLogger(c.stderr, c.appName, c.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "tui" {
		// Runtime logs stay in the dev-file sink while the board owns the terminal.
		logger.SetConsoleEnabled(false)
	}
	s := &session{
		cfg:        cfg,
		configPath: configPath,
		paths:      paths,
		logger:     logger,
		prevLogger: charmLog.Default(),
	}
	charmLog.SetDefault(logger.Library())

	logger.Info("startup configuration resolved", "app", c.appName, "dev_mode", c.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", dbPath)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	if endpoint := strings.TrimSpace(cfg.Remote.Endpoint); endpoint != "" && !local {
		client, err := remote.NewClient(endpoint, cfg.Remote.Timeout())
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("configure remote backend: %w", err)
		}
		s.remote = client
		logger.Info("remote backend configured", "endpoint", endpoint)
		return s, nil
	}

	logger.Info("opening sqlite repository", "db_path", cfg.Database.Path)
	repo, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
		s.Close()
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}
	s.repo = repo
	s.svc = app.NewService(repo, uuid.NewString, time.Now, app.ServiceConfig{
		DefaultDeleteMode: app.DeleteMode(cfg.Delete.DefaultMode),
	})
	logger.Info("sqlite repository ready", "db_path", cfg.Database.Path, "migrations", "ensured")
	return s, nil
}

// backend returns the remote client when one is configured, else the local service.
func (s *session) backend() backend {
	if s.remote != nil {
		return s.remote
	}
	return s.svc
}

// Close releases the store and log sinks and restores the default logger.
func (s *session) Close() {
	if s == nil {
		return
	}
	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			s.logger.Warn("sqlite close failed", "db_path", s.cfg.Database.Path, "err", err)
		}
	}
	if s.prevLogger != nil {
		charmLog.SetDefault(s.prevLogger)
	}
	if err := s.logger.Close(); err != nil {
		s.logger.ConsoleWarn("close runtime log sink", "err", err)
	}
}

// runBoard launches the board TUI.
func (c *cli) runBoard(cmd *cobra.Command, _ []string) error {
	s, err := c.open("tui", false)
	if err != nil {
		return err
	}
	defer s.Close()

	title := c.appName
	if s.remote != nil {
		title += " @ " + s.cfg.Remote.Endpoint
	}
	opts := append(boardOptions(s.cfg.Board), tui.WithTitle(title))
	m := tui.NewModel(s.backend(), opts...)

	s.logger.Info("starting tui program loop")
	if _, err := programFactory(m).Run(); err != nil {
		s.logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	s.logger.Info("command flow complete", "command", "tui")
	return nil
}

// boardOptions maps board config into model options.
func boardOptions(cfg config.BoardConfig) []tui.Option {
	return []tui.Option{
		tui.WithColumnWidth(cfg.ColumnWidth, cfg.ColumnGap),
		tui.WithLongPressDelay(cfg.LongPressDelay()),
		tui.WithScrollStep(cfg.ScrollStep),
		tui.WithToastDuration(cfg.ToastDuration()),
		tui.WithShowPrice(cfg.ShowPrice),
	}
}

func (c *cli) pathsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config, data, and log paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := platform.DefaultPathsWithOptions(platform.Options{
				AppName: c.appName,
				DevMode: c.devMode,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", c.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", c.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(out, "db: %s\n", paths.DBPath)
			_, _ = fmt.Fprintf(out, "log_dir: %s\n", paths.LogDir)
			_, _ = fmt.Fprintf(out, "export: %s\n", paths.ExportPath)
			return nil
		},
	}
}

func (c *cli) serveCommand() *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API and MCP tools over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.open("serve", true)
			if err != nil {
				return err
			}
			defer s.Close()

			cfg := server.Config{
				HTTPBind:      s.cfg.Server.HTTPBind,
				APIEndpoint:   s.cfg.Server.APIEndpoint,
				MCPEndpoint:   s.cfg.Server.MCPEndpoint,
				ServerName:    c.appName,
				ServerVersion: version,
			}
			if strings.TrimSpace(bind) != "" {
				cfg.HTTPBind = strings.TrimSpace(bind)
			}
			deps := server.Dependencies{
				Properties: servercommon.NewAppServiceAdapter(s.svc),
				Ready:      s.repo.Ping,
			}
			s.logger.Info("command flow start", "command", "serve", "http_bind", cfg.HTTPBind)
			if err := serveCommandRunner(cmd.Context(), cfg, deps); err != nil {
				s.logger.Error("command flow failed", "command", "serve", "err", err)
				return fmt.Errorf("run serve command: %w", err)
			}
			s.logger.Info("command flow complete", "command", "serve")
			return nil
		},
	}
	cmd.Flags().StringVar(&bind, "http", "", "listen address, overrides server.http_bind")
	return cmd
}

func (c *cli) addCommand() *cobra.Command {
	var (
		in     domain.PropertyInput
		status string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a property to the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(status) != "" {
				parsed, err := domain.ParseStatus(status)
				if err != nil {
					return fmt.Errorf("status %q: %w", status, err)
				}
				in.Status = parsed
			}
			s, err := c.open("add", true)
			if err != nil {
				return err
			}
			defer s.Close()

			property, err := s.svc.CreateProperty(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("create property: %w", err)
			}
			s.logger.Info("property created", "id", property.ID, "status", property.Status)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", property.ID, property.Status.Label(), property.Title)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&in.Title, "title", "", "listing title")
	flags.StringVar(&in.Address, "address", "", "street address")
	flags.IntVar(&in.Rooms, "rooms", 0, "number of rooms")
	flags.Float64Var(&in.SizeSqm, "size", 0, "living area in m²")
	flags.Int64Var(&in.Price, "price", 0, "asking price")
	flags.StringVar(&status, "status", "", "initial status (default seen)")
	flags.StringVar(&in.Notes, "notes", "", "free-form markdown notes")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func (c *cli) listCommand() *cobra.Command {
	var (
		all     bool
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked properties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.open("list", false)
			if err != nil {
				return err
			}
			defer s.Close()

			properties, err := s.backend().ListProperties(cmd.Context(), all)
			if err != nil {
				return fmt.Errorf("list properties: %w", err)
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				payload := make([]servercommon.Property, 0, len(properties))
				for _, p := range properties {
					payload = append(payload, servercommon.PropertyFromDomain(p))
				}
				return writeJSON(out, payload)
			}
			if len(properties) == 0 {
				_, _ = fmt.Fprintln(out, "no properties")
				return nil
			}
			_, _ = fmt.Fprintln(out, propertyTable(properties))
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include bought and discarded properties")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print JSON instead of a table")
	return cmd
}

// propertyTable renders properties as a bordered table.
func propertyTable(properties []domain.Property) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("ID", "Status", "Title", "Address", "Rooms", "Price").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, p := range properties {
		rooms, price := "", ""
		if p.Rooms > 0 {
			rooms = strconv.Itoa(p.Rooms)
		}
		if p.Price > 0 {
			price = strconv.FormatInt(p.Price, 10)
		}
		t.Row(p.ID, p.Status.Label(), p.Title, p.Address, rooms, price)
	}
	return t.String()
}

func (c *cli) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <property-id> <status>",
		Short: "Move a property to another status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := domain.ParseStatus(args[1])
			if err != nil {
				return fmt.Errorf("status %q: %w", args[1], err)
			}
			s, err := c.open("status", false)
			if err != nil {
				return err
			}
			defer s.Close()

			property, err := s.backend().UpdatePropertyStatus(cmd.Context(), args[0], status)
			if err != nil {
				return fmt.Errorf("update property status: %w", err)
			}
			s.logger.Info("property status updated", "id", property.ID, "status", property.Status)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", property.Title, property.Status.Label())
			return nil
		},
	}
}

// rmCommand removes a property. Without --hard the configured delete mode
// applies, which by default only moves the property to discarded.
func (c *cli) rmCommand() *cobra.Command {
	var hard bool
	cmd := &cobra.Command{
		Use:   "rm <property-id>",
		Short: "Discard or delete a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open("rm", true)
			if err != nil {
				return err
			}
			defer s.Close()

			var mode app.DeleteMode
			if hard {
				mode = app.DeleteModeHard
			}
			if err := s.svc.DeleteProperty(cmd.Context(), args[0], mode); err != nil {
				return fmt.Errorf("delete property: %w", err)
			}
			s.logger.Info("property removed", "id", args[0], "hard", hard)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&hard, "hard", false, "delete the row and its history instead of discarding")
	return cmd
}

func (c *cli) historyCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <property-id>",
		Short: "Show the status history of a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must be >= 0, got %d", limit)
			}
			s, err := c.open("history", false)
			if err != nil {
				return err
			}
			defer s.Close()

			changes, err := s.backend().ListStatusHistory(cmd.Context(), args[0], limit)
			if err != nil {
				return fmt.Errorf("list status history: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(changes) == 0 {
				_, _ = fmt.Fprintln(out, "no status changes")
				return nil
			}
			for _, change := range changes {
				from := "-"
				if change.From != "" {
					from = string(change.From)
				}
				_, _ = fmt.Fprintf(out, "%s  %s → %s\n", change.OccurredAt.Local().Format(time.DateTime), from, change.To)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries, newest first (0 for the service default)")
	return cmd
}

func (c *cli) exportCommand() *cobra.Command {
	var (
		outPath       string
		includeClosed bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON snapshot of all properties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.open("export", true)
			if err != nil {
				return err
			}
			defer s.Close()

			s.logger.Info("command flow start", "command", "export")
			if err := runExport(cmd.Context(), s.svc, outPath, includeClosed, cmd.OutOrStdout()); err != nil {
				s.logger.Error("command flow failed", "command", "export", "err", err)
				return fmt.Errorf("run export command: %w", err)
			}
			s.logger.Info("command flow complete", "command", "export")
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	cmd.Flags().BoolVar(&includeClosed, "include-closed", true, "include bought and discarded properties")
	return cmd
}

func (c *cli) importCommand() *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a JSON snapshot, overwriting properties with the same id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(inPath) == "" {
				return errors.New("--in is required")
			}
			s, err := c.open("import", true)
			if err != nil {
				return err
			}
			defer s.Close()

			s.logger.Info("command flow start", "command", "import")
			if err := runImport(cmd.Context(), s.svc, inPath); err != nil {
				s.logger.Error("command flow failed", "command", "import", "err", err)
				return fmt.Errorf("run import command: %w", err)
			}
			s.logger.Info("command flow complete", "command", "import")
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input snapshot JSON file")
	return cmd
}

// runExport writes one snapshot to outPath or stdout.
func runExport(ctx context.Context, svc *app.Service, outPath string, includeClosed bool, stdout io.Writer) error {
	snap, err := svc.ExportSnapshot(ctx, includeClosed)
	if err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}
	encoded, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot json: %w", err)
	}
	encoded = append(encoded, '\n')

	if outPath == "" || outPath == "-" {
		if _, err := stdout.Write(encoded); err != nil {
			return fmt.Errorf("write snapshot to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

// runImport reads one snapshot file and applies it.
func runImport(ctx context.Context, svc *app.Service, inPath string) error {
	content, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		return fmt.Errorf("decode snapshot json: %w", err)
	}
	if err := svc.ImportSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
