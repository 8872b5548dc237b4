// Command atv is a terminal client for the Atharva AI-assisted writing service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/atharva-labs/atharva-cli/internal/api"
	"github.com/atharva-labs/atharva-cli/internal/auth"
	"github.com/atharva-labs/atharva-cli/internal/config"
	"github.com/atharva-labs/atharva-cli/internal/errs"
	"github.com/atharva-labs/atharva-cli/internal/session"
	"github.com/atharva-labs/atharva-cli/internal/tui"
	"github.com/atharva-labs/atharva-cli/internal/writer"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func usage() {
	fmt.Fprintf(os.Stderr, `atv - Atharva writing client
Usage:
  atv [-api URL] [-timeout SEC] <cmd> [args]

Commands:
  version
  register  -u <username> -e <email> -p <password> [-confirm <password>]
  login     -u <username> -p <password>              (saves tokens)
  logout
  whoami
  sessions  list
  sessions  create -title <title>
  sessions  delete -id <id>
  paragraphs list -session <id>
  paragraphs add  -session <id> -content <text>
  generate  -prompt <text> [-genre g] [-tone t] [-length l]
  enhance   -id <paragraph id>
  stats
  write     [-session <id>]                          (interactive workspace)
`)
	os.Exit(2)
}

// app bundles the wired client stack for subcommands.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	gw       api.Gateway
	auth     *auth.Manager
	registry *session.Registry
	ws       *writer.Orchestrator
}

func main() {
	apiURL := flag.String("api", "", "API base URL (overrides ATHARVA_API_URL)")
	timeout := flag.Int("timeout", 0, "request timeout in seconds (overrides ATHARVA_TIMEOUT)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}
	if *apiURL != "" {
		cfg.APIBaseURL = *apiURL
	}
	if *timeout > 0 {
		cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	}

	a, err := wire(cfg, cmd == "write")
	if err != nil {
		fail(err)
	}
	defer func() { _ = a.log.Sync() }()

	ctx := context.Background()

	switch cmd {
	case "version":
		fmt.Printf("atv %s (%s)\n", version, buildDate)

	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		u := fs.String("u", "", "username")
		e := fs.String("e", "", "email")
		p := fs.String("p", "", "password")
		confirm := fs.String("confirm", "", "password confirmation (defaults to -p)")
		_ = fs.Parse(flag.Args()[1:])
		if *confirm == "" {
			*confirm = *p
		}
		err := a.auth.Register(ctx, auth.RegisterProfile{
			Username:        *u,
			Email:           *e,
			Password:        *p,
			ConfirmPassword: *confirm,
		})
		if err != nil {
			fail(err)
		}
		fmt.Println("registered; run `atv login` to authenticate")

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		u := fs.String("u", "", "username")
		p := fs.String("p", "", "password")
		_ = fs.Parse(flag.Args()[1:])
		if *u == "" || *p == "" {
			fmt.Fprintln(os.Stderr, "need -u and -p")
			os.Exit(1)
		}
		if err := a.auth.Login(ctx, *u, *p); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "logout":
		if err := a.auth.Logout(); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "whoami":
		if !a.auth.Authenticated() {
			fmt.Println("not authenticated")
			return
		}
		fmt.Println("authenticated")
		if exp := a.auth.ExpiresAt(); !exp.IsZero() {
			fmt.Printf("access token expires %s\n", exp.UTC().Format(time.RFC3339))
		}

	case "sessions":
		runSessions(ctx, a, flag.Args()[1:])

	case "paragraphs":
		runParagraphs(ctx, a, flag.Args()[1:])

	case "generate":
		fs := flag.NewFlagSet("generate", flag.ExitOnError)
		prompt := fs.String("prompt", "", "story prompt")
		genre := fs.String("genre", "film-noir", "genre")
		tone := fs.String("tone", "epic", "tone")
		length := fs.String("length", "medium", "length")
		_ = fs.Parse(flag.Args()[1:])
		if *prompt == "" {
			fmt.Fprintln(os.Stderr, "need -prompt")
			os.Exit(1)
		}
		targetID, err := pickTargetSession(ctx, a.gw)
		if err != nil {
			fail(err)
		}
		out, err := a.gw.Generate(ctx, api.GenerateRequest{
			SessionID: targetID,
			Prompt:    *prompt,
			Genre:     *genre,
			Tone:      *tone,
			Length:    *length,
		})
		if err != nil {
			fail(err)
		}
		fmt.Println(out.GeneratedText)

	case "enhance":
		fs := flag.NewFlagSet("enhance", flag.ExitOnError)
		id := fs.Int64("id", 0, "paragraph id")
		_ = fs.Parse(flag.Args()[1:])
		if *id == 0 {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		out, err := a.gw.Enhance(ctx, *id)
		if err != nil {
			fail(err)
		}
		printJSON(out)

	case "stats":
		out, err := a.gw.Stats(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(out)

	case "write":
		fs := flag.NewFlagSet("write", flag.ExitOnError)
		sessionID := fs.Int64("session", 0, "session id to open directly")
		_ = fs.Parse(flag.Args()[1:])
		if *sessionID != 0 {
			if _, err := a.registry.List(ctx); err != nil {
				fail(err)
			}
			if err := a.registry.Activate(*sessionID); err != nil {
				fail(err)
			}
		}
		prog := tea.NewProgram(tui.New(a.auth, a.registry, a.ws, a.log), tea.WithAltScreen())
		if _, err := prog.Run(); err != nil {
			fail(err)
		}

	default:
		usage()
	}
}

func runSessions(ctx context.Context, a *app, args []string) {
	if len(args) < 1 {
		usage()
	}
	switch args[0] {
	case "list":
		sessions, err := a.registry.List(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(sessions)
	case "create":
		fs := flag.NewFlagSet("sessions create", flag.ExitOnError)
		title := fs.String("title", "", "session title")
		_ = fs.Parse(args[1:])
		created, err := a.registry.Create(ctx, *title)
		if err != nil {
			fail(err)
		}
		printJSON(created)
	case "delete":
		fs := flag.NewFlagSet("sessions delete", flag.ExitOnError)
		id := fs.Int64("id", 0, "session id")
		_ = fs.Parse(args[1:])
		if *id == 0 {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		if err := a.registry.Delete(ctx, *id); err != nil {
			fail(err)
		}
		fmt.Println("ok")
	default:
		usage()
	}
}

func runParagraphs(ctx context.Context, a *app, args []string) {
	if len(args) < 1 {
		usage()
	}
	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("paragraphs list", flag.ExitOnError)
		sessionID := fs.Int64("session", 0, "session id")
		_ = fs.Parse(args[1:])
		if *sessionID == 0 {
			fmt.Fprintln(os.Stderr, "need -session")
			os.Exit(1)
		}
		paragraphs, err := a.gw.ListParagraphs(ctx, *sessionID)
		if err != nil {
			fail(err)
		}
		printJSON(paragraphs)
	case "add":
		fs := flag.NewFlagSet("paragraphs add", flag.ExitOnError)
		sessionID := fs.Int64("session", 0, "session id")
		content := fs.String("content", "", "paragraph text")
		_ = fs.Parse(args[1:])
		if *sessionID == 0 || *content == "" {
			fmt.Fprintln(os.Stderr, "need -session and -content")
			os.Exit(1)
		}
		created, err := a.gw.CreateParagraph(ctx, *sessionID, *content)
		if err != nil {
			fail(err)
		}
		printJSON(created)
	default:
		usage()
	}
}

// wire builds the client stack: store, auth manager, gateway with the manager
// as token source and 401 hook, then the services on top.
func wire(cfg config.Config, tuiMode bool) (*app, error) {
	log, err := newLogger(cfg, tuiMode)
	if err != nil {
		return nil, err
	}

	store := auth.NewStore(cfg.ConfigDir)
	mgr := auth.NewManager(store, log)
	gw := api.New(api.Options{
		BaseURL:        cfg.BaseURL(),
		Timeout:        cfg.RequestTimeout,
		Tokens:         mgr,
		OnUnauthorized: mgr.ForceLogout,
		Logger:         log,
	})
	mgr.Bind(gw)
	mgr.Restore()

	if !tuiMode {
		mgr.OnSessionExpired(func() {
			fmt.Fprintln(os.Stderr, "session expired; run `atv login` again")
		})
	}

	return &app{
		cfg:      cfg,
		log:      log,
		gw:       gw,
		auth:     mgr,
		registry: session.NewRegistry(gw, log),
		ws:       writer.NewOrchestrator(gw, log),
	}, nil
}

// newLogger writes to stderr normally and to a file in TUI mode so log lines
// never corrupt the alternate screen.
func newLogger(cfg config.Config, tuiMode bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	if tuiMode {
		if err := os.MkdirAll(cfg.ConfigDir, 0o700); err != nil {
			return nil, err
		}
		zcfg.OutputPaths = []string{filepath.Join(cfg.ConfigDir, "atv.log")}
		zcfg.ErrorOutputPaths = zcfg.OutputPaths
	} else {
		zcfg.OutputPaths = []string{"stderr"}
		zcfg.ErrorOutputPaths = []string{"stderr"}
	}
	return zcfg.Build()
}

// pickTargetSession resolves the one-shot generation target: the first listed
// session, or a fresh quick-draft session when none exist.
func pickTargetSession(ctx context.Context, gw api.Gateway) (int64, error) {
	sessions, err := gw.ListSessions(ctx)
	if err != nil {
		return 0, err
	}
	if len(sessions) > 0 {
		return sessions[0].ID, nil
	}
	created, err := gw.CreateSession(ctx, "Quick AI Draft")
	if err != nil {
		return 0, err
	}
	return created.ID, nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(err error) {
	var apiErr *api.APIError
	switch {
	case errors.As(err, &apiErr):
		fmt.Fprintf(os.Stderr, "error: %s\n", apiErr.Error())
	case errors.Is(err, errs.ErrNotAuthenticated):
		fmt.Fprintln(os.Stderr, "error: not authenticated; run `atv login`")
	default:
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(1)
}
