// Command accident-form is a terminal client for reporting a workplace
// accident against the form backend.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/zgloszenie/accident-form/internal/api"
	"github.com/zgloszenie/accident-form/internal/config"
	"github.com/zgloszenie/accident-form/internal/controller"
	"github.com/zgloszenie/accident-form/internal/draft"
	"github.com/zgloszenie/accident-form/internal/remote"
	"github.com/zgloszenie/accident-form/internal/session"
	"github.com/zgloszenie/accident-form/internal/wizard"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func usage() {
	fmt.Fprintf(os.Stderr, `accident-form
Usage:
  accident-form [-api URL] [-config file] <cmd> [args]

Commands:
  version
  wizard                        interactive three-step form
  validate                      remote validation over the saved draft
  submit                        validate and submit the saved draft
  history      [-limit n] [-offset n]
  show         -ver <n>         print one stored version
  pdf-url      -ver <n>
  session                       print the current session state
  reset                         drop local session and draft state
`)
	os.Exit(2)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		fmt.Fprintf(os.Stderr, "backend error: status=%d detail=%s\n", apiErr.Status, apiErr.Detail)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// logNotifier reports controller notifications on stderr for the
// non-interactive subcommands.
type logNotifier struct{}

func (logNotifier) Info(msg string)    { fmt.Fprintln(os.Stderr, "info: "+msg) }
func (logNotifier) Success(msg string) { fmt.Fprintln(os.Stderr, "ok: "+msg) }
func (logNotifier) Error(msg string)   { fmt.Fprintln(os.Stderr, "error: "+msg) }

type app struct {
	cfg      config.Config
	client   *api.Client
	sessions *session.Manager
	drafts   *draft.Store
	remote   *remote.Validator
}

func buildApp(apiOverride, cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if apiOverride != "" {
		cfg.APIBaseURL = apiOverride
	}
	tokens := &api.TokenStore{}
	client := api.New(cfg.APIBaseURL, tokens, api.WithTimeout(cfg.Timeout()))
	sessions := session.NewManager(client, tokens, config.Dir(), cfg.FormType)
	return &app{
		cfg:      cfg,
		client:   client,
		sessions: sessions,
		drafts:   draft.New(config.Dir()),
		remote:   remote.New(client, sessions),
	}, nil
}

func main() {
	apiFlag := flag.String("api", "", "backend base URL (overrides config and "+config.EnvAPIBaseURL+")")
	cfgPath := flag.String("config", "", "config file path")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)

	if cmd == "version" {
		fmt.Printf("accident-form %s (%s)\n", version, buildDate)
		return
	}

	a, err := buildApp(*apiFlag, *cfgPath)
	if err != nil {
		fail(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch cmd {
	case "wizard":
		runWizard(a)

	case "validate":
		values := a.drafts.Load()
		if values == nil {
			fail(errors.New("no saved draft; run the wizard first"))
		}
		res, err := a.remote.ValidateWithRecovery(ctx, values, nil)
		if err != nil {
			fail(err)
		}
		printJSON(res.Response)

	case "submit":
		runSubmit(ctx, a)

	case "history":
		fs := flag.NewFlagSet("history", flag.ExitOnError)
		limit := fs.Int("limit", 20, "page size")
		offset := fs.Int("offset", 0, "page offset")
		_ = fs.Parse(flag.Args()[1:])
		st, err := a.sessions.Ensure(ctx)
		if err != nil {
			fail(err)
		}
		h, err := a.client.History(ctx, st.SessionID, *limit, *offset)
		if err != nil {
			fail(err)
		}
		printJSON(h)

	case "show":
		fs := flag.NewFlagSet("show", flag.ExitOnError)
		ver := fs.Int64("ver", 0, "version number")
		_ = fs.Parse(flag.Args()[1:])
		if *ver <= 0 {
			fmt.Fprintln(os.Stderr, "need -ver")
			os.Exit(1)
		}
		st, err := a.sessions.Ensure(ctx)
		if err != nil {
			fail(err)
		}
		snap, err := a.client.FormVersion(ctx, st.SessionID, *ver)
		if err != nil {
			fail(err)
		}
		printJSON(snap)

	case "pdf-url":
		fs := flag.NewFlagSet("pdf-url", flag.ExitOnError)
		ver := fs.Int64("ver", 0, "version number")
		_ = fs.Parse(flag.Args()[1:])
		if *ver <= 0 {
			fmt.Fprintln(os.Stderr, "need -ver")
			os.Exit(1)
		}
		st, err := a.sessions.Ensure(ctx)
		if err != nil {
			fail(err)
		}
		fmt.Println(a.client.PDFURL(st.SessionID, *ver))

	case "session":
		st := a.sessions.Current()
		if st.SessionID == "" {
			fmt.Println("no local session")
			return
		}
		type row struct{ SessionID, Status, ExpiresAt string }
		printJSON(row{
			SessionID: st.SessionID,
			Status:    st.Status,
			ExpiresAt: st.ExpiresAtTime().UTC().Format(time.RFC3339),
		})

	case "reset":
		if err := a.sessions.Close(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "warning: backend close failed:", err)
		}
		if err := a.drafts.Clear(); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	default:
		usage()
	}
}

func runSubmit(ctx context.Context, a *app) {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	ctrl := controller.New(logger, logNotifier{}, a.sessions, a.remote, a.client, a.drafts)
	if !ctrl.Start() {
		fail(errors.New("no saved draft; run the wizard first"))
	}
	ctrl.ContinueDraft()
	if err := ctrl.Submit(ctx); err != nil {
		fail(err)
	}
	printJSON(ctrl.History())
}

func runWizard(a *app) {
	// zap would write over the TUI; the wizard reports through toasts instead.
	logger := zap.NewNop()

	notifier := wizard.NewNotifier()
	ctrl := controller.New(logger, notifier, a.sessions, a.remote, a.client, a.drafts)
	m := wizard.New(context.Background(), ctrl, notifier)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fail(err)
	}
}
