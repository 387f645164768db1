package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/focusflow/focusflow/bridge"
	"github.com/focusflow/focusflow/bus"
	"github.com/focusflow/focusflow/dashboard"
	"github.com/focusflow/focusflow/history"
	"github.com/focusflow/focusflow/internal/config"
	"github.com/focusflow/focusflow/internal/models"
	"github.com/focusflow/focusflow/rollover"
	"github.com/focusflow/focusflow/store"
	"github.com/focusflow/focusflow/tracker"
)

const (
	envNoColor          = "NO_COLOR"
	envFocusflowNoColor = "FOCUSFLOW_NO_COLOR"
)

var errEmptyPattern = errors.New("a non-empty URL pattern is required")

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.New(
		config.WithViperConfig(config.ConfigFilePath()),
	)
	if err != nil {
		return nil, err
	}

	if addr := ctx.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	return cfg, nil
}

func openStore() (*store.Client, error) {
	return store.NewClient(config.DBFilePath(), time.Now())
}

// serveAction runs the tracking daemon until it is interrupted.
func serveAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}

	defer func() {
		_ = db.Close()
	}()

	router := bus.NewRouter()
	ro := rollover.NewManager(db)
	tr := tracker.New(db, ro, router)
	srv := bridge.New(cfg, db, router, tr)

	runCtx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	pterm.Info.Printfln("focusflow daemon listening on %s", cfg.Server.Addr)

	return srv.Run(runCtx)
}

// dashboardAction shows the live popup dashboard.
func dashboardAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	client := dashboard.NewClient(cfg.Server.Addr)

	p := tea.NewProgram(dashboard.NewModel(client))

	_, err = p.Run()

	return err
}

// historyAction renders the trend chart and leaderboard.
func historyAction(ctx *cli.Context) error {
	db, err := openStore()
	if err != nil {
		return err
	}

	defer func() {
		_ = db.Close()
	}()

	log, err := db.History()
	if err != nil {
		return err
	}

	theme, err := db.Theme()
	if err != nil {
		return err
	}

	return history.Render(
		os.Stdout,
		log,
		ctx.Int("top"),
		theme == models.ThemeDark,
	)
}

// themeAction shows or sets the display theme.
func themeAction(ctx *cli.Context) error {
	db, err := openStore()
	if err != nil {
		return err
	}

	defer func() {
		_ = db.Close()
	}()

	arg := strings.ToLower(strings.TrimSpace(ctx.Args().First()))
	if arg == "" {
		theme, err := db.Theme()
		if err != nil {
			return err
		}

		pterm.Println(theme)

		return nil
	}

	if arg != models.ThemeLight && arg != models.ThemeDark {
		return fmt.Errorf("unknown theme: %s (expected light or dark)", arg)
	}

	return db.SetTheme(arg)
}

// formatLimit renders a seconds value the way the rule list displays it.
func formatLimit(totalSeconds int) string {
	var b strings.Builder

	if totalSeconds >= 3600 {
		fmt.Fprintf(&b, "%dh ", totalSeconds/3600)
	}

	if (totalSeconds%3600)/60 > 0 {
		fmt.Fprintf(&b, "%dm ", (totalSeconds%3600)/60)
	}

	if totalSeconds%60 > 0 || totalSeconds == 0 {
		fmt.Fprintf(&b, "%ds", totalSeconds%60)
	}

	return strings.TrimSpace(b.String())
}

func rulesListAction(_ *cli.Context) error {
	db, err := openStore()
	if err != nil {
		return err
	}

	defer func() {
		_ = db.Close()
	}()

	ruleList, err := db.Rules()
	if err != nil {
		return err
	}

	if len(ruleList) == 0 {
		pterm.Info.Println("No rules configured")
		return nil
	}

	data := [][]string{{"Pattern", "Daily limit"}}

	for _, r := range ruleList {
		data = append(data, []string{r.URL, formatLimit(r.TotalSeconds)})
	}

	return pterm.DefaultTable.
		WithHasHeader().
		WithData(data).
		Render()
}

func rulesAddAction(ctx *cli.Context) error {
	pattern := strings.ToLower(strings.TrimSpace(ctx.Args().First()))
	if pattern == "" {
		return errEmptyPattern
	}

	total := ctx.Int("hours")*3600 + ctx.Int("minutes")*60 + ctx.Int("seconds")
	if total <= 0 {
		return errors.New("the daily limit must be greater than zero")
	}

	db, err := openStore()
	if err != nil {
		return err
	}

	defer func() {
		_ = db.Close()
	}()

	err = db.UpsertRule(models.Rule{URL: pattern, TotalSeconds: total})
	if err != nil {
		return err
	}

	pterm.Success.Printfln(
		"%s is now limited to %s per day",
		pattern,
		formatLimit(total),
	)

	return nil
}

func rulesRemoveAction(ctx *cli.Context) error {
	pattern := strings.TrimSpace(ctx.Args().First())
	if pattern == "" {
		return errEmptyPattern
	}

	db, err := openStore()
	if err != nil {
		return err
	}

	defer func() {
		_ = db.Close()
	}()

	removed, err := db.DeleteRule(pattern)
	if err != nil {
		return err
	}

	if !removed {
		pterm.Warning.Printfln("No rule matches %s", pattern)
		return nil
	}

	pterm.Success.Printfln("Removed the rule for %s", pattern)

	return nil
}

func rulesExportAction(_ *cli.Context) error {
	db, err := openStore()
	if err != nil {
		return err
	}

	defer func() {
		_ = db.Close()
	}()

	ruleList, err := db.Rules()
	if err != nil {
		return err
	}

	if len(ruleList) == 0 {
		return errors.New("no rules to export")
	}

	w := csv.NewWriter(os.Stdout)

	if err := w.Write([]string{"Website", "Limit (Seconds)"}); err != nil {
		return err
	}

	for _, r := range ruleList {
		err := w.Write([]string{r.URL, strconv.Itoa(r.TotalSeconds)})
		if err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}

func beforeAction(ctx *cli.Context) error {
	config.InitializePaths()
	config.InitLogger(ctx.Bool("verbose"))

	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	// Disable colour output if NO_COLOR is set
	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	if _, exists := os.LookupEnv(envFocusflowNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	return nil
}

func afterAction(ctx *cli.Context) error {
	slog.InfoContext(ctx.Context, "exiting focusflow")

	return nil
}
