// Package app assembles the focusflow command-line application.
package app

import (
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/focusflow/focusflow/internal/config"
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

// Get retrieves the focusflow app instance.
func Get() *cli.App {
	focusflowApp := &cli.App{
		Name: "focusflow",
		Usage: `
		Focusflow tracks time spent on distracting websites, warns you as a
		configured limit approaches, and fades the page out once it is
		exceeded. The serve command hosts the local daemon the browser
		extension talks to.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the tracking daemon",
				Action: serveAction,
				Flags:  []cli.Flag{addrFlag},
			},
			{
				Name:   "dashboard",
				Usage:  "Show the live countdown dashboard",
				Action: dashboardAction,
				Flags:  []cli.Flag{addrFlag},
			},
			{
				Name:   "history",
				Usage:  "Show daily usage trends and the site leaderboard",
				Action: historyAction,
				Flags:  []cli.Flag{topFlag},
			},
			{
				Name:   "theme",
				Usage:  "Show or set the display theme (light or dark)",
				Action: themeAction,
			},
			{
				Name:  "rules",
				Usage: "Manage the focus rules",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List the configured rules",
						Action: rulesListAction,
					},
					{
						Name:      "add",
						Usage:     "Add or replace a rule",
						ArgsUsage: "<pattern>",
						Action:    rulesAddAction,
						Flags: []cli.Flag{
							hoursFlag,
							minutesFlag,
							secondsFlag,
						},
					},
					{
						Name:      "remove",
						Usage:     "Remove a rule",
						ArgsUsage: "<pattern>",
						Action:    rulesRemoveAction,
					},
					{
						Name:   "export",
						Usage:  "Export the rules as CSV",
						Action: rulesExportAction,
					},
				},
			},
		},
		Flags: []cli.Flag{
			noColorFlag,
			verboseFlag,
		},
		Action: serveAction,
		Before: beforeAction,
		After:  afterAction,
	}

	return focusflowApp
}
