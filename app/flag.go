package app

import "github.com/urfave/cli/v2"

var (
	addrFlag = &cli.StringFlag{
		Name:  "addr",
		Usage: "Address the daemon listens on (or is reachable at)",
	}

	topFlag = &cli.IntFlag{
		Name:  "top",
		Usage: "Number of sites to show in the leaderboard",
		Value: 6,
	}

	hoursFlag = &cli.IntFlag{
		Name:    "hours",
		Aliases: []string{"H"},
		Usage:   "Hours component of the daily limit",
	}

	minutesFlag = &cli.IntFlag{
		Name:    "minutes",
		Aliases: []string{"m"},
		Usage:   "Minutes component of the daily limit",
		Value:   5,
	}

	secondsFlag = &cli.IntFlag{
		Name:    "seconds",
		Aliases: []string{"s"},
		Usage:   "Seconds component of the daily limit",
	}

	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	verboseFlag = &cli.BoolFlag{
		Name:  "verbose",
		Usage: "Enable debug logging",
	}
)
