package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/therapyassist/dashboard-go/internal/app"
	"github.com/therapyassist/dashboard-go/internal/config"
	"github.com/therapyassist/dashboard-go/internal/notify"
	"github.com/therapyassist/dashboard-go/internal/session"
)

const appName = "therapy dashboard"

type command struct {
	name    string
	usage   string
	summary string
	run     func(ctx context.Context, a *app.App, args []string) error
}

var commands = []command{
	{"verify-code", "<access-code>", "exchange an admin access code for temporary credentials", runVerifyCode},
	{"login", "-role admin|user -username NAME -password PASS", "sign in", runLogin},
	{"logout", "", "sign out and clear stored credentials", runLogout},
	{"whoami", "", "show the stored credential", runWhoAmI},
	{"users", "list|create|get|update|deactivate|reactivate|history ...", "manage users (admin)", runUsers},
	{"sessions", "[-all] [-status STATUS]", "list sessions", runSessions},
	{"analyze", "<session-id>", "analyze a session", runAnalyze},
	{"chat", "", "start a session and chat interactively (user)", runChat},
	{"download", "<session-id> [-user NAME]", "download a session report", runDownload},
	{"stats", "", "show dashboard statistics (admin)", runStats},
	{"activity", "", "show recent activity (admin)", runActivity},
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	cmd, ok := lookup(flag.Arg(0))
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", flag.Arg(0))
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setLogLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg,
		app.WithNotifier(notify.Default()),
		app.WithNavigator(session.NavigatorFunc(func() {
			fmt.Fprintln(os.Stderr, "You are signed out. Run `dashboard login` to sign in again.")
		})),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start dashboard")
	}

	err = cmd.run(log.Logger.WithContext(ctx), a, flag.Args()[1:])
	if closeErr := a.Close(); closeErr != nil {
		log.Warn().Err(closeErr).Msg("failed to close credential store")
	}
	if err != nil {
		if !isReported(err) {
			log.Error().Err(err).Str("command", cmd.name).Msg("command failed")
		}
		os.Exit(1)
	}
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func usage() {
	figure.NewFigure(appName, "cybermedium", true).Print()
	fmt.Fprintf(os.Stderr, "\nUsage: dashboard <command> [arguments]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-12s %s\n", c.name, c.summary)
		if c.usage != "" {
			fmt.Fprintf(os.Stderr, "  %-12s   %s %s\n", "", c.name, c.usage)
		}
	}
	fmt.Fprintf(os.Stderr, "\nConfiguration is read from the environment and .env (API_URL, CREDENTIAL_STORE_URL, DOWNLOAD_DIR, ...).\n")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
