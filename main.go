// ABOUTME: Entry point for the feedback client CLI, TUI and MCP server
// ABOUTME: Loads config and session, then routes to the requested command
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/amanks009/feedback-client/api"
	"github.com/amanks009/feedback-client/cli"
	"github.com/amanks009/feedback-client/config"
	"github.com/amanks009/feedback-client/logging"
	"github.com/amanks009/feedback-client/session"
)

const version = "0.1.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	apiURL := flag.String("api-url", "", "Feedback API base URL (overrides config and FEEDBACK_API_URL)")
	configPath := flag.String("config", "", "Config file (default: ~/.config/feedback/config.yaml)")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("feedback version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	path := *configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *apiURL != "" {
		cfg.APIURL = strings.TrimRight(*apiURL, "/")
	}

	logger, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		log.Printf("warning: logging disabled: %v", err)
		logger = logging.Nop()
	}
	defer func() { _ = logger.Sync() }()

	command := args[0]
	commandArgs := args[1:]
	sessionPath := session.Path()

	logger.Debug("running command", zap.String("command", command), zap.String("api_url", cfg.APIURL))

	switch command {
	case "login":
		client := newClient(cfg, nil, logger)
		if err := cli.LoginCommand(client, sessionPath, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "logout":
		if err := cli.LogoutCommand(sessionPath); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "whoami":
		if err := cli.WhoamiCommand(sessionPath); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "tui":
		// The TUI shows a sign-in hint when there is no session
		sess, err := session.LoadFrom(sessionPath)
		if err != nil && !errors.Is(err, session.ErrNotSignedIn) {
			log.Fatalf("Failed to load session: %v", err)
		}
		if err := cli.TUICommand(newClient(cfg, sess, logger), sess, sessionPath, logger); err != nil {
			log.Fatalf("TUI failed: %v", err)
		}

	case "mcp":
		client := mustClient(cfg, sessionPath, logger)
		if err := cli.MCPCommand(client, logger, version); err != nil {
			log.Fatalf("MCP server failed: %v", err)
		}

	// Manager commands
	case "team":
		run(cli.TeamCommand(mustClient(cfg, sessionPath, logger), commandArgs))
	case "list":
		run(cli.ListFeedbackCommand(mustClient(cfg, sessionPath, logger), commandArgs))
	case "give":
		run(cli.GiveFeedbackCommand(mustClient(cfg, sessionPath, logger), commandArgs))
	case "edit":
		run(cli.EditFeedbackCommand(mustClient(cfg, sessionPath, logger), commandArgs))
	case "delete":
		run(cli.DeleteFeedbackCommand(mustClient(cfg, sessionPath, logger), commandArgs))
	case "summary":
		run(cli.SummaryCommand(mustClient(cfg, sessionPath, logger), commandArgs))

	// Employee commands
	case "timeline":
		run(cli.TimelineCommand(mustClient(cfg, sessionPath, logger), commandArgs))
	case "ack":
		run(cli.AckCommand(mustClient(cfg, sessionPath, logger), commandArgs))

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func run(err error) {
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func newClient(cfg *config.Config, sess *session.Session, logger *zap.Logger) *api.Client {
	opts := api.Options{
		BaseURL: cfg.APIURL,
		Timeout: cfg.Timeout,
		Logger:  logger,
	}
	if sess.Valid() {
		opts.Token = sess.Token
		opts.DeviceID = sess.DeviceID
	}
	return api.New(opts)
}

// mustClient returns an authenticated client or exits with a sign-in hint.
func mustClient(cfg *config.Config, sessionPath string, logger *zap.Logger) *api.Client {
	sess, err := session.LoadFrom(sessionPath)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	return newClient(cfg, sess, logger)
}

func printUsage() {
	fmt.Printf(`feedback v%s - Employee feedback client

USAGE:
  feedback [global flags] <command> [flags] [args]

GLOBAL FLAGS:
  --version              Show version and exit
  --api-url <url>        Feedback API base URL (default: %s)
  --config <path>        Config file (default: ~/.config/feedback/config.yaml)

SESSION:
  feedback login            Sign in and store the session
    --email <email>           Account email (prompted if omitted)
    --password <password>     Password (prompted if omitted)
  feedback logout           Remove the stored session
  feedback whoami           Show the signed-in user

INTERACTIVE:
  feedback tui              Open the dashboards for your role
  feedback mcp              Start MCP server (for Claude Desktop integration)

MANAGER COMMANDS:
  feedback team             List direct reports with feedback counts
  feedback list [flags] <employee-id>
    --pending                 Only unacknowledged feedback
  feedback give             Give feedback
    --employee <id>           Employee ID (required)
    --strengths <text>        Strengths (required)
    --improve <text>          Areas to improve (required)
    --sentiment <value>       positive, neutral or negative (required)
  feedback edit [flags] <feedback-id>
    --employee <id>           Employee the feedback belongs to (required)
    --strengths, --improve, --sentiment   Fields to change
    Note: flags must come before the feedback ID
  feedback delete [--yes] <feedback-id>
  feedback summary          Team sentiment summary
    --output <file>           Output file (default: stdout)

EMPLOYEE COMMANDS:
  feedback timeline         Feedback you have received
    --pending                 Only unacknowledged feedback
  feedback ack <feedback-id>  Acknowledge feedback

ENVIRONMENT:
  FEEDBACK_API_URL, FEEDBACK_TIMEOUT, FEEDBACK_LOG_LEVEL, FEEDBACK_LOG_FILE, FEEDBACK_TOKEN

EXAMPLES:
  feedback login --email mona@example.com
  feedback give --employee 2 --strengths "Great reviews" --improve "Estimates" --sentiment positive
  feedback delete 12

`, version, config.DefaultAPIURL)
}
