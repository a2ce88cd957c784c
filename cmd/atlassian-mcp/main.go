package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/robfig/cron/v3"

	"github.com/ternarybob/atlassian-mcp/internal/common"
	"github.com/ternarybob/atlassian-mcp/internal/server"
	"github.com/ternarybob/atlassian-mcp/internal/services/confluence"
	"github.com/ternarybob/atlassian-mcp/internal/services/jira"
	"github.com/ternarybob/atlassian-mcp/internal/services/preprocess"
)

const startupTimeout = 30 * time.Second

func main() {
	defaultConfig := os.Getenv("ATLASSIAN_MCP_CONFIG")
	if defaultConfig == "" {
		defaultConfig = "atlassian-mcp.toml"
	}

	configPath := flag.String("config", defaultConfig, "Path to TOML configuration file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	common.InstallCrashHandler("")
	defer common.RecoverWithCrashFile()

	// The banner writes to stdout, which belongs to the MCP framing once the
	// server starts. Print it only on the version path.
	if *showVersion {
		common.PrintBanner(common.GetFullVersion())
		return
	}

	config, err := common.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := common.InitLogger(config)

	confluenceClient := confluence.NewClient(config.Confluence, logger)
	confluenceService := confluence.NewService(
		confluenceClient,
		preprocess.New(config.Confluence.URL, logger),
		logger,
	)

	jiraClient := jira.NewClient(config.Jira, logger)
	catalog := jira.NewFieldCatalog(jiraClient, logger)
	jiraService := jira.NewService(
		jiraClient,
		catalog,
		preprocess.New(config.Jira.URL, logger),
		logger,
	)

	// Build the field catalog before serving. Failure is non-fatal: the
	// catalog runs on seed mappings until a refresh succeeds.
	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	_ = catalog.Initialize(startupCtx)

	if schedule := config.Catalog.RefreshSchedule; schedule != "" {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(schedule, func() {
			refreshCtx, cancelRefresh := context.WithTimeout(context.Background(), startupTimeout)
			defer cancelRefresh()
			catalog.Refresh(refreshCtx)
		}); err != nil {
			cancel()
			logger.Fatal().Err(err).Str("schedule", schedule).Msg("Invalid catalog refresh schedule")
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	s := mcpserver.NewMCPServer(
		"atlassian-mcp",
		common.GetVersion(),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, true),
		mcpserver.WithRecovery(),
	)

	router := server.NewRouter(logger)
	server.RegisterTools(router, confluenceService, jiraService)
	router.Attach(s)

	resources := server.NewResourceRouter(confluenceService, jiraService, logger)
	resources.Attach(s)
	resources.RegisterKnownContainers(startupCtx, s)
	cancel()

	if err := mcpserver.ServeStdio(s); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
