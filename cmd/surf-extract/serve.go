package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/surf-chart-ocr/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdin/stdout",
	Long: `Run the MCP (Model Context Protocol) server. Requests are read from
stdin one per line and responses written to stdout, so logs go to stderr.
Configure it in your MCP client.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	p, err := newPipeline(cfg, log)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Extractor:  p.extractor,
		Source:     p.source,
		Recognizer: p.engine,
		BaseURL:    cfg.BaseURL,
		Version:    Version,
		Logger:     log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Debugw("mcp server starting", "version", Version, "commit", GitCommit)
	return srv.Run(ctx, os.Stdin, os.Stdout)
}
