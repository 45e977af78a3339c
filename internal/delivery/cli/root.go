// Package cli wires the toolkit's use cases into a cobra command tree.
package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/dpplink/dpplink/config"
	"github.com/dpplink/dpplink/internal/domain"
	"github.com/dpplink/dpplink/internal/infrastructure/centric"
	"github.com/dpplink/dpplink/internal/usecase"
)

// Handler holds dependencies for the CLI commands
type Handler struct {
	cfg        *config.Config
	aliases    map[string]string
	batch      *usecase.BatchService
	changelist *usecase.ChangelistService
	writer     domain.WorkbookWriter
	debug      bool
}

// NewHandler creates a new CLI handler
func NewHandler(
	cfg *config.Config,
	aliases map[string]string,
	batch *usecase.BatchService,
	changelist *usecase.ChangelistService,
	writer domain.WorkbookWriter,
) *Handler {
	return &Handler{
		cfg:        cfg,
		aliases:    aliases,
		batch:      batch,
		changelist: changelist,
		writer:     writer,
	}
}

// SetDebug enables or disables debug logging across the services
func (h *Handler) SetDebug(debug bool) {
	h.debug = debug
	h.batch.SetDebug(debug)
	h.changelist.SetDebug(debug)
}

// newCentricClient builds an API client from configuration. A zero timeout
// keeps the configured one.
func (h *Handler) newCentricClient(timeout time.Duration) *centric.Client {
	if timeout <= 0 {
		timeout = h.cfg.Centric.Timeout
	}

	client := centric.NewClient(centric.Config{
		BaseURL:           h.cfg.Centric.BaseURL,
		Username:          h.cfg.Centric.Username,
		Password:          h.cfg.Centric.Password,
		TokenFile:         h.cfg.Centric.TokenFile,
		LogFile:           h.cfg.Centric.LogFile,
		Timeout:           timeout,
		RequestsPerSecond: h.cfg.Centric.RequestsPerSecond,
	})

	client.SetDebug(h.debug)

	if h.cfg.Centric.Token != "" {
		client.SetToken(h.cfg.Centric.Token)
	}

	return client
}

// NewRootCommand creates the dpplink command tree
func NewRootCommand(h *Handler, version string) *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:   "dpplink",
		Short: "Centric PLM data-plumbing toolkit",
		Long: `Move tabular record data between the Centric PLM API, xlsx
workbooks, and ChangeNode XML change lists.

Commands:
  urls        Generate composite identifier URLs from order/EAN workbook pairs.
  fetch       Call the Centric API and save the JSON response.
  convert     Flatten a JSON payload into an xlsx workbook.
  changelist  Convert workbook rows into ChangeNode XML change lists.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			h.SetDebug(debug || h.cfg.Debug)
		},
	}

	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	root.AddCommand(newURLsCommand(h))
	root.AddCommand(newFetchCommand(h))
	root.AddCommand(newConvertCommand(h))
	root.AddCommand(newChangelistCommand(h))

	return root
}
