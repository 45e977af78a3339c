package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dpplink/dpplink/internal/domain"
)

func newFetchCommand(h *Handler) *cobra.Command {
	var (
		endpoint  string
		method    string
		data      string
		out       string
		alias     string
		raw       bool
		tokenOnly bool
		token     string
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Call the Centric API and save the JSON response",
		Long: `Authenticate against the Centric PLM API (reusing a cached session
token when one exists) and execute a request. The response is written to the
output file, pretty-printed when it is JSON.

The request URL comes from an alias in the aliases file, or from a versioned
endpoint like "v2/materials" composed onto the configured base URL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client := h.newCentricClient(timeout)
			if token != "" {
				client.SetToken(token)
			}

			if tokenOnly {
				t, err := client.Token(ctx)
				if err != nil {
					return err
				}
				fmt.Println(t)
				return nil
			}

			requestURL, err := h.resolveRequestURL(alias, endpoint, client.EndpointURL)
			if err != nil {
				return err
			}

			var body []byte
			if data != "" {
				if strings.HasPrefix(data, "@") {
					body, err = os.ReadFile(data[1:])
					if err != nil {
						return fmt.Errorf("failed to read request body: %w", err)
					}
				} else {
					body = []byte(data)
				}
			}

			response, err := client.Do(ctx, method, requestURL, body)
			if err != nil {
				return err
			}

			if !raw {
				var pretty bytes.Buffer
				if err := json.Indent(&pretty, response, "", "  "); err == nil {
					response = pretty.Bytes()
				}
				// Non-JSON bodies are written verbatim
			}

			if err := os.WriteFile(out, response, 0o644); err != nil {
				return fmt.Errorf("failed to write response: %w", err)
			}

			fmt.Printf("Wrote response to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&endpoint, "endpoint", "e", "", `Versioned endpoint, e.g. "v2/materials"`)
	cmd.Flags().StringVarP(&method, "method", "m", "GET", "HTTP method")
	cmd.Flags().StringVarP(&data, "data", "d", "", "Request body (use @file to read from a file)")
	cmd.Flags().StringVarP(&out, "out", "o", "payload.json", "Output file for the response")
	cmd.Flags().StringVarP(&alias, "alias", "a", "", "Endpoint alias from the aliases file")
	cmd.Flags().BoolVar(&raw, "raw", false, "Do not pretty-print JSON responses")
	cmd.Flags().BoolVar(&tokenOnly, "token-only", false, "Print the session token and exit")
	cmd.Flags().StringVar(&token, "token", "", "Use an explicit session token instead of authenticating")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "HTTP timeout (default from configuration)")

	return cmd
}

// resolveRequestURL picks the request URL: a matching alias wins, otherwise
// the endpoint (flag or configured default) is composed onto the base URL
func (h *Handler) resolveRequestURL(alias, endpoint string, endpointURL func(string) string) (string, error) {
	if alias != "" {
		if target, ok := h.aliases[strings.TrimSpace(alias)]; ok {
			return target, nil
		}
		// Unknown alias: fall back to the configured default endpoint
	}

	if endpoint == "" {
		endpoint = h.cfg.Centric.DefaultEndpoint
	}

	if endpoint == "" {
		return "", domain.ErrMissingEndpoint
	}

	if h.cfg.Centric.BaseURL == "" {
		return "", domain.ErrMissingCredentials
	}

	return endpointURL(endpoint), nil
}
