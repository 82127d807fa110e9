package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	"tetherworker/pkg/types"
)

func defaultWorkerURL() string {
	if v := os.Getenv("TETHER_URL"); v != "" {
		return v
	}
	return "http://localhost:6000"
}

func newClient(baseURL string) *resty.Client {
	return resty.New().
		SetTimeout(2 * time.Minute).
		SetHostURL(strings.TrimRight(baseURL, "/"))
}

// inferPayload turns a CLI argument into a request body. A JSON object is sent
// as-is; anything else becomes the prompt.
func inferPayload(arg, model string, maxTokens int) ([]byte, error) {
	trimmed := strings.TrimSpace(arg)
	if strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed)) {
		return []byte(trimmed), nil
	}
	req := map[string]any{"model": model, "prompt": arg}
	if maxTokens > 0 {
		req["max_tokens"] = maxTokens
	}
	return json.Marshal(req)
}

func newInferCmd() *cobra.Command {
	var (
		url       string
		model     string
		maxTokens int
	)
	cmd := &cobra.Command{
		Use:   "infer <prompt|json>",
		Short: "Send a prompt to a running worker's /infer",
		Example: "  tetherworker infer \"What is the capital of France?\"\n" +
			"  tetherworker infer '{\"model\":\"m\",\"prompt\":\"hi\",\"max_tokens\":16}'",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := inferPayload(args[0], model, maxTokens)
			if err != nil {
				return err
			}
			resp, err := newClient(url).R().
				SetContext(cmd.Context()).
				SetHeader("Content-Type", "application/json").
				SetBody(body).
				Post("/infer")
			if err != nil {
				return fmt.Errorf("call %s/infer: %w", url, err)
			}
			if err := printJSON(cmd.OutOrStdout(), resp.Body()); err != nil {
				return err
			}
			if resp.IsError() {
				return fmt.Errorf("worker returned status %d", resp.StatusCode())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", defaultWorkerURL(), "Worker base URL (defaults TETHER_URL)")
	cmd.Flags().StringVar(&model, "model", "default", "Model name sent with plain-text prompts")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "max_tokens sent with plain-text prompts (0 = server default)")
	return cmd
}

func newHealthCmd() *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show a running worker's host health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var hr types.HealthResponse
			resp, err := newClient(url).R().
				SetContext(cmd.Context()).
				SetResult(&hr).
				Get("/health")
			if err != nil {
				return fmt.Errorf("call %s/health: %w", url, err)
			}
			if resp.IsError() {
				return fmt.Errorf("worker returned status %d", resp.StatusCode())
			}
			printHealth(cmd.OutOrStdout(), hr)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", defaultWorkerURL(), "Worker base URL (defaults TETHER_URL)")
	return cmd
}

func printHealth(w io.Writer, hr types.HealthResponse) {
	m := hr.Memory
	fmt.Fprintf(w, "status: %s\n", hr.Status)
	fmt.Fprintf(w, "cpu:    %.1f%%\n", hr.CPUPercent)
	fmt.Fprintf(w, "memory: %s used / %s total (%.1f%%), %s available\n",
		humanize.IBytes(m.Used), humanize.IBytes(m.Total), m.Percent, humanize.IBytes(m.Available))
}

func printJSON(w io.Writer, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		// not JSON; show it verbatim
		_, err = fmt.Fprintln(w, string(raw))
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}
