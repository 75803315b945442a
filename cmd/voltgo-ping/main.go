// Command voltgo-ping opens a connection to a single node, submits one
// procedure call, prints the decoded response, and exits. It exists to
// exercise the library end to end the way the teacher's examples/goclient
// exercises its own driver.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/voltdb/voltgo"
	"github.com/voltdb/voltgo/internal/version"
	"github.com/voltdb/voltgo/internal/vlog"
	"github.com/voltdb/voltgo/message"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		endpoint  string
		userID    string
		password  string
		procedure string
		params    []string
		timeoutMs int64
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "voltgo-ping",
		Short: "Submit one stored-procedure call and print the response",
		RunE: func(cmd *cobra.Command, args []string) error {
			logLevel := vlog.LevelWarn
			if verbose {
				logLevel = vlog.LevelDebug
			}
			logger := vlog.New(vlog.Config{Level: logLevel, Format: vlog.FormatText})

			settings := voltgo.DefaultSettings()
			settings.Endpoints = []string{endpoint}
			settings.UserID = userID
			settings.Password = password

			ctx, cancel := context.WithTimeout(context.Background(), settings.ConnectTimeout+5*time.Second)
			defer cancel()

			conn, err := voltgo.Connect(ctx, settings, nil, logger)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer conn.Close()

			callParams, err := parseParams(params)
			if err != nil {
				return err
			}

			done := make(chan struct{})
			var resp *message.Response
			var callErr error

			_, err = conn.Submit(procedure, callParams, func(r *message.Response, e error) {
				resp, callErr = r, e
				close(done)
			}, timeoutMs)
			if err != nil {
				return fmt.Errorf("submit: %w", err)
			}

			select {
			case <-done:
			case <-time.After(time.Duration(timeoutMs+1000) * time.Millisecond):
				return fmt.Errorf("no response within %dms", timeoutMs+1000)
			}

			if callErr != nil {
				return fmt.Errorf("call failed: %w", callErr)
			}
			fmt.Printf("server_status=%d duration_ms=%d tables=%d\n",
				resp.ServerStatus, resp.ExecutionDurationMs, len(resp.Tables))
			for i, t := range resp.Tables {
				fmt.Printf("  table[%d]: %d columns, %d rows\n", i, t.ColumnCount(), t.RowCount())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "127.0.0.1:21212", "server host:port")
	cmd.Flags().StringVar(&userID, "user", "", "login user id")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	cmd.Flags().StringVar(&procedure, "procedure", "@Ping", "procedure name to invoke")
	cmd.Flags().StringArrayVar(&params, "param", nil, "parameter, repeatable; int64:N, string:S, or raw string")
	cmd.Flags().Int64Var(&timeoutMs, "timeout-ms", 5000, "per-call timeout in milliseconds")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	cmd.Version = version.Full()
	return cmd
}

// parseParams interprets "int64:N" / "string:S" tagged values, or treats a
// bare value as a string parameter.
func parseParams(raw []string) ([]interface{}, error) {
	out := make([]interface{}, 0, len(raw))
	for _, r := range raw {
		switch {
		case len(r) > 6 && r[:6] == "int64:":
			n, err := strconv.ParseInt(r[6:], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid int64 param %q: %w", r, err)
			}
			out = append(out, n)
		case len(r) > 7 && r[:7] == "string:":
			out = append(out, r[7:])
		default:
			out = append(out, r)
		}
	}
	return out, nil
}
