package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"walletbridge/bridge"
	"walletbridge/channel"
	"walletbridge/stdio"
)

// caller returns the socket client, or an in-process registry when local
// is set.
func (e *env) caller(local bool) (stdio.Caller, func(), error) {
	if !local {
		return bridge.NewClient(e.cfg.Socket), func() {}, nil
	}
	app, err := NewApp(e.cfg, e.log)
	if err != nil {
		return nil, nil, err
	}
	return stdio.Local(app.registry), func() { _ = app.Close() }, nil
}

func newCallCmd(e *env) *cobra.Command {
	var (
		local   bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "call <channel> <method> [key=value ...]",
		Short: "Invoke a channel method",
		Long: `Invoke a channel method and print its result.

Arguments are key=value pairs. true/yes/y and false/no/n become booleans,
integers become numbers and anything else is a string. Use key:=<json> to
pass a raw JSON value.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			callArgs, err := parseArgs(args[2:])
			if err != nil {
				return err
			}
			caller, done, err := e.caller(local)
			if err != nil {
				return err
			}
			defer done()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			res, err := caller.Call(ctx, args[0], args[1], callArgs)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "dispatch in-process instead of through the socket")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "how long to wait for the result")
	return cmd
}

func newChannelsCmd(e *env) *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "channels",
		Short: "List registered channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, done, err := e.caller(local)
			if err != nil {
				return err
			}
			defer done()

			channels, err := caller.Channels(cmd.Context())
			if err != nil {
				return err
			}
			for _, ch := range channels {
				fmt.Fprintln(cmd.OutOrStdout(), ch)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "list in-process channels instead of asking the socket")
	return cmd
}

// parseArgs turns key=value pairs into call arguments.
func parseArgs(pairs []string) (channel.Args, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	args := make(channel.Args, len(pairs))
	for _, pair := range pairs {
		if key, raw, ok := strings.Cut(pair, ":="); ok && !strings.Contains(key, "=") {
			var v any
			if err := json.Unmarshal([]byte(raw), &v); err != nil {
				return nil, fmt.Errorf("argument %q: invalid JSON: %w", key, err)
			}
			args[key] = v
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("argument %q: expected key=value", pair)
		}
		args[key] = parseValue(value)
	}
	return args, nil
}

func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "y":
		return true
	case "false", "no", "n":
		return false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}

func printResult(w io.Writer, res channel.Result) error {
	switch res.Outcome {
	case channel.OutcomeNotImplemented:
		return fmt.Errorf("method not implemented")
	case channel.OutcomeError:
		return res.Err
	}
	data, err := json.MarshalIndent(res.Value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
