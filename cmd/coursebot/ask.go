package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Route one query, or each line of stdin, and print the answer",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newProfile()
		if err != nil {
			return err
		}
		userID, _ := cmd.Flags().GetString("user")
		verbose, _ := cmd.Flags().GetBool("verbose")

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := newApp(ctx, p)
		if err != nil {
			printStartupError(err, p)
			return err
		}
		defer a.Close()

		if len(args) > 0 {
			return ask(ctx, a, cmd.OutOrStdout(), userID, strings.Join(args, " "), verbose)
		}

		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if err := ask(ctx, a, cmd.OutOrStdout(), userID, line, verbose); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
			}
		}
		return scanner.Err()
	},
}

func init() {
	askCmd.Flags().String("user", "cli", "user id owning the conversation context")
	askCmd.Flags().BoolP("verbose", "v", false, "print the resolved expert and attempt count")
}

func ask(ctx context.Context, a *app, w io.Writer, userID, query string, verbose bool) error {
	out, err := a.router.Route(ctx, userID, query)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(w, "[%s reason=%s attempts=%d]\n", out.Expert, out.Reason, out.Attempts)
	}
	fmt.Fprintln(w, out.Answer)
	return nil
}
