package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/coursebot/ai/observability/logging"
	"github.com/hrygo/coursebot/internal/profile"
	"github.com/hrygo/coursebot/internal/version"
	"github.com/hrygo/coursebot/server"
)

var (
	rootCmd = &cobra.Command{
		Use:   "coursebot",
		Short: `A course-support chatbot that routes student questions to the right expert.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Systemd units provide the environment directly.
			if !isRunningAsSystemdService() {
				_ = godotenv.Load()
			}
			slog.SetDefault(logging.New(viper.GetString("mode"), viper.GetString("log-level"), os.Stderr))
			return nil
		},
		Run: func(_ *cobra.Command, _ []string) {
			instanceProfile, err := newProfile()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}

			ctx, cancel := context.WithCancel(context.Background())
			a, err := newApp(ctx, instanceProfile)
			if err != nil {
				cancel()
				printStartupError(err, instanceProfile)
				slog.Error("failed to initialize router", "error", err)
				return
			}
			defer a.Close()

			s, err := server.NewServer(ctx, instanceProfile, a.router, a.exporter)
			if err != nil {
				cancel()
				slog.Error("failed to create server", "error", err)
				return
			}

			c := make(chan os.Signal, 1)
			// SIGTERM is what process managers send for a graceful stop.
			signal.Notify(c, terminationSignals...)

			if err := s.Start(ctx); err != nil {
				if !errors.Is(err, http.ErrServerClosed) {
					slog.Error("failed to start server", "error", err)
					cancel()
					return
				}
			}

			printGreetings(instanceProfile)

			go func() {
				<-c
				s.Shutdown(ctx)
				cancel()
			}()

			<-ctx.Done()
		},
	}
)

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", profile.DriverNone)
	viper.SetDefault("port", 28090)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 28090, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", profile.DriverNone, "document store driver (sqlite, postgres, none)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name(aka. DSN)")
	rootCmd.PersistentFlags().Float64("rate-limit", 5, "requests per second per client, 0 disables")

	for _, name := range []string{"mode", "log-level", "addr", "port", "data", "driver", "dsn", "rate-limit"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("coursebot")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(askCmd, ingestCmd)
}

// newProfile assembles the profile from flags and environment and validates it.
func newProfile() (*profile.Profile, error) {
	p := &profile.Profile{
		Mode:      viper.GetString("mode"),
		Addr:      viper.GetString("addr"),
		Port:      viper.GetInt("port"),
		Data:      viper.GetString("data"),
		Driver:    viper.GetString("driver"),
		DSN:       viper.GetString("dsn"),
		RateLimit: viper.GetFloat64("rate-limit"),
		Version:   version.String(),
	}
	p.FromEnv()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func printGreetings(profile *profile.Profile) {
	fmt.Printf("Coursebot %s started successfully!\n", profile.Version)

	if profile.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
		if profile.DSN != "" {
			fmt.Fprintf(os.Stderr, "Database: %s\n", profile.DSN)
		}
	}

	fmt.Printf("Document store: %s\n", profile.Driver)
	fmt.Printf("Mode: %s\n", profile.Mode)

	if len(profile.Addr) == 0 {
		fmt.Printf("Server running on port %d\n", profile.Port)
		fmt.Printf("Ask at: http://localhost:%d/api/v1/query\n", profile.Port)
	} else {
		fmt.Printf("Server running on %s:%d\n", profile.Addr, profile.Port)
		fmt.Printf("Ask at: http://%s:%d/api/v1/query\n", profile.Addr, profile.Port)
	}
}

// isRunningAsSystemdService detects if the process is running under systemd
func isRunningAsSystemdService() bool {
	return os.Getenv("INVOCATION_ID") != "" || os.Getenv("WATCHDOG_USEC") != ""
}

// printStartupError gives a hint for the common startup failures.
func printStartupError(err error, profile *profile.Profile) {
	fmt.Fprintln(os.Stderr, "\nStartup failed")

	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no such host"):
		fmt.Fprintf(os.Stderr, "\n  The %s document store is not reachable.\n", profile.Driver)
		fmt.Fprintf(os.Stderr, "  Run without retrieval with --driver=none, or locally with --driver=sqlite.\n")
	case strings.Contains(errMsg, "sslmode") || strings.Contains(errMsg, "SSL is not enabled"):
		fmt.Fprintf(os.Stderr, "\n  Add ?sslmode=disable to your DSN.\n")
	case strings.Contains(errMsg, "401") || strings.Contains(errMsg, "Incorrect API key"):
		fmt.Fprintf(os.Stderr, "\n  The embedding provider rejected COURSEBOT_OPENAI_API_KEY.\n")
	case strings.Contains(errMsg, "routes"):
		fmt.Fprintf(os.Stderr, "\n  Check the route catalog file %q.\n", profile.RoutesFile)
	default:
		fmt.Fprintln(os.Stderr, "\n ", errMsg)
	}

	if _, statErr := os.Stat(".env"); statErr != nil {
		fmt.Fprintf(os.Stderr, "\n  Tip: create a .env file for local configuration.\n")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
