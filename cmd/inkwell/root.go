package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"inkwell/internal/access"
	"inkwell/internal/apiclient"
	"inkwell/internal/apierrors"
	"inkwell/internal/blog"
	"inkwell/internal/platform/config"
	"inkwell/internal/platform/logger"
	platformredis "inkwell/internal/platform/redis"
	"inkwell/internal/session"
	"inkwell/internal/session/store"
)

var (
	flagAPIURL  string
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "inkwell",
	Short: "CLI client for the Inkwell blog platform",
	Long: "CLI client for the Inkwell blog platform. Sessions persist across " +
		"invocations; sign in once with \"inkwell login\" and subsequent " +
		"commands reuse the stored credential until it expires or you log out.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree and exits non-zero on error.
func Execute() {
	bindFlags()
	bindSubcommands()
	if err := rootCmd.Execute(); err != nil {
		slog.Debug("command failed", "error", err)
		fmt.Fprintln(os.Stderr, userMessage(err))
		os.Exit(1)
	}
}

// userMessage picks what a failed command prints: the classified user-facing
// text for failures that came through the transport, the plain error text for
// everything else. Wrapped transport detail stays out of normal output.
func userMessage(err error) string {
	var ae *apierrors.Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

func bindFlags() {
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "base URL of the blog API (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to a config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

func bindSubcommands() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd, usersCmd, postCmd)
}

// app bundles the wired dependency graph for one command invocation.
type app struct {
	cfg      config.Config
	log      *slog.Logger
	creds    store.CredentialStore
	blog     *blog.Client
	sessions *session.Manager
	gate     *access.Gate
	close    func()
}

// newApp wires config, logging, the credential store, the transport, and the
// session manager. The manager subscribes to the transport's invalidation
// signal here; it is the signal's only listener.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagAPIURL != "" {
		cfg.APIURL = flagAPIURL
	}
	if flagVerbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	creds, closeFn, err := buildCredentialStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	api := apiclient.New(cfg.APIURL, creds, apiclient.WithLogger(log))
	blogClient := blog.NewClient(api)
	sessions := session.New(ctx, blogClient, creds, session.WithLogger(log))
	api.OnInvalidate(sessions.HandleInvalidation)

	return &app{
		cfg:      cfg,
		log:      log,
		creds:    creds,
		blog:     blogClient,
		sessions: sessions,
		gate:     access.NewGate(sessions),
		close:    closeFn,
	}, nil
}

func buildCredentialStore(ctx context.Context, cfg config.Config) (store.CredentialStore, func(), error) {
	if cfg.RedisURL != "" {
		client, err := platformredis.New(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedis(client.Client, cfg.Scope), func() { _ = client.Close() }, nil
	}
	fileStore, err := store.NewFile(cfg.CredentialPath)
	if err != nil {
		return nil, nil, err
	}
	return fileStore, func() {}, nil
}
