package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrsinham/ncdintake/internal/apiclient"
	"github.com/mrsinham/ncdintake/internal/config"
	"github.com/mrsinham/ncdintake/internal/intake"
	"github.com/mrsinham/ncdintake/internal/logging"
	"github.com/mrsinham/ncdintake/internal/session"
)

const prefRegistry = "registry"

// app carries what the client commands share.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	closeLog func() error
	sess     *session.Session
	client   *apiclient.Client
}

// newApp loads configuration, logging and the session, then resolves the
// API host. A terminal UI owns the screen, so it logs to LOG_FILE only.
func newApp(cmd *cobra.Command, tui bool) (*app, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &app{cfg: cfg, closeLog: func() error { return nil }}
	if tui {
		a.log, a.closeLog, err = logging.NewFile(cfg.LogLevel, cfg.LogFile)
		if err != nil {
			return nil, err
		}
	} else {
		a.log = logging.New(cfg.Env, cfg.LogLevel, cmd.ErrOrStderr())
	}

	path := cfg.SessionFile
	if path == "" {
		path = session.DefaultPath()
	}
	if a.sess, err = session.Load(path); err != nil {
		a.close()
		return nil, err
	}

	host, err := cfg.ResolveAPIHost(cmd.Context(), nil)
	if err != nil {
		a.close()
		return nil, err
	}
	a.client, err = apiclient.New(apiclient.Config{
		BaseURL:     host,
		Timeout:     cfg.SubmitTimeout,
		MaxFailures: cfg.BreakerMaxFailures,
		Token:       a.sess,
		Logger:      a.log,
	})
	if err != nil {
		a.close()
		return nil, err
	}
	a.log.Debug().Str("api", a.client.BaseURL()).Bool("logged_in", a.sess.LoggedIn()).Msg("client ready")
	return a, nil
}

func (a *app) close() {
	if err := a.closeLog(); err != nil {
		fmt.Fprintf(os.Stderr, "closing log file: %v\n", err)
	}
}

// controllerOptions returns the controller settings from configuration.
func (a *app) controllerOptions() intake.Options {
	return intake.Options{
		AdminSecret:   a.cfg.AdminSecretKey,
		SubmitTimeout: a.cfg.SubmitTimeout,
		Logger:        a.log,
	}
}

// registry returns the --registry flag, falling back to the last registry
// used in this session and then to diabetes.
func (a *app) registry(cmd *cobra.Command) (intake.Registry, error) {
	name, _ := cmd.Flags().GetString("registry")
	if strings.TrimSpace(name) == "" {
		name = a.sess.Preference(prefRegistry, string(intake.Diabetes))
	}
	return intake.ParseRegistry(name)
}

// remember stores reg as the default registry of the next commands.
func (a *app) remember(reg intake.Registry) {
	if reg == "" {
		return
	}
	a.sess.SetPreference(prefRegistry, string(reg))
	if err := a.sess.Save(); err != nil {
		a.log.Warn().Err(err).Msg("saving session preferences")
	}
}
