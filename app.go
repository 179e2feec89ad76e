package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ilievs/facelight/config"
	"github.com/ilievs/facelight/core"
	"github.com/ilievs/facelight/device"
	"github.com/ilievs/facelight/dispatch"
	"github.com/ilievs/facelight/notify"
	"github.com/ilievs/facelight/poller"
	"github.com/ilievs/facelight/system"
	"github.com/ilievs/facelight/tui"
)

// App holds the wired dashboard core.
type App struct {
	cfg      *config.Config
	log      logrus.FieldLogger
	cell     *core.StateCell
	poller   *poller.Poller
	notifier *notify.Notifier
	table    *dispatch.Table
}

func NewApp(cfg *config.Config, log logrus.FieldLogger) (*App, error) {
	dash := cfg.Dashboard

	client, err := device.NewClient(dash.BaseURL, dash.RequestTimeout(), log)
	if err != nil {
		return nil, err
	}

	cell := core.NewStateCell(dash.Strict())
	p, err := poller.New(client, cell, log)
	if err != nil {
		return nil, err
	}

	notifier := notify.New(dash.NotificationTTL(), nil, log)
	d, err := dispatch.New(client, notifier, p, log)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:      cfg,
		log:      log,
		cell:     cell,
		poller:   p,
		notifier: notifier,
		table:    dispatch.NewTable(d),
	}, nil
}

// StartPolling refreshes now and then on every poll interval until the
// returned handle is stopped or ctx is done.
func (a *App) StartPolling(ctx context.Context) (*poller.Handle, error) {
	sched, err := poller.NewScheduler(a.cfg.Dashboard.PollInterval(), a.poller.RefreshNow, nil)
	if err != nil {
		return nil, err
	}
	return sched.Start(ctx), nil
}

// setup loads config, opens the log file and wires the App. The returned
// func releases the log file.
func setup(c *cobra.Command) (*App, func(), error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}

	logger, logFile, err := system.NewFileLogger(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, nil, err
	}

	a, err := NewApp(cfg, logger)
	if err != nil {
		logFile.Close()
		return nil, nil, err
	}
	logger.WithFields(logrus.Fields{
		"base_url":         cfg.Dashboard.BaseURL,
		"poll_interval_ms": cfg.Dashboard.PollIntervalMs,
		"strict_ordering":  cfg.Dashboard.Strict(),
	}).Info("dashboard configured")

	return a, func() { logFile.Close() }, nil
}

func runDashboard(c *cobra.Command, args []string) error {
	a, closeApp, err := setup(c)
	if err != nil {
		return err
	}
	defer closeApp()

	ctx, cancel := context.WithCancel(c.Context())
	defer cancel()

	if err := startMirror(ctx, a.cfg.MQTT, a.cell, a.log); err != nil {
		return err
	}

	updates := a.cell.Subscribe()
	defer a.cell.Unsubscribe(updates)
	notes := tui.NotificationFeed(a.notifier)

	handle, err := a.StartPolling(ctx)
	if err != nil {
		return err
	}
	defer handle.Stop()

	model := tui.New(ctx, a.table, a.cell.Load(), updates, notes)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return err
	}
	return nil
}

func runStatus(c *cobra.Command, args []string) error {
	a, closeApp, err := setup(c)
	if err != nil {
		return err
	}
	defer closeApp()

	if err := a.poller.Refresh(c.Context()); err != nil {
		return err
	}
	return printSnapshot(c.OutOrStdout(), a.cell.Load())
}

func runWatch(c *cobra.Command, args []string) error {
	a, closeApp, err := setup(c)
	if err != nil {
		return err
	}
	defer closeApp()

	ctx := c.Context()
	if err := startMirror(ctx, a.cfg.MQTT, a.cell, a.log); err != nil {
		return err
	}

	updates := a.cell.Subscribe()
	defer a.cell.Unsubscribe(updates)

	handle, err := a.StartPolling(ctx)
	if err != nil {
		return err
	}
	defer handle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-updates:
			if err := printSnapshot(c.OutOrStdout(), s); err != nil {
				return err
			}
		}
	}
}

// runIntent handles one intent and prints the resulting notification.
func runIntent(c *cobra.Command, in dispatch.Intent) error {
	a, closeApp, err := setup(c)
	if err != nil {
		return err
	}
	defer closeApp()

	out := c.OutOrStdout()
	a.notifier.OnChange(func(m notify.Message) {
		if m.Visible {
			fmt.Fprintf(out, "[%s] %s\n", m.Kind, m.Text)
		}
	})

	return outcomeError(a.table.Handle(c.Context(), in))
}

func printSnapshot(w io.Writer, s core.Snapshot) error {
	return json.NewEncoder(w).Encode(s)
}
