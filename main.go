// Command facelight is a terminal dashboard for a face-authorized light.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ilievs/facelight/config"
	"github.com/ilievs/facelight/core"
	"github.com/ilievs/facelight/dispatch"
	"github.com/ilievs/facelight/system"
)

var (
	flagConfig         string
	flagBaseURL        string
	flagPollInterval   int
	flagRequestTimeout int
	flagLooseOrdering  bool
	flagLogLevel       string
	flagLogFile        string
	flagMQTTURL        string
	flagYes            bool

	app = &cobra.Command{
		Use:           `facelight`,
		Short:         "dashboard for a face-authorized light",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runDashboard,
	}

	cmdStatus = &cobra.Command{
		Use:   `status`,
		Short: "print the current device status",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}

	cmdWatch = &cobra.Command{
		Use:   `watch`,
		Short: "poll the device and print every applied snapshot",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}

	cmdToggle = &cobra.Command{
		Use:   `toggle`,
		Short: "toggle the light",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runIntent(c, dispatch.ToggleLight())
		},
	}

	cmdBrightness = &cobra.Command{
		Use:   `brightness <0-100>`,
		Short: "set the brightness",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("brightness must be an integer: %w", err)
			}
			return runIntent(c, dispatch.BrightnessCommit(level))
		},
	}

	cmdMode = &cobra.Command{
		Use:       `mode <Normal|Relaxing|Party>`,
		Short:     "select a lighting mode",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(core.ModeNormal), string(core.ModeRelaxing), string(core.ModeParty)},
		RunE: func(c *cobra.Command, args []string) error {
			return runIntent(c, dispatch.SelectMode(core.Mode(args[0])))
		},
	}

	cmdRegister = &cobra.Command{
		Use:   `register <name>`,
		Short: "register a face under name",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runIntent(c, dispatch.RegisterFace(args[0]))
		},
	}

	cmdDelete = &cobra.Command{
		Use:   `delete <name>`,
		Short: "delete a registered face (requires --yes)",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}
)

func init() {
	flags := app.PersistentFlags()
	flags.StringVarP(&flagConfig, `config`, `c`, ``, `path to the YAML config file`)
	flags.StringVarP(&flagBaseURL, `url`, `u`, config.DefaultBaseURL, `base URL of the device service`)
	flags.IntVar(&flagPollInterval, `poll-interval-ms`, config.DefaultPollIntervalMs, `status poll interval in milliseconds`)
	flags.IntVar(&flagRequestTimeout, `request-timeout-ms`, 0, `per-request timeout in milliseconds (0 = none)`)
	flags.BoolVar(&flagLooseOrdering, `loose-ordering`, false, `apply status responses in arrival order`)
	flags.StringVarP(&flagLogLevel, `log-level`, `L`, config.DefaultLogLevel, `log level, one of: [debug,info,warn,error]`)
	flags.StringVar(&flagLogFile, `log-file`, config.DefaultLogFile, `log file`)
	flags.StringVar(&flagMQTTURL, `mqtt-url`, ``, `MQTT broker to mirror snapshots to (empty disables)`)

	cmdDelete.Flags().BoolVarP(&flagYes, `yes`, `y`, false, `confirm the deletion`)

	app.AddCommand(cmdStatus, cmdWatch, cmdToggle, cmdBrightness, cmdMode, cmdRegister, cmdDelete)
}

func main() {
	ctx, stop := system.WithOsSignal(context.Background())
	err := app.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "facelight:", err)
		os.Exit(1)
	}
}

// loadConfig merges the config file with the flags that were set explicitly.
func loadConfig(c *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	flags := c.Flags()
	if flags.Changed(`url`) {
		cfg.Dashboard.BaseURL = flagBaseURL
	}
	if flags.Changed(`poll-interval-ms`) {
		cfg.Dashboard.PollIntervalMs = flagPollInterval
	}
	if flags.Changed(`request-timeout-ms`) {
		cfg.Dashboard.RequestTimeoutMs = flagRequestTimeout
	}
	if flags.Changed(`loose-ordering`) {
		strict := !flagLooseOrdering
		cfg.Dashboard.StrictOrdering = &strict
	}
	if flags.Changed(`log-level`) {
		cfg.Log.Level = flagLogLevel
	}
	if flags.Changed(`log-file`) {
		cfg.Log.File = flagLogFile
	}
	if flags.Changed(`mqtt-url`) {
		cfg.MQTT.URL = flagMQTTURL
	}

	config.Normalize(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runDelete(c *cobra.Command, args []string) error {
	a, closeApp, err := setup(c)
	if err != nil {
		return err
	}
	defer closeApp()

	ctx := c.Context()
	out := a.table.Handle(ctx, dispatch.RequestDelete(args[0]))
	if !flagYes {
		fmt.Fprintln(c.OutOrStdout(), out.Prompt)
		a.table.Handle(ctx, dispatch.CancelDelete())
		return fmt.Errorf("not deleted: pass --yes to confirm")
	}
	return outcomeError(a.table.Handle(ctx, dispatch.ConfirmDelete()))
}

func outcomeError(out dispatch.Outcome) error {
	if out.Err != nil {
		return out.Err
	}
	if !out.Result.Success {
		return fmt.Errorf("device refused: %s", out.Result.Message)
	}
	return nil
}
