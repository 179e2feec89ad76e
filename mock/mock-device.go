// Command mock-device runs an in-memory light that speaks the device-control
// HTTP contract and accepts detector commands over an embedded MQTT broker.
package main

import (
	"context"
	"os"
	"time"

	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/spf13/cobra"

	"github.com/ilievs/facelight/config"
	"github.com/ilievs/facelight/mqtt"
	"github.com/ilievs/facelight/simulator"
	"github.com/ilievs/facelight/system"
)

var (
	flagConfig       string
	flagListen       string
	flagBrokerListen string
	flagDeviceID     string
	flagMaxFaces     int
	flagLogLevel     string
	flagMQTTUser     string
	flagMQTTPassword string

	app = &cobra.Command{
		Use:          `mock-device`,
		Short:        "simulated face-authorized light",
		SilenceUsage: true,
		RunE:         run,
	}
)

func init() {
	app.Flags().StringVarP(&flagConfig, `config`, `c`, ``, `path to the YAML config file`)
	app.Flags().StringVar(&flagListen, `listen`, config.DefaultSimulatorListen, `HTTP listen address`)
	app.Flags().StringVar(&flagBrokerListen, `broker`, ``, `MQTT listen address, e.g. :1883 (empty disables the broker)`)
	app.Flags().StringVar(&flagDeviceID, `device-id`, config.DefaultDeviceID, `device id used in MQTT topics`)
	app.Flags().IntVar(&flagMaxFaces, `max-faces`, config.DefaultMaxFaces, `size of the face allowlist`)
	app.Flags().StringVarP(&flagLogLevel, `log-level`, `L`, config.DefaultLogLevel, `log level, one of: [debug,info,warn,error]`)
	app.Flags().StringVar(&flagMQTTUser, `mqtt-user`, ``, `username allowed to publish detector commands`)
	app.Flags().StringVar(&flagMQTTPassword, `mqtt-password`, ``, `password for --mqtt-user`)
}

func main() {
	if err := app.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(c *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	flags := c.Flags()
	if flags.Changed(`listen`) {
		cfg.Simulator.Listen = flagListen
	}
	if flags.Changed(`broker`) {
		cfg.Simulator.BrokerListen = flagBrokerListen
	}
	if flags.Changed(`device-id`) {
		cfg.Simulator.DeviceID = flagDeviceID
	}
	if flags.Changed(`max-faces`) {
		cfg.Simulator.MaxFaces = &flagMaxFaces
	}
	if flags.Changed(`log-level`) {
		cfg.Log.Level = flagLogLevel
	}

	config.Normalize(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(c *cobra.Command, args []string) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger, err := system.NewLogger(cfg.Log.Level, os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := system.WithOsSignal(context.Background())
	defer stop()

	sim := cfg.Simulator
	dev := simulator.NewDevice(sim.FaceLimit(), logger)

	if sim.BrokerListen != "" {
		broker := mqtt.NewMochiBroker(mqtt.BrokerOptions{
			Address:  sim.BrokerListen,
			DeviceID: sim.DeviceID,
			Username: flagMQTTUser,
			Password: flagMQTTPassword,
		}, logger)

		err := broker.Start(
			[]mochi.Hook{new(mqtt.CommandHook)},
			[]any{&mqtt.HookOptions{DeviceID: sim.DeviceID, Executor: dev, Log: logger}})
		if err != nil {
			return err
		}
		defer broker.Close()

		stopTrace, err := broker.Trace("command")
		if err != nil {
			return err
		}
		defer stopTrace()

		states := mqtt.NewStatePublisher(broker.Server(), sim.DeviceID, logger)
		dev.OnChange(states.OnChange)
		states.OnChange(dev.Status())
	}

	server := simulator.NewServer(dev, logger)
	errs := make(chan error, 1)
	go func() {
		errs <- server.Start(sim.Listen)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP shutdown")
	}
	return nil
}
