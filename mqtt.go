package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ilievs/facelight/config"
	"github.com/ilievs/facelight/core"
	"github.com/ilievs/facelight/mqtt"
)

// startMirror republishes every applied snapshot to the configured broker
// until ctx is done. It does nothing when no broker URL is set.
func startMirror(ctx context.Context, cfg config.MQTTConfig, cell *core.StateCell, log logrus.FieldLogger) error {
	if cfg.URL == "" {
		return nil
	}

	pub, err := mqtt.ConnectPaho(ctx, mqtt.PahoOptions{
		URL:      cfg.URL,
		ClientID: cfg.ClientID,
		Username: cfg.Username,
		Password: cfg.Password,
	}, log)
	if err != nil {
		return err
	}

	updates := cell.Subscribe()
	mirror := mqtt.NewMirror(pub, cfg.Topic, log)
	go func() {
		defer cell.Unsubscribe(updates)
		mirror.Run(ctx, updates)

		closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = pub.Close(closeCtx)
	}()
	return nil
}
