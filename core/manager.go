package core

import "context"

// DeviceAPI is the device-control service as seen by the dashboard.
type DeviceAPI interface {
	StatusFetcher

	ToggleLight(ctx context.Context) (Result, error)

	SetBrightness(ctx context.Context, brightness int) (Result, error)

	SetMode(ctx context.Context, mode Mode) (Result, error)

	RegisterFace(ctx context.Context, name string) (Result, error)

	DeleteFace(ctx context.Context, name string) (Result, error)
}

type StatusFetcher interface {
	Status(ctx context.Context) (Snapshot, error)
}
