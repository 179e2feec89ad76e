package poller

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/ilievs/facelight/core"
)

// Poller refreshes the state cell from the device status endpoint. It is the
// only writer of the cell.
type Poller struct {
	api  core.StatusFetcher
	cell *core.StateCell
	log  logrus.FieldLogger
}

func New(api core.StatusFetcher, cell *core.StateCell, log logrus.FieldLogger) (*Poller, error) {
	if api == nil {
		return nil, errors.New("poller: status fetcher required")
	}
	if cell == nil {
		return nil, errors.New("poller: state cell required")
	}
	return &Poller{
		api:  api,
		cell: cell,
		log:  core.OrDiscard(log).WithField("component", "poller"),
	}, nil
}

// Refresh performs exactly one status fetch. On success the snapshot is
// replaced wholesale; on any failure the previous snapshot is kept and the
// failure is only logged.
func (p *Poller) Refresh(ctx context.Context) error {
	seq := p.cell.NextSeq()

	snap, err := p.api.Status(ctx)
	if err != nil {
		p.log.WithFields(logrus.Fields{"seq": seq, "error": err}).Warn("status poll failed")
		return err
	}

	if err := p.cell.Apply(seq, snap); err != nil {
		p.log.WithFields(logrus.Fields{"seq": seq, "last_applied": p.cell.LastApplied()}).Debug("discarding out-of-order status")
		return err
	}
	return nil
}

// RefreshNow is the out-of-cycle refresh requested after a successful command.
func (p *Poller) RefreshNow(ctx context.Context) {
	_ = p.Refresh(ctx)
}
