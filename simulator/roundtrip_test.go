package simulator_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ilievs/facelight/config"
	"github.com/ilievs/facelight/core"
	"github.com/ilievs/facelight/device"
	"github.com/ilievs/facelight/dispatch"
	"github.com/ilievs/facelight/notify"
	"github.com/ilievs/facelight/poller"
	"github.com/ilievs/facelight/render"
	. "github.com/ilievs/facelight/simulator"
)

var _ = Describe("Dashboard against the simulated device", func() {
	var (
		ctx      context.Context
		dev      *Device
		srv      *httptest.Server
		requests atomic.Int32

		cell     *core.StateCell
		poll     *poller.Poller
		notifier *notify.Notifier
		table    *dispatch.Table
	)

	BeforeEach(func() {
		ctx = context.Background()
		requests.Store(0)

		dev = NewDevice(config.DefaultMaxFaces, nil)
		handler := NewServer(dev, nil).Handler()
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			handler.ServeHTTP(w, r)
		}))
		DeferCleanup(srv.Close)

		client, err := device.NewClient(srv.URL, 0, nil)
		Expect(err).NotTo(HaveOccurred())

		cell = core.NewStateCell(true)
		poll, err = poller.New(client, cell, nil)
		Expect(err).NotTo(HaveOccurred())

		notifier = notify.New(time.Hour, nil, nil)
		d, err := dispatch.New(client, notifier, poll, nil)
		Expect(err).NotTo(HaveOccurred())
		table = dispatch.NewTable(d)

		Expect(poll.Refresh(ctx)).To(Succeed())
	})

	It("starts from the device defaults", func() {
		Expect(cell.Load()).To(Equal(core.Snapshot{
			Brightness:      50,
			Mode:            core.ModeNormal,
			MaxFaces:        2,
			RegisteredFaces: []string{},
		}))
		Expect(render.Build(cell.Load()).PowerText).To(Equal("OFF"))
	})

	It("reflects a toggle without waiting for the next tick", func() {
		out := table.Handle(ctx, dispatch.ToggleLight())
		Expect(out.Err).NotTo(HaveOccurred())
		Expect(out.Result).To(Equal(core.Result{Success: true, Message: "Light turned ON"}))

		Expect(cell.Load().On).To(BeTrue())
		Expect(render.Build(cell.Load()).PowerText).To(Equal("ON"))
		Expect(notifier.Current().Text).To(Equal("Light turned ON"))
		Expect(notifier.Current().Kind).To(Equal(notify.KindSuccess))
	})

	It("round-trips every brightness level", func() {
		table.Handle(ctx, dispatch.ToggleLight())
		for b := 0; b <= 100; b++ {
			out := table.Handle(ctx, dispatch.BrightnessCommit(b))
			Expect(out.Err).NotTo(HaveOccurred())
			Expect(poll.Refresh(ctx)).To(Succeed())
			Expect(cell.Load().Brightness).To(Equal(b))
		}
	})

	It("rejects an empty name without touching the network", func() {
		before := cell.Load()
		sent := requests.Load()

		out := table.Handle(ctx, dispatch.RegisterFace("   "))
		Expect(out.Err).To(MatchError(dispatch.ErrValidation))

		Expect(requests.Load()).To(Equal(sent))
		Expect(notifier.Current().Text).To(Equal("Please enter a name"))
		Expect(notifier.Current().Kind).To(Equal(notify.KindError))
		Expect(cell.Load()).To(Equal(before))
	})

	It("fails to register once the allowlist is full", func() {
		Expect(table.Handle(ctx, dispatch.RegisterFace("ana")).Result.Success).To(BeTrue())
		Expect(table.Handle(ctx, dispatch.RegisterFace("bob")).Result.Success).To(BeTrue())
		Expect(cell.Load().FaceCount).To(Equal(2))

		out := table.Handle(ctx, dispatch.RegisterFace("cy"))
		Expect(out.Result).To(Equal(core.Result{Success: false, Message: "Maximum 2 faces already registered"}))
		Expect(poll.Refresh(ctx)).To(Succeed())
		Expect(cell.Load().FaceCount).To(Equal(2))
		Expect(notifier.Current().Kind).To(Equal(notify.KindError))
	})

	It("fails to delete an unknown name and keeps the count", func() {
		table.Handle(ctx, dispatch.RegisterFace("ana"))

		table.Handle(ctx, dispatch.RequestDelete("ghost"))
		out := table.Handle(ctx, dispatch.ConfirmDelete())
		Expect(out.Result).To(Equal(core.Result{Success: false, Message: "Face not found"}))

		Expect(poll.Refresh(ctx)).To(Succeed())
		Expect(cell.Load().FaceCount).To(Equal(1))
	})

	It("deletes a name that needs escaping only after confirmation", func() {
		table.Handle(ctx, dispatch.RegisterFace("ana maria"))
		Expect(cell.Load().RegisteredFaces).To(Equal([]string{"ana maria"}))

		row := render.Build(cell.Load()).Faces[0]
		Expect(row.Delete).NotTo(BeNil())
		sent := requests.Load()
		out := table.Handle(ctx, *row.Delete)
		Expect(out.NeedsConfirm).To(BeTrue())
		Expect(requests.Load()).To(Equal(sent))

		out = table.Handle(ctx, dispatch.ConfirmDelete())
		Expect(out.Result).To(Equal(core.Result{Success: true, Message: "Deleted successfully"}))
		Expect(cell.Load().RegisteredFaces).To(BeEmpty())
		Expect(render.Build(cell.Load()).Faces[0].Placeholder).To(BeTrue())
	})

	It("highlights exactly the mode the device reports", func() {
		table.Handle(ctx, dispatch.SelectMode(core.ModeParty))

		var active []core.Mode
		for _, b := range render.Build(cell.Load()).Modes {
			if b.Active {
				active = append(active, b.Mode)
			}
		}
		Expect(active).To(ConsistOf(core.ModeParty))
		Expect(render.Build(cell.Load()).ModeColor).To(Equal(render.ColorRed))
	})

	It("keeps the last snapshot when the device goes away", func() {
		table.Handle(ctx, dispatch.ToggleLight())
		before := cell.Load()

		srv.Close()
		Expect(poll.Refresh(ctx)).NotTo(Succeed())
		Expect(cell.Load()).To(Equal(before))

		out := table.Handle(ctx, dispatch.ToggleLight())
		Expect(out.Err).To(HaveOccurred())
		Expect(notifier.Current().Text).To(Equal(dispatch.MsgTransport))
		Expect(cell.Load()).To(Equal(before))
	})

	It("picks up changes made by other controllers on the next tick", func() {
		ticks := make(chan time.Time)
		sched, err := poller.NewScheduler(2*time.Second, func(ctx context.Context) { _ = poll.Refresh(ctx) },
			func(time.Duration) (<-chan time.Time, func()) { return ticks, func() {} })
		Expect(err).NotTo(HaveOccurred())

		h := sched.Start(ctx)
		DeferCleanup(h.Stop)

		Expect(dev.Execute(core.Command{Name: "clap", Arguments: []string{"2"}})).To(Succeed())
		ticks <- time.Now()

		Eventually(func() core.Mode { return cell.Load().Mode }).Should(Equal(core.ModeParty))
		Eventually(func() bool { return cell.Load().On }).Should(BeTrue())
	})
})
