package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ilievs/facelight/core"
)

func TestBrightnessInputOnlyUpdatesReadout(t *testing.T) {
	f := newFixture(t)
	tbl := NewTable(f.d)

	for _, v := range []int{10, 11, 12, 13} {
		out := tbl.Handle(ctx, BrightnessInput(v))
		assert.Equal(t, BrightnessReadout(v), out.Readout)
		assert.False(t, out.Sent)
	}
	f.api.AssertNotCalled(t, "SetBrightness", mock.Anything, mock.Anything)
	assert.Empty(t, f.notifier.shown)
}

func TestBrightnessCommitSends(t *testing.T) {
	f := newFixture(t)
	f.api.On("SetBrightness", ctx, 35).Return(core.Result{Success: true, Message: "Brightness set to 35%"}, nil)
	tbl := NewTable(f.d)

	out := tbl.Handle(ctx, BrightnessCommit(35))
	assert.True(t, out.Sent)
	assert.Equal(t, "35%", out.Readout)
	assert.Equal(t, 1, f.refresher.calls)
}

func TestSelectModeReRequestsSameMode(t *testing.T) {
	f := newFixture(t)
	f.api.On("SetMode", ctx, core.ModeNormal).Return(core.Result{Success: true, Message: "Mode set to Normal"}, nil).Twice()
	tbl := NewTable(f.d)

	tbl.Handle(ctx, SelectMode(core.ModeNormal))
	tbl.Handle(ctx, SelectMode(core.ModeNormal))
	assert.Equal(t, 2, f.refresher.calls)
}

func TestDeleteFlowNeedsConfirmation(t *testing.T) {
	f := newFixture(t)
	f.api.On("DeleteFace", ctx, "ana").Return(core.Result{Success: true, Message: "Deleted successfully"}, nil).Once()
	tbl := NewTable(f.d)

	out := tbl.Handle(ctx, RequestDelete("ana"))
	assert.True(t, out.NeedsConfirm)
	assert.Equal(t, "Delete face 'ana'? (y/n)", out.Prompt)
	assert.False(t, out.Sent)
	name, ok := tbl.PendingDelete()
	require.True(t, ok)
	assert.Equal(t, "ana", name)
	f.api.AssertNotCalled(t, "DeleteFace", mock.Anything, mock.Anything)

	out = tbl.Handle(ctx, ConfirmDelete())
	assert.True(t, out.Sent)
	assert.True(t, out.Result.Success)

	_, ok = tbl.PendingDelete()
	assert.False(t, ok)
}

func TestCancelDeleteSendsNothing(t *testing.T) {
	f := newFixture(t)
	tbl := NewTable(f.d)

	tbl.Handle(ctx, RequestDelete("ana"))
	tbl.Handle(ctx, CancelDelete())

	out := tbl.Handle(ctx, ConfirmDelete())
	assert.ErrorIs(t, out.Err, ErrUnconfirmed)
	f.api.AssertNotCalled(t, "DeleteFace", mock.Anything, mock.Anything)
}

func TestRegisterEmptyNameThroughTable(t *testing.T) {
	f := newFixture(t)
	tbl := NewTable(f.d)

	out := tbl.Handle(ctx, RegisterFace("   "))
	assert.ErrorIs(t, out.Err, ErrValidation)
	assert.False(t, out.Sent)
	assert.Equal(t, MsgEmptyName, f.notifier.shown[0].text)
}

func TestRefreshIntentPolls(t *testing.T) {
	f := newFixture(t)
	tbl := NewTable(f.d)

	out := tbl.Handle(ctx, Refresh())
	assert.NoError(t, out.Err)
	assert.Equal(t, 1, f.refresher.calls)
}
