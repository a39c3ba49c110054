package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingWorker struct {
	name     string
	startErr error
	started  bool
	stopped  bool
}

func (w *recordingWorker) Start(context.Context) error { w.started = true; return w.startErr }
func (w *recordingWorker) Stop()                       { w.stopped = true }
func (w *recordingWorker) Name() string                { return w.name }

func TestManagerStartsAndStopsWorkers(t *testing.T) {
	m := NewManager(zap.NewNop())

	a := &recordingWorker{name: "a"}
	b := &recordingWorker{name: "b"}
	m.Register(a)
	m.Register(b)

	require.NoError(t, m.StartAll(context.Background()))
	assert.True(t, a.started)
	assert.True(t, b.started)

	m.StopAll()
	assert.True(t, a.stopped)
	assert.True(t, b.stopped)
}

func TestManagerStartAllFailsFast(t *testing.T) {
	m := NewManager(zap.NewNop())

	a := &recordingWorker{name: "a", startErr: errors.New("boom")}
	b := &recordingWorker{name: "b"}
	m.Register(a)
	m.Register(b)

	err := m.StartAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worker a")
	assert.False(t, b.started)
}
