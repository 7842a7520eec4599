package eventloop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func runLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = l.Run(ctx)
	}()
	return l, func() {
		cancel()
		wg.Wait()
	}
}

func TestLoop_PostAndCall(t *testing.T) {
	l, stop := runLoop(t)
	defer stop()

	var order []int
	for i := 0; i < 5; i++ {
		l.Post(func() { order = append(order, i) })
	}
	var got []int
	require.NoError(t, l.Call(context.Background(), func() {
		got = append(got, order...)
	}))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestLoop_AfterFuncRunsOnLoop(t *testing.T) {
	l, stop := runLoop(t)
	defer stop()

	done := make(chan struct{})
	l.AfterFunc(5*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestLoop_StopPreventsCallback(t *testing.T) {
	l, stop := runLoop(t)
	defer stop()

	fired := make(chan struct{}, 1)
	timer := l.AfterFunc(50*time.Millisecond, func() { fired <- struct{}{} })
	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	select {
	case <-fired:
		t.Fatal("stopped timer fired")
	case <-time.After(120 * time.Millisecond):
	}
}

func TestLoop_CallCancelled(t *testing.T) {
	l := NewLoop() // never run
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Call(ctx, func() {}), context.Canceled)
}
