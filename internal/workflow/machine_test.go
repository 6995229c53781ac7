package workflow

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/labelscan/internal/cache"
	"github.com/usestring/labelscan/internal/schema"
	"github.com/usestring/labelscan/pkg/types"
)

type fakeSubmitter struct {
	calls atomic.Int32
	gate  chan struct{}
	res   types.Result
	err   error
	ctxOK atomic.Bool
}

func (f *fakeSubmitter) Submit(ctx context.Context, file types.File) (types.Result, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	f.ctxOK.Store(ctx.Err() == nil)
	return f.res, f.err
}

type panickingSubmitter struct{}

func (panickingSubmitter) Submit(context.Context, types.File) (types.Result, error) {
	panic("boom")
}

func samplePDF(t *testing.T) types.File {
	t.Helper()
	f, err := types.NewFile("sample.pdf", []byte("%PDF-1.4\n..."))
	require.NoError(t, err)
	return f
}

func sampleOk() *types.Ok {
	return &types.Ok{
		Allergens: types.Mapping{{Name: "Peanuts", Value: types.Ptr("Yes")}},
		Nutrition: types.Mapping{{Name: "Energy", Value: types.Ptr("250 kcal")}},
		Preview:   "Ingredients: ...",
	}
}

func await(t *testing.T, done <-chan State) State {
	t.Helper()
	select {
	case s := <-done:
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("attempt did not settle")
		return nil
	}
}

func TestSubmit_WithoutFile(t *testing.T) {
	sub := &fakeSubmitter{res: sampleOk()}
	m := New(sub)

	done, err := m.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNoFile)
	assert.Nil(t, done)
	assert.Equal(t, Idle{}, m.State())
	assert.Equal(t, int32(0), sub.calls.Load())
}

func TestSubmit_Succeeds(t *testing.T) {
	history, err := cache.NewHistory(4)
	require.NoError(t, err)

	sub := &fakeSubmitter{res: sampleOk()}
	m := New(sub, WithHistory(history))

	require.NoError(t, m.Select(samplePDF(t)))
	assert.IsType(t, FileSelected{}, m.State())

	done, err := m.Submit(context.Background())
	require.NoError(t, err)

	final := await(t, done)
	s, ok := final.(Succeeded)
	require.True(t, ok, "expected Succeeded, got %T", final)
	assert.Equal(t, "sample.pdf", s.File.Name)
	assert.NotEmpty(t, s.AttemptID)
	assert.Equal(t, final, m.State())

	res, err := m.Succeeded()
	require.NoError(t, err)
	assert.Equal(t, sampleOk(), res)

	got, ok := history.Get(s.AttemptID)
	require.True(t, ok)
	assert.Equal(t, cache.OutcomeSucceeded, got.Outcome)
	assert.Equal(t, "sample.pdf", got.File)
}

func TestSubmit_RejectedWhileUploading(t *testing.T) {
	sub := &fakeSubmitter{res: sampleOk(), gate: make(chan struct{})}
	m := New(sub)
	require.NoError(t, m.Select(samplePDF(t)))

	done, err := m.Submit(context.Background())
	require.NoError(t, err)
	assert.IsType(t, Uploading{}, m.State())
	assert.True(t, Busy(m.State()))

	before := m.State()

	second, err := m.Submit(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.Nil(t, second)
	assert.ErrorIs(t, m.Select(samplePDF(t)), ErrBusy)
	assert.ErrorIs(t, m.Clear(), ErrBusy)
	_, err = m.Succeeded()
	assert.ErrorIs(t, err, ErrNotSucceeded)

	assert.Equal(t, before, m.State())

	close(sub.gate)
	assert.IsType(t, Succeeded{}, await(t, done))
	assert.Equal(t, int32(1), sub.calls.Load())

	// a new attempt is allowed once the first has settled
	done, err = m.Submit(context.Background())
	require.NoError(t, err)
	await(t, done)
	assert.Equal(t, int32(2), sub.calls.Load())
}

func TestSubmit_ServiceError(t *testing.T) {
	sub := &fakeSubmitter{res: &types.ServiceError{Raw: "model timeout"}}
	m := New(sub)
	require.NoError(t, m.Select(samplePDF(t)))

	done, err := m.Submit(context.Background())
	require.NoError(t, err)

	f, ok := await(t, done).(Failed)
	require.True(t, ok)
	assert.Equal(t, "model timeout", f.Result.Raw)

	_, err = m.Succeeded()
	assert.ErrorIs(t, err, ErrNotSucceeded)
}

func TestSubmit_TransportErrorKeepsPriorResult(t *testing.T) {
	sub := &fakeSubmitter{res: sampleOk()}
	m := New(sub)
	require.NoError(t, m.Select(samplePDF(t)))

	done, err := m.Submit(context.Background())
	require.NoError(t, err)
	succeeded := await(t, done)

	sub.res, sub.err = nil, errors.New("upload failed: executing request: connection refused")
	done, err = m.Submit(context.Background())
	require.NoError(t, err)

	te, ok := await(t, done).(TransportError)
	require.True(t, ok)
	assert.Equal(t, "upload failed: executing request: connection refused", te.Message)
	assert.Equal(t, succeeded, te.Prior)

	_, err = m.Succeeded()
	assert.ErrorIs(t, err, ErrNotSucceeded)

	// retrying from a transport error keeps pointing at the last real view
	done, err = m.Submit(context.Background())
	require.NoError(t, err)
	te, ok = await(t, done).(TransportError)
	require.True(t, ok)
	assert.Equal(t, succeeded, te.Prior)
}

func TestSubmit_ValidatorRejectsMalformedOk(t *testing.T) {
	v, err := schema.NewOkValidator()
	require.NoError(t, err)

	sub := &fakeSubmitter{res: &types.Ok{Allergens: types.Mapping{}}}
	m := New(sub, WithValidator(v))
	require.NoError(t, m.Select(samplePDF(t)))

	done, err := m.Submit(context.Background())
	require.NoError(t, err)

	te, ok := await(t, done).(TransportError)
	require.True(t, ok)
	assert.Contains(t, te.Message, "malformed result")
	assert.ErrorIs(t, te.Err, schema.ErrInvalid)
	assert.Equal(t, FileSelected{File: samplePDF(t)}, te.Prior)
}

func TestSubmit_NilResult(t *testing.T) {
	m := New(&fakeSubmitter{})
	require.NoError(t, m.Select(samplePDF(t)))

	done, err := m.Submit(context.Background())
	require.NoError(t, err)
	assert.IsType(t, TransportError{}, await(t, done))
}

func TestSubmit_PanicSettlesAsTransportError(t *testing.T) {
	m := New(panickingSubmitter{})
	require.NoError(t, m.Select(samplePDF(t)))

	done, err := m.Submit(context.Background())
	require.NoError(t, err)

	te, ok := await(t, done).(TransportError)
	require.True(t, ok)
	assert.Contains(t, te.Message, "boom")
}

func TestSubmit_NotCancelledWithCaller(t *testing.T) {
	sub := &fakeSubmitter{res: sampleOk(), gate: make(chan struct{})}
	m := New(sub)
	require.NoError(t, m.Select(samplePDF(t)))

	ctx, cancel := context.WithCancel(context.Background())
	done, err := m.Submit(ctx)
	require.NoError(t, err)
	cancel()
	close(sub.gate)

	assert.IsType(t, Succeeded{}, await(t, done))
	assert.True(t, sub.ctxOK.Load())
}

func TestObserver_SeesTransitionsInOrder(t *testing.T) {
	var mu sync.Mutex
	var seen []string

	m := New(&fakeSubmitter{res: sampleOk()}, WithObserver(func(tr Transition) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, tr.From.Name()+"->"+tr.To.Name())
	}))

	require.NoError(t, m.Select(samplePDF(t)))
	done, err := m.Submit(context.Background())
	require.NoError(t, err)
	await(t, done)
	require.NoError(t, m.Clear())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"idle->file_selected",
		"file_selected->uploading",
		"uploading->succeeded",
		"succeeded->idle",
	}, seen)
}

func TestSelect_DiscardsPriorResult(t *testing.T) {
	m := New(&fakeSubmitter{res: sampleOk()})
	require.NoError(t, m.Select(samplePDF(t)))
	done, err := m.Submit(context.Background())
	require.NoError(t, err)
	await(t, done)

	other, err := types.NewFile("other.pdf", []byte("%PDF-1.7"))
	require.NoError(t, err)
	require.NoError(t, m.Select(other))

	assert.Equal(t, FileSelected{File: other}, m.State())
	_, err = m.Succeeded()
	assert.ErrorIs(t, err, ErrNotSucceeded)
}

func TestSelect_EmptyFile(t *testing.T) {
	m := New(&fakeSubmitter{})
	err := m.Select(types.File{Name: "empty.pdf"})
	assert.ErrorIs(t, err, ErrNoFile)
	assert.ErrorIs(t, err, types.ErrEmptyFile)
	assert.Equal(t, Idle{}, m.State())
}

func TestSubmit_AllowedOnceSettled(t *testing.T) {
	sub := &fakeSubmitter{res: sampleOk()}
	m := New(sub)
	require.NoError(t, m.Select(samplePDF(t)))

	for i := 0; i < 50; i++ {
		done, err := m.Submit(context.Background())
		require.NoError(t, err, "attempt %d", i)
		assert.IsType(t, Succeeded{}, await(t, done))
		assert.False(t, Busy(m.State()))
	}
	assert.Equal(t, int32(50), sub.calls.Load())
}

func TestStateHelpers(t *testing.T) {
	f := types.File{Name: "a.pdf", Content: []byte("%PDF")}

	_, ok := FileOf(Idle{})
	assert.False(t, ok)

	for _, s := range []State{FileSelected{File: f}, Uploading{File: f}, Succeeded{File: f}, Failed{File: f}, TransportError{File: f}} {
		got, ok := FileOf(s)
		assert.True(t, ok, s.Name())
		assert.Equal(t, f, got)
	}

	assert.True(t, Terminal(Failed{}))
	assert.False(t, Terminal(Uploading{}))
	assert.False(t, Busy(Succeeded{}))
}
