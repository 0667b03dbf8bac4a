package advisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisor/pkg/advisor/adverr"
	"advisor/pkg/logx"
)

// fakeClient fails a fixed number of times before succeeding.
type fakeClient struct {
	calls    atomic.Int32
	failures int
	err      error
	content  string
}

func (f *fakeClient) ModelName() string { return "fake" }

func (f *fakeClient) Complete(_ context.Context, _ CompletionRequest) (CompletionResponse, error) {
	n := f.calls.Add(1)
	if int(n) <= f.failures {
		return CompletionResponse{}, f.err
	}
	return CompletionResponse{Content: f.content}, nil
}

func retryUnderTest(c Client) Client {
	return Chain(c, WithRetry(logx.NewLogger("test")))
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	fake := &fakeClient{
		failures: 2,
		err:      adverr.NewError(adverr.ErrorTypeTransient, "connection reset"),
		content:  "ok",
	}

	resp, err := retryUnderTest(fake).Complete(context.Background(), NewCompletionRequest(
		[]CompletionMessage{NewUserMessage("hello")}))
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, int32(3), fake.calls.Load())
}

func TestRetryStopsOnAuthError(t *testing.T) {
	fake := &fakeClient{
		failures: 10,
		err:      adverr.NewError(adverr.ErrorTypeAuth, "bad key"),
	}

	_, err := retryUnderTest(fake).Complete(context.Background(), NewCompletionRequest(
		[]CompletionMessage{NewUserMessage("hello")}))
	require.Error(t, err)
	assert.Equal(t, int32(1), fake.calls.Load())
	assert.True(t, adverr.Is(err, adverr.ErrorTypeAuth))
}

func TestRetryRespectsContextCancellation(t *testing.T) {
	fake := &fakeClient{
		failures: 10,
		err:      adverr.NewError(adverr.ErrorTypeRateLimit, "429"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := retryUnderTest(fake).Complete(ctx, NewCompletionRequest(
		[]CompletionMessage{NewUserMessage("hello")}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestFallbackCascade(t *testing.T) {
	broken := &fakeClient{
		failures: 100,
		err:      adverr.NewError(adverr.ErrorTypeAuth, "bad key"),
	}
	working := &fakeClient{content: "from backup"}

	client, err := NewFallbackClient(logx.NewLogger("test"), broken, working)
	require.NoError(t, err)

	resp, err := client.Complete(context.Background(), NewCompletionRequest(
		[]CompletionMessage{NewUserMessage("hello")}))
	require.NoError(t, err)
	assert.Equal(t, "from backup", resp.Content)
}

func TestFallbackAllFail(t *testing.T) {
	a := &fakeClient{failures: 100, err: adverr.NewError(adverr.ErrorTypeTransient, "502")}
	b := &fakeClient{failures: 100, err: adverr.NewError(adverr.ErrorTypeRateLimit, "429")}

	client, err := NewFallbackClient(logx.NewLogger("test"), a, b)
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), NewCompletionRequest(
		[]CompletionMessage{NewUserMessage("hello")}))
	require.Error(t, err)
	assert.True(t, adverr.Is(err, adverr.ErrorTypeRateLimit))
}
