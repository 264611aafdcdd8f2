package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/seopilot/internal/services"
)

type recordingProcessor struct {
	tasks []services.ProductTask
	err   error
}

func (p *recordingProcessor) Run(_ context.Context, t services.ProductTask) error {
	p.tasks = append(p.tasks, t)
	return p.err
}

type recordingSync struct {
	services.CatalogSyncService
	synced []string
}

func (s *recordingSync) SyncStore(_ context.Context, id string) error {
	s.synced = append(s.synced, id)
	return nil
}

func TestProductTaskFromMessage(t *testing.T) {
	task, err := ProductTaskFromMessage(redis.XMessage{Values: map[string]any{"job_id": "j", "product_id": "p"}})
	require.NoError(t, err)
	assert.Equal(t, services.ProductTask{JobID: "j", ProductID: "p"}, task)

	_, err = ProductTaskFromMessage(redis.XMessage{Values: map[string]any{"job_id": "j"}})
	assert.ErrorIs(t, err, errBadMessage)
}

func TestHandlers(t *testing.T) {
	proc := &recordingProcessor{}
	err := ProductHandler(proc)(context.Background(), redis.XMessage{Values: map[string]any{"job_id": "j", "product_id": "p"}})
	require.NoError(t, err)
	assert.Len(t, proc.tasks, 1)

	sync := &recordingSync{}
	require.NoError(t, SyncHandler(sync)(context.Background(), redis.XMessage{Values: map[string]any{"store_id": "s"}}))
	assert.Equal(t, []string{"s"}, sync.synced)
	assert.ErrorIs(t, SyncHandler(sync)(context.Background(), redis.XMessage{}), errBadMessage)
}

func TestStreamPool_HandleRecoversPanics(t *testing.T) {
	l, hook := test.NewNullLogger()
	p := &StreamPool{
		Logger: l,
		Handler: func(context.Context, redis.XMessage) error {
			panic("boom")
		},
	}

	assert.NotPanics(t, func() { p.handle(context.Background(), redis.XMessage{ID: "1-0"}) })
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "boom", hook.LastEntry().Data["panic"])
}

func TestStreamPool_HandleLogsErrors(t *testing.T) {
	l, hook := test.NewNullLogger()
	p := &StreamPool{
		Logger:  l,
		Handler: ProductHandler(&recordingProcessor{err: errors.New("failed")}),
	}
	p.handle(context.Background(), redis.XMessage{ID: "1-0", Values: map[string]any{"job_id": "j", "product_id": "p"}})
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "stream message failed", hook.LastEntry().Message)
}

func TestStreamPool_StartRequiresDeps(t *testing.T) {
	assert.Error(t, (&StreamPool{}).Start(context.Background()))
}

func TestProgressChannel(t *testing.T) {
	assert.Equal(t, "seo_job:abc:progress", ProgressChannel("abc"))
}

// cmdRecorder answers every command locally and remembers its name.
type cmdRecorder struct {
	mu   sync.Mutex
	cmds []string
}

func (h *cmdRecorder) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *cmdRecorder) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.cmds = append(h.cmds, cmd.Name())
		return nil
	}
}

func (h *cmdRecorder) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (h *cmdRecorder) names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.cmds...)
}

func recordingPool(t *testing.T, procErr error) (*StreamPool, *cmdRecorder) {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = rdb.Close() })
	rec := &cmdRecorder{}
	rdb.AddHook(rec)
	l, _ := test.NewNullLogger()
	return &StreamPool{
		Redis:   rdb,
		Logger:  l,
		Stream:  ProductStream,
		Group:   "g",
		Handler: ProductHandler(&recordingProcessor{err: procErr}),
	}, rec
}

var productMsg = redis.XMessage{ID: "1-0", Values: map[string]any{"job_id": "j", "product_id": "p"}}

func TestStreamPool_ShutdownLeavesMessagePending(t *testing.T) {
	p, rec := recordingPool(t, fmt.Errorf("run: %w", context.Canceled))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p.process(ctx, productMsg)
	assert.NotContains(t, rec.names(), "xack")
}

func TestStreamPool_FailedMessageIsAcked(t *testing.T) {
	p, rec := recordingPool(t, errors.New("generation failed"))

	p.process(context.Background(), productMsg)
	assert.Equal(t, []string{"xack"}, rec.names())
}

func TestStreamPool_ClaimDisabled(t *testing.T) {
	p, rec := recordingPool(t, nil)
	p.ClaimMinIdle = -1
	p.claimStale(context.Background(), "c-1")
	assert.Empty(t, rec.names())
}

func TestInterrupted(t *testing.T) {
	live := context.Background()
	done, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, interrupted(done, nil))
	assert.False(t, interrupted(live, context.DeadlineExceeded), "per-call timeout with live pool")
	assert.False(t, interrupted(done, errors.New("bad payload")))
	assert.True(t, interrupted(done, fmt.Errorf("wrapped: %w", context.Canceled)))
	assert.True(t, interrupted(done, fmt.Errorf("wrapped: %w", context.DeadlineExceeded)))
}
