package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grefstad/shrinkfit/internal/config"
	"github.com/grefstad/shrinkfit/internal/planner"
	"github.com/grefstad/shrinkfit/internal/probe"
)

// fakeProbe returns canned metadata keyed by base name; paths not in the
// map fail like an unreadable container would.
func fakeProbe(results map[string]*probe.Result) Prober {
	return func(_ context.Context, path string) (*probe.Result, error) {
		if r, ok := results[filepath.Base(path)]; ok {
			return r, nil
		}
		return nil, errors.New("ffprobe: invalid data found")
	}
}

func movieResult(durationSec float64, audioBps int64) *probe.Result {
	return &probe.Result{
		Format: probe.FormatInfo{Duration: durationSec},
		PrimaryVideo: &probe.VideoStream{
			Codec: "h264", Width: 1920, Height: 1080, ColorTransfer: "bt709",
		},
		AudioStreams: []probe.AudioStream{{Codec: "ac3", BitRate: audioBps}},
	}
}

func newTestDriver(t *testing.T, cfg *config.Config, enc Encoder, results map[string]*probe.Result) *Driver {
	t.Helper()
	return &Driver{
		Cfg:   cfg,
		Probe: fakeProbe(results),
		Orch: &Orchestrator{
			Cfg:  cfg,
			Enc:  enc,
			Disp: &recordingDisposer{},
			Log:  zerolog.Nop(),
		},
		Log: zerolog.Nop(),
	}
}

func testRunCfg(root string) *config.Config {
	cfg := config.Default()
	cfg.Root = root
	cfg.SizeThresholdBytes = 1
	cfg.Action = config.ActionDelete
	return &cfg
}

func TestRun_DryRunNeverInvokesEncoder(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "movie.mkv", 2048)

	cfg := testRunCfg(dir)
	cfg.Action = config.ActionDryRun
	enc := &fakeEncoder{}
	d := newTestDriver(t, cfg, enc, map[string]*probe.Result{
		"movie.mkv": movieResult(7200, 1_536_000),
	})

	stats := d.Run(context.Background())

	assert.Empty(t, enc.passes, "dry run must not start any encoder pass")
	assert.Equal(t, 1, stats.Skipped)
	assert.Zero(t, stats.Converted)
	assert.FileExists(t, filepath.Join(dir, "movie.mkv"))
	assert.NoFileExists(t, filepath.Join(dir, "movie-shrunk.mkv"))
}

func TestRun_ProbeFailureSkipsAndContinues(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "bad.mkv", 2048)
	touch(t, dir, "good.mkv", 2048)

	cfg := testRunCfg(dir)
	enc := &fakeEncoder{}
	d := newTestDriver(t, cfg, enc, map[string]*probe.Result{
		"good.mkv": movieResult(7200, 1_536_000),
	})

	stats := d.Run(context.Background())

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Converted)
}

func TestRun_BudgetExhaustedSkips(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "movie.mkv", 2048)

	cfg := testRunCfg(dir)
	enc := &fakeEncoder{}
	d := newTestDriver(t, cfg, enc, map[string]*probe.Result{
		"movie.mkv": movieResult(7200, 20_000_000),
	})

	stats := d.Run(context.Background())

	assert.Equal(t, 1, stats.Skipped)
	assert.Empty(t, enc.passes)
}

func TestRun_FailedFileDoesNotStopBatch(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.mkv", 2048)
	touch(t, dir, "b.mkv", 2048)

	cfg := testRunCfg(dir)
	// Fail every pass 1: both files are abandoned, batch still visits both.
	enc := &fakeEncoder{failPass: 1}
	d := newTestDriver(t, cfg, enc, map[string]*probe.Result{
		"a.mkv": movieResult(7200, 1_536_000),
		"b.mkv": movieResult(7200, 1_536_000),
	})

	stats := d.Run(context.Background())

	assert.Equal(t, 2, stats.Failed)
	assert.Zero(t, stats.Converted)
}

func TestRun_SkipExistingOutput(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "movie.mkv", 2048)
	touch(t, dir, "movie-shrunk.mkv", 2048)

	cfg := testRunCfg(dir)
	enc := &fakeEncoder{}
	d := newTestDriver(t, cfg, enc, map[string]*probe.Result{
		"movie.mkv": movieResult(7200, 1_536_000),
	})

	stats := d.Run(context.Background())

	assert.Equal(t, 1, stats.Skipped)
	assert.Empty(t, enc.passes)
}

func TestRun_ConcurrentJobsProcessAllFiles(t *testing.T) {
	dir := t.TempDir()
	results := make(map[string]*probe.Result)
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("movie%d.mkv", i)
		touch(t, dir, name, 2048)
		results[name] = movieResult(7200, 1_536_000)
	}

	cfg := testRunCfg(dir)
	cfg.Jobs = 4
	d := newTestDriver(t, cfg, &concurrentSafeEncoder{}, results)

	stats := d.Run(context.Background())

	require.Equal(t, 8, stats.Total)
	assert.Equal(t, 8, stats.Converted)
}

// concurrentSafeEncoder is a stateless fake usable from multiple worker
// goroutines; it mimics ffmpeg's artifacts like fakeEncoder but records
// nothing.
type concurrentSafeEncoder struct{}

func (concurrentSafeEncoder) Run(_ context.Context, job *planner.EncodeJob, pass int) error {
	writeFile(job.LogFileBase+"-0.log", 128)
	writeFile(job.LogFileBase+"-0.log.mbtree", 128)
	if pass == 2 {
		writeFile(job.OutputPath, minOutputSize+1)
	}
	return nil
}

// blockingEncoder mimics a long-running ffmpeg process: it writes its log
// artifacts, then holds its pass open until the context is cancelled.
type blockingEncoder struct {
	mu      sync.Mutex
	started chan struct{}
	passes  []int
}

func (e *blockingEncoder) Run(ctx context.Context, job *planner.EncodeJob, pass int) error {
	e.mu.Lock()
	e.passes = append(e.passes, pass)
	e.mu.Unlock()

	writeFile(job.LogFileBase+"-0.log", 128)
	writeFile(job.LogFileBase+"-0.log.mbtree", 128)

	close(e.started)
	<-ctx.Done()
	return ctx.Err()
}

func TestRun_CancellationTerminatesEncoderAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	results := make(map[string]*probe.Result)
	for _, name := range []string{"a.mkv", "b.mkv", "c.mkv"} {
		touch(t, dir, name, 2048)
		results[name] = movieResult(7200, 1_536_000)
	}

	cfg := testRunCfg(dir)
	enc := &blockingEncoder{started: make(chan struct{})}
	d := newTestDriver(t, cfg, enc, results)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-enc.started
		cancel()
	}()

	stats := d.Run(ctx)

	// The in-flight file fails its pass; nothing converts.
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Failed)
	assert.Zero(t, stats.Converted)

	// Only the first file's analysis pass ever started; files queued behind
	// the cancelled context are never handed to the encoder.
	assert.Equal(t, []int{1}, enc.passes)

	// The abandoned pass left no two-pass artifacts behind.
	assertNoLogArtifacts(t, &planner.EncodeJob{
		LogFileBase: planner.LogFileBase(filepath.Join(dir, "a.mkv")),
	})
	assert.NoFileExists(t, filepath.Join(dir, "a-shrunk.mkv"))
}
