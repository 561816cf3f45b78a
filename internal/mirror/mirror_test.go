package mirror

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUploadFileSkipsMissingLocalFile(t *testing.T) {
	m := NewWithClient(nil, "unused-bucket")
	assert.NotPanics(t, func() {
		m.uploadFile(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"), "key")
	})
}

func TestMirrorBackupsSkipsEmptyDir(t *testing.T) {
	m := NewWithClient(nil, "unused-bucket")
	assert.NotPanics(t, func() {
		m.MirrorBackups(context.Background(), t.TempDir())
	})
}

func TestMirrorBackupsToleratesMissingDir(t *testing.T) {
	m := NewWithClient(nil, "unused-bucket")
	assert.NotPanics(t, func() {
		m.MirrorBackups(context.Background(), filepath.Join(t.TempDir(), "nonexistent"))
	})
}

func TestRunStopsOnContextCancel(t *testing.T) {
	m := NewWithClient(nil, "unused-bucket")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		m.Run(ctx, t.TempDir(), time.Hour)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
