package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coolbeans/lawlink/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputFiles(t *testing.T) {
	cfg := &config.BatchConfig{Documents: []config.DocumentSpec{
		{Name: "b", Source: "/data/b.txt", Rows: "/data/rows.csv"},
		{Name: "a", Source: "/data/a.txt", Rows: "/data/./rows.csv", Page: "/data/a.html"},
	}}

	assert.Equal(t, []string{"/data/a.html", "/data/a.txt", "/data/b.txt", "/data/rows.csv"}, InputFiles(cfg))
}

func TestWatchRerunsOnChange(t *testing.T) {
	cfg := writeBatch(t)
	cfg.Documents = cfg.Documents[:1]

	reports := make(chan *Report, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- quietRunner().Watch(ctx, cfg, "", 50*time.Millisecond, func(r *Report) { reports <- r })
	}()

	select {
	case report := <-reports:
		assert.Equal(t, 1, report.Linked)
	case <-time.After(5 * time.Second):
		t.Fatal("initial run did not finish")
	}

	source := cfg.Documents[0].Source
	require.NoError(t, os.WriteFile(source, []byte(enforcementDecree+"\n제3조(시행) 공포한 날부터 시행한다."), 0644))

	select {
	case report := <-reports:
		assert.Equal(t, 7, report.Entries[0].Nodes)
	case <-time.After(5 * time.Second):
		t.Fatal("change did not trigger a run")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatchFailsOnMissingDirectory(t *testing.T) {
	cfg := &config.BatchConfig{Documents: []config.DocumentSpec{
		{Name: "a", Source: filepath.Join(t.TempDir(), "gone", "a.txt"), Rows: "rows.csv"},
	}}

	err := quietRunner().Watch(context.Background(), cfg, "", 0, nil)
	assert.Error(t, err)
}
