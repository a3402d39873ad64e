package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yarhoo/ConcurrentQueue/queue"
)

func TestRun_AllImplementations(t *testing.T) {
	var buf bytes.Buffer
	err := run(context.Background(), []string{
		"-impl", "all",
		"-producers", "4",
		"-consumers", "4",
		"-n", "200",
		"-per-consumer", "200",
	}, &buf)
	require.NoError(t, err, buf.String())

	out := buf.String()
	for _, kind := range allKinds {
		assert.Contains(t, out, `"impl":"`+string(kind)+`"`)
	}
	assert.Equal(t, len(allKinds), strings.Count(out, `"msg":"verified"`), out)
}

func TestRun_MarkedDrain(t *testing.T) {
	var buf bytes.Buffer
	err := run(context.Background(), []string{
		"-impl", "spin,lockfree",
		"-marked",
		"-n", "100",
		"-backoff", "0s",
		"-log-level", "debug",
	}, &buf)
	require.NoError(t, err, buf.String())
}

func TestRun_BadFlags(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"UnknownImpl", []string{"-impl", "ring"}},
		{"UnknownLevel", []string{"-log-level", "loud"}},
		{"NoProducers", []string{"-producers", "0"}},
		{"UnknownFlag", []string{"-bogus"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			assert.Error(t, run(context.Background(), tc.args, &buf))
		})
	}
}

func TestParseKinds(t *testing.T) {
	kinds, err := parseKinds("all")
	require.NoError(t, err)
	assert.Equal(t, allKinds, kinds)

	kinds, err = parseKinds("stack, blocking")
	require.NoError(t, err)
	assert.Equal(t, []queue.Kind{queue.KindStack, queue.KindBlocking}, kinds)
}

func TestNewQueue(t *testing.T) {
	for _, kind := range allKinds {
		q, err := newQueue(kind, -1, nil)
		require.NoError(t, err)
		require.NoError(t, q.Add(1))
		v, ok := q.Remove()
		assert.True(t, ok)
		assert.Equal(t, 1, v)
	}

	_, err := newQueue("ring", 0, nil)
	assert.Error(t, err)
}

func TestRun_ConfigFileAndReport(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "runs.toml")
	reportPath := filepath.Join(dir, "report.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
impl = "lockfree,stack"
producers = 3
consumers = 2
n = 50
marked = true
backoff = "1us"
`), 0o644))

	var buf bytes.Buffer
	err := run(context.Background(), []string{
		"-config", cfgPath,
		"-consumers", "5",
		"-report", reportPath,
	}, &buf)
	require.NoError(t, err, buf.String())

	b, err := os.ReadFile(reportPath)
	require.NoError(t, err)

	var rep report
	require.NoError(t, json.Unmarshal(b, &rep))
	assert.Equal(t, 3, rep.Producers)
	assert.Equal(t, 5, rep.Consumers, "command line overrides the file")
	assert.True(t, rep.Marked)
	require.Len(t, rep.Runs, 2)
	assert.Equal(t, queue.KindLockFree, rep.Runs[0].Impl)
	assert.Equal(t, queue.KindStack, rep.Runs[1].Impl)
	for _, r := range rep.Runs {
		assert.Equal(t, 150, r.Values)
		assert.Empty(t, r.Error)
	}
}

func TestApplyConfigFile_UnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("threads = 4\n"), 0o644))

	var buf bytes.Buffer
	err := run(context.Background(), []string{"-config", path}, &buf)
	assert.ErrorContains(t, err, `unknown key "threads"`)
}
