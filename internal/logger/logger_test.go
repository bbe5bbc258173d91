package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestFileRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skyview.log")

	// 1 MB is the smallest size lumberjack accepts.
	l, err := New(Options{
		Level: "debug",
		File:  FileConfig{Path: path, MaxSizeMB: 1, MaxBackups: 2, MaxAgeDays: 1},
	})
	require.NoError(t, err)
	Replace(l)
	t.Cleanup(InitNop)

	payload := strings.Repeat("p", 200)
	for i := 0; i < 15000; i++ {
		Sugar.Infof("texel batch %d: %s", i, payload)
	}
	Sync()

	_, err = os.Stat(path)
	require.NoError(t, err, "active log file missing")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var rotated []string
	for _, e := range entries {
		name := e.Name()
		if name != "skyview.log" && strings.HasPrefix(name, "skyview-") {
			rotated = append(rotated, name)
		}
	}
	require.NotEmpty(t, rotated, "expected at least one rotated file in %v", entries)
	for _, name := range rotated {
		// lumberjack stamps backups as name-YYYY-MM-DDTHH-MM-SS.mmm.log.
		assert.Contains(t, name, "-20")
		assert.True(t, strings.HasSuffix(name, ".log"), name)
	}
}

func TestLevelFiltering(t *testing.T) {
	cases := map[string][]bool{
		// debug, info, warn, error
		"error": {false, false, false, true},
		"warn":  {false, false, true, true},
		"info":  {false, true, true, true},
		"":      {false, true, true, true},
		"debug": {true, true, true, true},
	}
	for level, want := range cases {
		t.Run("level="+level, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := New(Options{Level: level, Console: &buf})
			require.NoError(t, err)
			Replace(l)
			t.Cleanup(InitNop)

			Debug("rigging regenerated")
			Info("fill started")
			Warn("fill cancelled")
			Error("cannot display")
			Sync()

			out := buf.String()
			for i, tag := range []string{"DEBUG", "INFO", "WARN", "ERROR"} {
				assert.Equal(t, want[i], strings.Contains(out, tag), "%s in output at level %q:\n%s", tag, level, out)
			}
		})
	}
}

func TestParseLevelRejectsUnknown(t *testing.T) {
	lvl, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, lvl)

	_, err = ParseLevel("chatty")
	assert.Error(t, err)

	_, err = New(Options{Level: "chatty"})
	assert.Error(t, err)
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/skyview.log")
	assert.Equal(t, FileConfig{
		Path:       "/tmp/skyview.log",
		MaxSizeMB:  20,
		MaxBackups: 5,
		MaxAgeDays: 14,
		Compress:   true,
	}, cfg)
}

func TestNamedAndFileLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "named.log")
	l, err := New(Options{Level: "info", File: FileConfig{Path: path, MaxSizeMB: 1}})
	require.NoError(t, err)
	Replace(l)
	t.Cleanup(InitNop)

	Named("rigging").Info("generated")
	Sync()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	line := string(content)
	assert.Contains(t, line, "rigging")
	assert.Contains(t, line, "generated")
	assert.NotContains(t, line, "\x1b[", "file output must not carry color codes")
}

func TestNoSinksDiscards(t *testing.T) {
	l, err := New(Options{Level: "debug"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))

	InitNop()
	Info("discarded")
	Debugw("discarded", "key", 1)
	Sync()
}
