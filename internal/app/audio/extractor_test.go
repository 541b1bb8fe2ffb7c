package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"video-transcriber/internal/app/model"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := NewExtractor(zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestNewExtractorCreatesScopedTempDir(t *testing.T) {
	e := newTestExtractor(t)

	info, err := os.Stat(e.TempDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, e.Close())
	_, err = os.Stat(e.TempDir())
	assert.True(t, os.IsNotExist(err))
}

func TestReleaseRemovesTempFile(t *testing.T) {
	e := newTestExtractor(t)

	path := filepath.Join(e.TempDir(), "clip-abc.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0644))

	stream := &model.AudioStream{Path: path, SampleRate: SampleRate}
	e.Release(stream)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestReleaseNilAndMissingAreNoOps(t *testing.T) {
	e := newTestExtractor(t)
	e.Release(nil)
	e.Release(&model.AudioStream{Path: filepath.Join(e.TempDir(), "never-existed.wav")})
}

func TestRetainMovesIntoOutputDir(t *testing.T) {
	e := newTestExtractor(t)
	outputDir := t.TempDir()

	path := filepath.Join(e.TempDir(), "clip-abc.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0644))

	stream := &model.AudioStream{
		Path:       path,
		SampleRate: SampleRate,
		Source:     model.NewMediaFile("/videos/clip.mp4"),
	}
	require.NoError(t, e.Retain(stream, outputDir))

	data, err := os.ReadFile(filepath.Join(outputDir, "clip.wav"))
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF"), data)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestTail(t *testing.T) {
	assert.Equal(t, "short", tail("short", 300))
	long := make([]byte, 400)
	for i := range long {
		long[i] = 'x'
	}
	got := tail(string(long), 300)
	assert.Len(t, got, 303)
	assert.Equal(t, "...", got[:3])
}

func TestCheckToolchainMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	err := CheckToolchain()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "install ffmpeg")
}
