package audioio_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xiaoschannel/adaptive-roleplay-openai-tts/pkg/audioio"
)

func TestConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := audioio.DefaultConfig()
		require.NoError(t, cfg.Validate())
		require.Equal(t, 24000, cfg.SampleRate)
		require.Equal(t, 1, cfg.Channels)
		require.Equal(t, 1024, cfg.FrameSamples)
		require.Equal(t, 2048, cfg.FrameBytes())
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		cfg := audioio.DefaultConfig()
		cfg.SampleRate = 0
		require.Error(t, cfg.Validate())

		cfg = audioio.DefaultConfig()
		cfg.FrameSamples = -1
		require.Error(t, cfg.Validate())
	})
}

func TestMockSource(t *testing.T) {
	ctx := context.Background()
	cfg := audioio.DefaultConfig()
	cfg.Backend = audioio.BackendMock

	t.Run("reads fixed-size frames", func(t *testing.T) {
		src := audioio.NewMockSource(cfg, nil)
		require.NoError(t, src.Start(ctx))

		frame, err := src.Read(ctx)
		require.NoError(t, err)
		require.Len(t, frame, cfg.FrameBytes())
		require.Equal(t, int64(1), src.FramesRead())
	})

	t.Run("sine wave produces non-silent frames", func(t *testing.T) {
		src := audioio.NewMockSource(cfg, nil, audioio.WithSineWave(440, 0.5))
		require.NoError(t, src.Start(ctx))

		frame, err := src.Read(ctx)
		require.NoError(t, err)
		require.NotEqual(t, make([]byte, cfg.FrameBytes()), frame)
	})

	t.Run("read after close returns EOF", func(t *testing.T) {
		src := audioio.NewMockSource(cfg, nil)
		require.NoError(t, src.Start(ctx))
		require.NoError(t, src.Close())

		_, err := src.Read(ctx)
		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("close is released exactly once", func(t *testing.T) {
		src := audioio.NewMockSource(cfg, nil)
		require.NoError(t, src.Close())
		require.NoError(t, src.Close())
		require.Equal(t, int64(1), src.CloseCount())
	})

	t.Run("cancelled context stops reads", func(t *testing.T) {
		src := audioio.NewMockSource(cfg, nil)
		require.NoError(t, src.Start(ctx))

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := src.Read(cancelled)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestMockSink(t *testing.T) {
	ctx := context.Background()
	cfg := audioio.DefaultConfig()

	t.Run("records played audio", func(t *testing.T) {
		sink := audioio.NewMockSink(cfg, nil)
		require.NoError(t, sink.Play(ctx, bytes.NewReader([]byte{1, 2, 3, 4})))

		played := sink.Played()
		require.Len(t, played, 1)
		require.Equal(t, []byte{1, 2, 3, 4}, played[0])
	})

	t.Run("play after close fails", func(t *testing.T) {
		sink := audioio.NewMockSink(cfg, nil)
		require.NoError(t, sink.Close())
		require.Error(t, sink.Play(ctx, bytes.NewReader(nil)))
	})
}

func TestFactory(t *testing.T) {
	t.Run("mock backend", func(t *testing.T) {
		cfg := audioio.DefaultConfig()
		cfg.Backend = audioio.BackendMock

		src, err := audioio.NewSource(cfg, nil)
		require.NoError(t, err)
		require.Equal(t, "mock", src.Name())

		sink, err := audioio.NewSink(cfg, nil)
		require.NoError(t, err)
		require.Equal(t, "mock", sink.Name())
	})

	t.Run("invalid config rejected", func(t *testing.T) {
		cfg := audioio.DefaultConfig()
		cfg.SampleRate = 0
		_, err := audioio.NewSource(cfg, nil)
		require.Error(t, err)
	})

	t.Run("unknown backend rejected", func(t *testing.T) {
		cfg := audioio.DefaultConfig()
		cfg.Backend = audioio.Backend("coreaudio")
		_, err := audioio.NewSink(cfg, nil)
		require.Error(t, err)
	})
}
