package qrcapture

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sourceStub управляемый источник кадров.
type sourceStub struct {
	openErr  error
	frameErr error
	closed   atomic.Int32
}

func (s *sourceStub) Open(_ context.Context) error {
	return s.openErr
}

func (s *sourceStub) Frame(_ context.Context) (image.Image, error) {
	if s.frameErr != nil {
		return nil, s.frameErr
	}
	return image.NewGray(image.Rect(0, 0, 1, 1)), nil
}

func (s *sourceStub) Close() error {
	s.closed.Add(1)
	return nil
}

// decoderStub находит код начиная с кадра hitAfter.
type decoderStub struct {
	hitAfter int
	text     string
	frames   atomic.Int32
}

func (d *decoderStub) Decode(_ image.Image) (string, bool) {
	n := int(d.frames.Add(1))
	if d.hitAfter > 0 && n >= d.hitAfter {
		return d.text, true
	}
	return "", false
}

func TestCapture_Run_Success(t *testing.T) {
	source := &sourceStub{}
	decoder := &decoderStub{hitAfter: 3, text: "vless://example"}
	capture := New(source, decoder, time.Millisecond)

	text, err := capture.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "vless://example", text)
	// камера освобождается ровно один раз
	assert.Equal(t, int32(1), source.closed.Load())
}

func TestCapture_Run_Cancel(t *testing.T) {
	source := &sourceStub{}
	decoder := &decoderStub{} // код не находится никогда
	capture := New(source, decoder, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	text, err := capture.Run(ctx)

	// отмена не ошибка: пустой результат без err
	require.NoError(t, err)
	assert.Equal(t, "", text)
	assert.Equal(t, int32(1), source.closed.Load())
}

func TestCapture_Run_NoCamera(t *testing.T) {
	source := &sourceStub{openErr: errors.New("device busy")}
	capture := New(source, &decoderStub{}, time.Millisecond)

	_, err := capture.Run(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoCamera))
}

func TestCapture_Run_FrameFailuresAreTolerated(t *testing.T) {
	source := &sourceStub{frameErr: errors.New("glitch")}
	decoder := &decoderStub{hitAfter: 1, text: "vless://example"}
	capture := New(source, decoder, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	// кадры не читаются, но цикл не падает и завершается по отмене
	text, err := capture.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", text)
	assert.Equal(t, int32(0), decoder.frames.Load())
}

func TestZXingDecoder_NotFound(t *testing.T) {
	decoder := NewZXingDecoder()

	// пустой кадр не содержит кода
	_, ok := decoder.Decode(image.NewGray(image.Rect(0, 0, 32, 32)))
	assert.False(t, ok)
}
