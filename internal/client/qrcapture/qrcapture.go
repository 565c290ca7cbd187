// Package qrcapture реализует модальный цикл сканирования QR-кода:
// покадровый опрос источника видео и передачу кадров внешнему декодеру
// до первого распознанного результата или отмены. Камера освобождается
// ровно один раз на любом пути выхода.
package qrcapture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
)

// ErrNoCamera источник видео недоступен.
var ErrNoCamera = errors.New("qrcapture: camera is unavailable")

// defaultInterval частота опроса кадров, примерно кадр на обновление экрана.
const defaultInterval = time.Second / 30

// Source источник кадров (камера).
type Source interface {
	// Open захватывает устройство
	Open(ctx context.Context) error
	// Frame возвращает текущий кадр
	Frame(ctx context.Context) (image.Image, error)
	// Close освобождает устройство; допускается повторный вызов
	Close() error
}

// Decoder внешняя возможность распознавания. Второе значение сообщает,
// найден ли код в кадре; собственного алгоритма распознавания здесь нет.
type Decoder interface {
	Decode(img image.Image) (string, bool)
}

// Capture одноразовый цикл сканирования.
type Capture struct {
	source   Source
	decoder  Decoder
	interval time.Duration
	release  sync.Once
}

// New создает цикл сканирования. Нулевой interval заменяется частотой
// обновления экрана.
func New(source Source, decoder Decoder, interval time.Duration) *Capture {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Capture{
		source:   source,
		decoder:  decoder,
		interval: interval,
	}
}

// Run крутит цикл до результата или отмены. Отмена контекста (кнопка
// закрытия или клик по подложке сводятся к ней) возвращает пустую
// строку без ошибки. Камера освобождается на каждом пути выхода.
func (c *Capture) Run(ctx context.Context) (string, error) {
	if err := c.source.Open(ctx); err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoCamera, err)
	}
	defer c.stop()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", nil
		case <-ticker.C:
		}

		frame, err := c.source.Frame(ctx)
		if err != nil {
			// одиночный сбой кадра не прерывает сканирование
			continue
		}
		if text, ok := c.decoder.Decode(frame); ok {
			return text, nil
		}
	}
}

// stop освобождает камеру ровно один раз.
func (c *Capture) stop() {
	c.release.Do(func() {
		_ = c.source.Close()
	})
}

// ZXingDecoder распознаёт QR-коды библиотекой gozxing.
type ZXingDecoder struct {
	reader gozxing.Reader
}

// NewZXingDecoder создает готовый к работе декодер.
func NewZXingDecoder() *ZXingDecoder {
	return &ZXingDecoder{reader: zxqrcode.NewQRCodeReader()}
}

// Decode пытается найти QR-код в кадре.
func (d *ZXingDecoder) Decode(img image.Image) (string, bool) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false
	}
	result, err := d.reader.Decode(bmp, nil)
	if err != nil {
		return "", false
	}
	return result.GetText(), true
}
