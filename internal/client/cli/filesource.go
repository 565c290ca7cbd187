package cli

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// FileSource источник кадров для сканирования из файла изображения.
// Терминальная замена камеры: один и тот же кадр на каждый опрос.
type FileSource struct {
	path  string
	frame image.Image
}

// NewFileSource создает источник из файла с QR-кодом.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Open читает и декодирует изображение.
func (s *FileSource) Open(_ context.Context) error {
	const op = "cli.FileSource.Open"

	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = f.Close()
	}()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.frame = img
	return nil
}

// Frame возвращает декодированное изображение.
func (s *FileSource) Frame(_ context.Context) (image.Image, error) {
	if s.frame == nil {
		return nil, fmt.Errorf("cli.FileSource.Frame: source is not open")
	}
	return s.frame, nil
}

// Close освобождает кадр.
func (s *FileSource) Close() error {
	s.frame = nil
	return nil
}
