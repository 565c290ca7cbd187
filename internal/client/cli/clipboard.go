package cli

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// OSC52Clipboard пишет в системный буфер обмена управляющей
// последовательностью OSC 52. Работает не во всех терминалах, поэтому
// используется как основной путь с резервным.
type OSC52Clipboard struct {
	out io.Writer
}

// NewOSC52Clipboard создает буфер обмена поверх терминального вывода.
func NewOSC52Clipboard(out io.Writer) *OSC52Clipboard {
	return &OSC52Clipboard{out: out}
}

// WriteText отправляет текст в буфер обмена терминала.
func (c *OSC52Clipboard) WriteText(text string) error {
	if c.out == nil {
		return errors.New("clipboard: no terminal output")
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	_, err := fmt.Fprintf(c.out, "\x1b]52;c;%s\x07", encoded)
	return err
}

// EchoClipboard резервный путь копирования: печатает текст, чтобы его
// можно было выделить вручную.
type EchoClipboard struct {
	out io.Writer
}

// NewEchoClipboard создает резервный буфер обмена.
func NewEchoClipboard(out io.Writer) *EchoClipboard {
	return &EchoClipboard{out: out}
}

// WriteText выводит текст для ручного копирования.
func (c *EchoClipboard) WriteText(text string) error {
	_, err := fmt.Fprintf(c.out, "Скопируйте вручную:\n%s\n", text)
	return err
}
