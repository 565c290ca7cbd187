// Package transport реализует клиентский транспорт мини-аппа: POST с
// JSON-телом на фиксированный набор конечных точек, initData
// подкладывается в каждое тело. Ошибки HTTP превращаются в типизированный
// *Error со статусом, чтобы вызывающая сторона могла ветвиться по 403.
// Повторов и отложенных попыток нет: отказ одного вызова терминален.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Error типизированная ошибка транспорта с HTTP-статусом.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("transport: status %d: %s", e.StatusCode, e.Body)
}

// envelope стандартный конверт ответа сервера.
type envelope struct {
	Status string          `json:"status"`
	Error  string          `json:"error,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Client отправляет запросы к бекенду мини-аппа.
type Client struct {
	baseURL  string
	initData string
	http     *http.Client
}

// New создает транспортный клиент. initData может быть пустым — тогда
// HasIdentity вернёт false и бутстрап остановится до первого запроса.
func New(baseURL, initData string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  baseURL,
		initData: initData,
		http:     &http.Client{Timeout: timeout},
	}
}

// HasIdentity сообщает, передан ли клиенту identity proof.
func (c *Client) HasIdentity() bool {
	return c.initData != ""
}

// Call отправляет POST на endpoint, добавив initData к полезной нагрузке,
// и возвращает поле data из конверта ответа.
func (c *Client) Call(ctx context.Context, endpoint string, payload map[string]any) (json.RawMessage, error) {
	const op = "transport.Call"

	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["initData"] = c.initData

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return env.Data, nil
}

// CallInto выполняет Call и раскладывает data в out. Пустой data при
// непустом out оставляет out нетронутым.
func (c *Client) CallInto(ctx context.Context, endpoint string, payload map[string]any, out any) error {
	data, err := c.Call(ctx, endpoint, payload)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
