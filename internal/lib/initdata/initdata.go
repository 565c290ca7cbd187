// Package initdata реализует проверку подписи Telegram WebApp initData.
//
// initData приходит строкой query-параметров; поле hash содержит
// HMAC-SHA256 от отсортированных пар k=v, ключ — HMAC-SHA256("WebAppData",
// токен бота). Пакет проверяет подпись, возраст auth_date и извлекает
// пользователя из поля user.
package initdata

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/vpn-miniapp/internal/models"
)

// Ошибки проверки initData. Все они приводят к 401 на сервере.
var (
	ErrEmpty        = errors.New("initdata: empty init data")
	ErrNoHash       = errors.New("initdata: no hash field")
	ErrBadSignature = errors.New("initdata: signature mismatch")
	ErrNoUser       = errors.New("initdata: no user field")
	ErrExpired      = errors.New("initdata: auth_date is too old")
)

// Verifier проверяет initData с фиксированным токеном бота.
type Verifier struct {
	botToken string
	// maxAge ограничивает возраст auth_date, 0 отключает проверку
	maxAge time.Duration
	now    func() time.Time
}

// New создает Verifier для заданного токена бота.
func New(botToken string, maxAge time.Duration) *Verifier {
	return &Verifier{
		botToken: botToken,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Verify проверяет подпись initData и возвращает пользователя Telegram.
func (v *Verifier) Verify(initData string) (*models.TgUser, error) {
	const op = "initdata.Verify"

	initData = strings.TrimSpace(initData)
	if initData == "" {
		return nil, ErrEmpty
	}

	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	receivedHash := values.Get("hash")
	if receivedHash == "" {
		return nil, ErrNoHash
	}
	values.Del("hash")

	if !hmac.Equal([]byte(Sign(values, v.botToken)), []byte(receivedHash)) {
		return nil, ErrBadSignature
	}

	if v.maxAge > 0 {
		authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: bad auth_date: %w", op, err)
		}
		if v.now().Sub(time.Unix(authDate, 0)) > v.maxAge {
			return nil, ErrExpired
		}
	}

	userRaw := values.Get("user")
	if userRaw == "" {
		return nil, ErrNoUser
	}
	var user models.TgUser
	if err := json.Unmarshal([]byte(userRaw), &user); err != nil {
		return nil, fmt.Errorf("%s: bad user json: %w", op, err)
	}
	if user.ID == 0 {
		return nil, ErrNoUser
	}
	return &user, nil
}

// Sign считает hex-подпись для набора параметров без поля hash.
// Экспортируется для сборки валидного initData в тестах.
func Sign(values url.Values, botToken string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}
	checkString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	return hex.EncodeToString(mac.Sum(nil))
}
