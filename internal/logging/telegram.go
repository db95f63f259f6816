package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"printify-surecart-sync/internal/config"
)

// Notifier pushes human-facing run summaries to a Telegram chat. All methods
// are nil-safe so callers can wire it unconditionally.
type Notifier interface {
	Notify(value string)
	NotifyError(value string)
	NotifySuccess(value string)
}

type telegramNotifier struct {
	creds      config.TelegramBotConfig
	httpClient *http.Client
}

type telegramRequest struct {
	ChatId string `json:"chat_id"`
	Text   string `json:"text"`
}

const (
	iconInfo    = "ℹ️"
	iconError   = "❌"
	iconSuccess = "✅"
)

// NopNotifier discards every notification.
func NopNotifier() Notifier {
	return (*telegramNotifier)(nil)
}

func NewNotifier(creds config.TelegramBotConfig, httpClient *http.Client) Notifier {
	if creds.ChatId == "" || creds.Token == "" {
		// Typed nil keeps the nil-receiver guards reachable through the
		// interface.
		return (*telegramNotifier)(nil)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &telegramNotifier{creds: creds, httpClient: httpClient}
}

func (t *telegramNotifier) Notify(value string) {
	if t == nil {
		return
	}
	_ = t.sendRequest(formatMessage(iconInfo, "INFO", value))
}

func (t *telegramNotifier) NotifyError(value string) {
	if t == nil {
		return
	}
	_ = t.sendRequest(formatMessage(iconError, "ERROR", value))
}

func (t *telegramNotifier) NotifySuccess(value string) {
	if t == nil {
		return
	}
	_ = t.sendRequest(formatMessage(iconSuccess, "SUCCESS", value))
}

func formatMessage(icon, level, value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		v = "-"
	}
	return fmt.Sprintf("%s %s: %s", icon, level, v)
}

func (t *telegramNotifier) sendRequest(value string) error {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.creds.Token)

	reqBody := telegramRequest{
		ChatId: t.creds.ChatId,
		Text:   value,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	resp, err := t.httpClient.Post(url, "application/json", bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram send failed: %s", resp.Status)
	}
	return nil
}
