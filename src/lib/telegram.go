package lib

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

var telegramAPIBase = "https://api.telegram.org"

// NewTelegramAPIBase points the notifier at a different bot API host.
func NewTelegramAPIBase(base string) {
	telegramAPIBase = base
}

// TelegramSendMessage delivers a plain-text message to a chat through the
// bot API. A missing bot token disables delivery without failing the caller;
// message delivery is best effort throughout.
func TelegramSendMessage(ctx context.Context, chatID int64, text string) error {
	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		return nil
	}
	payload, err := json.Marshal(map[string]any{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", telegramAPIBase, botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	client := &http.Client{Timeout: 10 * time.Second}
	res, err := client.Do(req)
	if err != nil {
		log.Printf("[telegram] Error sending message to %d: %s\n", chatID, err.Error())
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		log.Printf("[telegram] sendMessage returned status %d\n", res.StatusCode)
		return fmt.Errorf("sendMessage returned status %d", res.StatusCode)
	}
	return nil
}
