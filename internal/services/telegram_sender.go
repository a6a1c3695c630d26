package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramSender defines the interface for Telegram bot delivery
type TelegramSender interface {
	Send(ctx context.Context, chatID, body string) error
}

// BotSender delivers messages through the Telegram Bot API. The bot client
// is initialized lazily on first send because NewBotAPI calls getMe over the
// network and the token may be absent in local setups.
type BotSender struct {
	token string

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

func NewBotSender(token string) *BotSender {
	return &BotSender{token: token}
}

func (s *BotSender) getBot() (*tgbotapi.BotAPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bot != nil {
		return s.bot, nil
	}

	bot, err := tgbotapi.NewBotAPI(s.token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}

	s.bot = bot
	return bot, nil
}

func (s *BotSender) Send(ctx context.Context, chatID, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bot, err := s.getBot()
	if err != nil {
		return err
	}

	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid Telegram chat id %q: %w", chatID, err)
	}

	if _, err := bot.Send(tgbotapi.NewMessage(id, body)); err != nil {
		return fmt.Errorf("failed to send Telegram message: %w", err)
	}

	return nil
}
