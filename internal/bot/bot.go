// Package bot adapts Telegram updates to the storefront core. It maps
// menu presses and callbacks to a closed command set, keeps per-user
// multi-step input state and serializes handling per user.
package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mailshop/internal/codeapi"
	"mailshop/internal/config"
	"mailshop/internal/logging"
	"mailshop/internal/model"
	"mailshop/internal/session"
	"mailshop/internal/shop"
	"mailshop/internal/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type inputKind int

const (
	inputNone inputKind = iota
	inputDepositAmount
	inputTransactionID
	inputCustomQuantity
	inputBroadcastDraft
	inputAddBalance
	inputSendMessage
	inputViewUser
	inputUploadStock
)

// pendingInput is the free-text step a user is currently in.
type pendingInput struct {
	kind    inputKind
	method  string
	amount  float64
	service model.Service
	draft   string
}

type Bot struct {
	api      *tgbotapi.BotAPI
	store    *store.Database
	shop     *shop.Service
	codes    *codeapi.Client
	sessions *session.Manager
	cfg      config.Config

	mu      sync.Mutex
	pending map[int64]pendingInput
	locks   map[int64]*sync.Mutex
}

func New(api *tgbotapi.BotAPI, db *store.Database, shopSvc *shop.Service, codes *codeapi.Client, cfg config.Config) *Bot {
	b := &Bot{
		api:     api,
		store:   db,
		shop:    shopSvc,
		codes:   codes,
		cfg:     cfg,
		pending: make(map[int64]pendingInput),
		locks:   make(map[int64]*sync.Mutex),
	}
	b.sessions = session.NewManager(session.DefaultTimeouts(), b.notifySessionExpired)
	return b
}

// Sessions exposes the manager for wiring and tests.
func (b *Bot) Sessions() *session.Manager {
	return b.sessions
}

// Run consumes updates until ctx is cancelled. Updates for different
// users are handled in parallel; updates for the same user are
// serialized through a per-user lock.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	logging.Logg.Info("Bot is running", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			userID := updateUserID(update)
			if userID == 0 {
				continue
			}
			go func(update tgbotapi.Update) {
				lock := b.userLock(userID)
				lock.Lock()
				defer lock.Unlock()
				b.handleUpdate(update)
			}(update)
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			logging.Logg.Error("Panic while handling update", "panic", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	case update.Message == nil:
		return
	case update.Message.Document != nil:
		b.handleDocument(update.Message)
	case update.Message.IsCommand():
		b.handleCommand(update.Message)
	default:
		b.handleMessage(update.Message)
	}
}

func updateUserID(update tgbotapi.Update) int64 {
	if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
		return update.CallbackQuery.From.ID
	}
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	return 0
}

func (b *Bot) userLock(userID int64) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()

	lock, ok := b.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		b.locks[userID] = lock
	}
	return lock
}

func (b *Bot) setPending(userID int64, p pendingInput) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.kind == inputNone {
		delete(b.pending, userID)
		return
	}
	b.pending[userID] = p
}

func (b *Bot) getPending(userID int64) pendingInput {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending[userID]
}

func (b *Bot) clearPending(userID int64) {
	b.setPending(userID, pendingInput{})
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.cfg.IsAdmin(userID)
}

// adminOnly gates a handler behind the operator id set. Denied callers
// learn nothing beyond access denied.
func (b *Bot) adminOnly(h func(*tgbotapi.Message)) func(*tgbotapi.Message) {
	return func(msg *tgbotapi.Message) {
		if msg.From == nil || !b.isAdmin(msg.From.ID) {
			b.send(msg.Chat.ID, "Access Denied. You don't have permission to use this command.")
			return
		}
		h(msg)
	}
}

func (b *Bot) send(chatID int64, text string) {
	b.sendWithMarkup(chatID, text, nil)
}

func (b *Bot) sendWithMarkup(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		logging.Logg.Error("Failed to send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) notifySessionExpired(userID int64, timeout time.Duration) {
	b.send(userID, fmt.Sprintf(
		"Session expired after %d minutes of inactivity. Please start again.",
		int(timeout.Minutes())))
}
