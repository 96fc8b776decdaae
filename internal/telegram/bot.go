package telegram

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/julienfritschheydon/doodates/internal/chat"
	"github.com/julienfritschheydon/doodates/internal/gateway"

	"github.com/joho/godotenv"
	tele "gopkg.in/telebot.v3"
)

type userSession struct {
	service *chat.Service
	lastUse time.Time
	mu      sync.Mutex
}

// BotAdapter exposes the poll assistant as a Telegram bot. All chats edit
// the same poll document; each chat keeps its own conversation history.
type BotAdapter struct {
	bot        *tele.Bot
	rt         *gateway.Runtime
	sessions   map[int64]*userSession
	sessionsMu sync.RWMutex
}

// NewBot creates a new Telegram Bot adapter.
func NewBot(configPath string) (*BotAdapter, error) {
	_ = godotenv.Load()

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is required")
	}

	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	rt, err := gateway.New(configPath).Init(context.Background())
	if err != nil {
		return nil, err
	}

	adapter := &BotAdapter{
		bot:      b,
		rt:       rt,
		sessions: make(map[int64]*userSession),
	}

	adapter.setupHandlers()
	return adapter, nil
}

// Start begins listening for Telegram messages.
func (b *BotAdapter) Start(ctx context.Context) error {
	log.Printf("Starting DooDates Telegram bot (@%s)", b.bot.Me.Username)

	go b.cleanupLoop(ctx)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down Telegram bot...")
		b.bot.Stop()
		b.rt.Close()
	}()

	b.bot.Start()
	return nil
}

func (b *BotAdapter) setupHandlers() {
	b.bot.Handle("/start", func(c tele.Context) error {
		return c.Send("👋 Bonjour ! Je vous aide à organiser votre sondage. Dites-moi par exemple « ajoute le 3 décembre » ou « transforme ça en questionnaire ».")
	})

	b.bot.Handle("/clear", func(c tele.Context) error {
		chatID := c.Chat().ID
		b.sessionsMu.Lock()
		if session, exists := b.sessions[chatID]; exists {
			session.mu.Lock()
			session.service.Clear()
			session.mu.Unlock()
		}
		b.sessionsMu.Unlock()
		return c.Send("🧹 Conversation réinitialisée.")
	})

	b.bot.Handle("/poll", func(c tele.Context) error {
		return c.Send(gateway.DescribePoll(b.rt.Store.Current()))
	})

	b.bot.Handle(tele.OnText, b.handleMessage)
}

func (b *BotAdapter) handleMessage(c tele.Context) error {
	chatID := c.Chat().ID
	text := c.Text()

	_ = c.Notify(tele.Typing)

	session := b.getSession(chatID)

	session.mu.Lock()
	defer session.mu.Unlock()
	session.lastUse = time.Now()

	turnCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	reply, err := session.service.Send(turnCtx, text)
	if err != nil {
		log.Printf("Error processing message for %d: %v", chatID, err)
		return c.Send(fmt.Sprintf("⚠️ Une erreur est survenue : %v", err))
	}

	if reply == "" {
		return c.Send("🤷 Je n'ai pas de réponse à ça.")
	}

	// Telegram messages have a 4096 character limit
	return sendLongMessage(c, reply)
}

func (b *BotAdapter) getSession(chatID int64) *userSession {
	b.sessionsMu.RLock()
	session, exists := b.sessions[chatID]
	b.sessionsMu.RUnlock()

	if exists {
		return session
	}

	b.sessionsMu.Lock()
	defer b.sessionsMu.Unlock()

	// Check again in case it was created while waiting for the lock
	if session, exists := b.sessions[chatID]; exists {
		return session
	}

	log.Printf("Initializing new session for chat %d...", chatID)
	session = &userSession{
		service: b.rt.NewChat(),
		lastUse: time.Now(),
	}
	b.sessions[chatID] = session

	return session
}

func (b *BotAdapter) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.sessionsMu.Lock()
			for id, session := range b.sessions {
				// Expire sessions inactive for more than 2 hours
				if time.Since(session.lastUse) > 2*time.Hour {
					log.Printf("Cleaning up inactive session for chat %d", id)
					delete(b.sessions, id)
				}
			}
			b.sessionsMu.Unlock()
		}
	}
}

// sendLongMessage splits and sends text if it exceeds Telegram's 4096 char limit.
func sendLongMessage(c tele.Context, text string) error {
	const maxLen = 4000 // Leave a little buffer
	var err error

	for len(text) > 0 {
		if len(text) > maxLen {
			chunk := text[:maxLen]
			err = c.Send(chunk)
			text = text[maxLen:]
		} else {
			err = c.Send(text)
			text = ""
		}
		if err != nil {
			return err
		}
	}
	return nil
}
