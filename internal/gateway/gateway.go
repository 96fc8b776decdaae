package gateway

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julienfritschheydon/doodates/internal/chat"
	"github.com/julienfritschheydon/doodates/internal/config"
	"github.com/julienfritschheydon/doodates/internal/intent"
	"github.com/julienfritschheydon/doodates/internal/llm"
	"github.com/julienfritschheydon/doodates/internal/middleware"
	"github.com/julienfritschheydon/doodates/internal/poll"
	"github.com/julienfritschheydon/doodates/middlewares/pollintent"
	_ "github.com/julienfritschheydon/doodates/middlewares/autoload" // Auto-load all middlewares

	"github.com/joho/godotenv"
)

const systemPrompt = `Tu es l'assistant DooDates. Tu aides l'utilisateur à créer et organiser des sondages de dates et des questionnaires, en français. Réponds de façon courte et concrète.`

type Gateway struct {
	ConfigPath string
}

func New(configPath string) *Gateway {
	return &Gateway{ConfigPath: configPath}
}

// Runtime is the assembled process state: one poll document, one resolver,
// one middleware chain. Chat services are created per surface or per user
// on top of it.
type Runtime struct {
	Config   *config.Config
	Adapter  *llm.Adapter
	Chain    *middleware.Chain
	Store    *poll.Store
	Resolver *intent.Resolver

	pollPath string
	logFile  *os.File
}

// Init loads configuration, builds the LLM adapter, the poll store and the
// intent resolver, and wires the poll_intent middleware.
func (g *Gateway) Init(ctx context.Context) (*Runtime, error) {
	// Load environment variables from .env if present
	_ = godotenv.Load()

	cfg := config.Default()
	path := g.ConfigPath
	if path == "" {
		path = config.DefaultPath
	}
	if loaded, err := config.LoadFromFile(path); err == nil {
		cfg = loaded
		applyMiddlewareSettings(cfg)
	}

	// Environment variables override the config file.
	if m := os.Getenv("DOODATES_MODEL"); m != "" {
		cfg.Model = m
	}
	if p := os.Getenv("DOODATES_PROVIDER"); p != "" {
		cfg.Provider = p
	}
	if u := os.Getenv("DOODATES_OLLAMA_URL"); u != "" {
		cfg.BaseURL = u
	}
	if cfg.APIKey != "" {
		keyVar := "DOODATES_" + strings.ToUpper(cfg.Provider) + "_API_KEY"
		if os.Getenv(keyVar) == "" {
			os.Setenv(keyVar, cfg.APIKey)
		}
	}

	adapter, err := llm.NewAdapter(llm.Provider(cfg.Provider), cfg.Model, cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize adapter: %w", err)
	}

	// Middleware debug log (JSONL).
	logPath := filepath.Join("bin", "middleware.debug.jsonl")
	_ = os.MkdirAll(filepath.Dir(logPath), 0o755)
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to open middleware log file (%s): %v\n", logPath, err)
	}
	var mwLog io.Writer
	if logFile != nil {
		mwLog = logFile
	}

	store := poll.NewStore(loadPoll(cfg.PollFile))

	resolver := intent.NewResolver(store,
		applyDispatch(store),
		intent.WithFallback(intent.NewFallback(adapter, log.Printf)),
	)
	pollintent.Configure(resolver)

	chain := middleware.NewChainFromRegistry(mwLog)

	return &Runtime{
		Config:   cfg,
		Adapter:  adapter,
		Chain:    chain,
		Store:    store,
		Resolver: resolver,
		pollPath: cfg.PollFile,
		logFile:  logFile,
	}, nil
}

// NewChat builds a chat service sharing the runtime's chain and adapter.
// Each caller gets its own history.
func (rt *Runtime) NewChat(opts ...chat.ServiceOption) *chat.Service {
	base := []chat.ServiceOption{
		chat.WithSystemPrompt(systemPrompt),
	}
	if rt.Chain != nil {
		base = append(base, chat.WithMiddlewareChain(rt.Chain))
	}
	return chat.NewService(rt.Adapter, append(base, opts...)...)
}

// Close persists the poll document and releases the debug log.
func (rt *Runtime) Close() {
	if rt.pollPath != "" {
		if err := savePoll(rt.pollPath, rt.Store.Current()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to save poll: %v\n", err)
		}
	}
	if rt.logFile != nil {
		rt.logFile.Close()
	}
}

// Execute runs a single message through a fresh session and prints the reply.
func (g *Gateway) Execute(ctx context.Context, input string) error {
	rt, err := g.Init(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	service := rt.NewChat()

	turnCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	reply, err := service.Send(turnCtx, input)
	if err != nil {
		return err
	}
	fmt.Println(reply)
	return nil
}

// Run starts the interactive REPL.
func (g *Gateway) Run(ctx context.Context) error {
	rt, err := g.Init(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	service := rt.NewChat()

	fmt.Println("DooDates chat")
	fmt.Printf("model=%s, provider=%s, url=%s\n", rt.Config.Model, rt.Config.Provider, valueOrDefault(rt.Config.BaseURL, "default"))
	fmt.Println("Tapez /exit pour quitter, /clear pour réinitialiser, /poll pour afficher le sondage.")

	scanner := bufio.NewScanner(os.Stdin)
	go func() {
		<-ctx.Done()
		os.Stdin.Close() // Force read error to break loop
	}()

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return nil
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		switch input {
		case "/exit", "exit", "quit":
			return nil
		case "/clear":
			service.Clear()
			fmt.Println("contexte réinitialisé")
			continue
		case "/poll":
			fmt.Println(DescribePoll(rt.Store.Current()))
			continue
		}

		turnCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		reply, err := service.Send(turnCtx, input)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(reply)
	}
}

// DescribePoll renders the poll document for terminal surfaces.
func DescribePoll(p *poll.Poll) string {
	if p == nil {
		return "aucun sondage"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", valueOrDefault(p.Title, "Sans titre"), kindLabel(p.Type))
	if p.Type == poll.KindDate {
		if len(p.Dates) == 0 {
			b.WriteString("  aucune date proposée\n")
		}
		for _, d := range p.Dates {
			fmt.Fprintf(&b, "  - %s\n", d)
		}
		for _, s := range p.Slots {
			fmt.Fprintf(&b, "  - %s %s-%s\n", s.Date, s.Start, s.End)
		}
		return strings.TrimRight(b.String(), "\n")
	}
	if len(p.Questions) == 0 {
		b.WriteString("  aucune question\n")
	}
	for i, q := range p.Questions {
		marker := ""
		if q.Required {
			marker = " *"
		}
		fmt.Fprintf(&b, "  %d. %s (%s)%s\n", i+1, q.Title, q.Kind, marker)
		for _, o := range q.Options {
			fmt.Fprintf(&b, "     - %s\n", o.Label)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func kindLabel(k poll.Kind) string {
	if k == poll.KindForm {
		return "questionnaire"
	}
	return "sondage de dates"
}

func applyMiddlewareSettings(cfg *config.Config) {
	var disabled []string
	for _, m := range cfg.Middlewares {
		if !m.Enabled {
			disabled = append(disabled, m.ID)
		}
		for k, v := range m.EnvVars {
			if v != "" {
				os.Setenv(k, v)
			}
		}
	}
	if len(disabled) > 0 {
		os.Setenv("DOODATES_DISABLED_MIDDLEWARES", strings.Join(disabled, ","))
	}
}

// applyDispatch routes resolver actions into the reducer. The resolver has
// already guarded the edit, so a reducer error here is a payload mismatch
// worth logging rather than dropping.
func applyDispatch(store *poll.Store) intent.Dispatch {
	return func(a poll.Action) {
		if err := store.Apply(a); err != nil {
			log.Printf("poll apply %s: %v", a.Type, err)
		}
	}
}

// loadPoll reads the document from disk, or starts an empty date poll when
// the path is unset or unreadable.
func loadPoll(path string) *poll.Poll {
	fallback := &poll.Poll{Type: poll.KindDate, Title: "Nouveau sondage"}
	if path == "" {
		return fallback
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fallback
	}
	var p poll.Poll
	if err := json.Unmarshal(data, &p); err != nil {
		fmt.Fprintf(os.Stderr, "warning: invalid poll file %s: %v\n", path, err)
		return fallback
	}
	if p.Type != poll.KindDate && p.Type != poll.KindForm {
		p.Type = poll.KindDate
	}
	return &p
}

func savePoll(path string, p *poll.Poll) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func valueOrDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
