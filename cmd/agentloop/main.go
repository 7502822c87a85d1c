package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/roelfdiedericks/agentloop/internal/chatlog"
	"github.com/roelfdiedericks/agentloop/internal/config"
	"github.com/roelfdiedericks/agentloop/internal/llm"
	. "github.com/roelfdiedericks/agentloop/internal/logging"
	"github.com/roelfdiedericks/agentloop/internal/session"
	"github.com/roelfdiedericks/agentloop/internal/tokens"
	"github.com/roelfdiedericks/agentloop/internal/types"
)

const version = "0.0.1"

const systemPrompt = "You are a helpful assistant."

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("agentloop %s\n", version)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		Init(nil)
		L_fatal("failed to load config: %v", err)
	}

	Init(&Config{
		Level:      ParseLevel(cfg.Logging.Level),
		ShowCaller: cfg.Logging.ShowCaller,
	})

	L_info("agentloop %s starting", version)

	providerName := cfg.LLM.Provider
	providerCfg, ok := cfg.Provider[providerName]
	if !ok {
		L_fatal("provider %q not configured", providerName)
	}

	provider, err := llm.NewProvider(providerName, providerCfg)
	if err != nil {
		L_fatal("failed to create provider: %v", err)
	}

	ctx, err := session.NewContext(cfg.Context.MaxTokens, tokens.Get(),
		types.SystemMessage(systemPrompt))
	if err != nil {
		L_fatal("failed to create context: %v", err)
	}
	if err := ctx.Validate(); err != nil {
		L_fatal("context setup invalid: %v", err)
	}

	logger, err := chatlog.NewLogger(cfg.ChatLog.Dir)
	if err != nil {
		L_fatal("failed to create chat logger: %v", err)
	}
	if cfg.ChatLog.IndexDB != "" {
		store, err := chatlog.OpenStore(cfg.ChatLog.IndexDB)
		if err != nil {
			L_fatal("failed to open transcript index: %v", err)
		}
		defer store.Close()
		logger.AttachStore(store)
	}

	L_info("agentloop ready", "provider", provider.Name(), "model", provider.DefaultModel(), "maxTokens", ctx.MaxTokens())

	runChat(ctx, provider, logger, providerCfg)
}

// runChat is a minimal REPL over the managed context
func runChat(sess *session.Context, provider llm.Provider, logger *chatlog.Logger, cfg llm.ProviderConfig) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("agentloop chat (type 'exit' to quit, 'export' to save a transcript)")

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		if line == "export" {
			path, err := logger.ExportSession("txt")
			if err != nil {
				L_error("export failed: %v", err)
				continue
			}
			fmt.Println("exported:", path)
			continue
		}

		userMsg := types.UserMessage(line)
		evicted := sess.AddDynamic(userMsg)
		if len(evicted) > 0 {
			L_debug("context evicted entries", "count", len(evicted))
		}
		if err := logger.LogMessage(types.RoleUser, line, nil); err != nil {
			L_warn("chat log write failed: %v", err)
		}

		reply, err := provider.CreateCompletion(context.Background(),
			sess.Snapshot(), nil, cfg.Model, cfg.MaxTokens)
		if err != nil {
			L_error("completion failed", "type", llm.ClassifyError(err.Error()), "error", err)
			continue
		}

		sess.AddDynamic(reply)
		if err := logger.LogMessage(types.RoleAssistant, reply, nil); err != nil {
			L_warn("chat log write failed: %v", err)
		}

		fmt.Println(reply.FirstText())

		stats := sess.Stats()
		L_debug("context stats",
			"core", stats.CoreTokens,
			"dynamic", stats.DynamicTokens,
			"total", stats.TotalTokens,
			"available", stats.AvailableTokens)
	}
}
