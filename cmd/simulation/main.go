package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"phone-order-be/internal/config"
	"phone-order-be/internal/dto"
	"phone-order-be/internal/pkg/logger"
	"phone-order-be/internal/repository/memory"
	"phone-order-be/internal/service"
	"phone-order-be/pkg/llm/factory"
	"phone-order-be/pkg/menu"
	"phone-order-be/pkg/nlu"
	"phone-order-be/pkg/ordering/policy"
	"phone-order-be/pkg/ordering/session"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Simulates a phone call on the terminal: each input line is one caller
// utterance, answered with the agent's reply. Uses the configured LLM, an
// in-memory session store and a sink that only logs placed orders.
func main() {
	cfg := config.Load()
	sysLogger := logger.NewZapLogger("logs/simulation.log", false)
	defer sysLogger.Sync()

	catalog, err := menu.Load(cfg.Agent.CatalogPath)
	if err != nil {
		log.Fatalf("Failed to load menu: %v", err)
	}

	baseURL := cfg.Ai.LLMBaseURL
	if cfg.Ai.LLMProvider == "ollama" {
		baseURL = cfg.Ai.OllamaBaseURL
	}
	provider, err := factory.NewLLMProvider(factory.Config{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  baseURL,
		APIKey:   cfg.Keys.OpenAI,
		Timeout:  cfg.Ai.Timeout,
	})
	if err != nil {
		log.Fatalf("Failed to init LLM provider: %v", err)
	}

	agent := service.NewOrderAgentService(
		session.NewManager(memory.NewSessionRepository(time.Hour)),
		catalog,
		nlu.NewLLMExtractor(provider, cfg.Agent.NLUHistory),
		policy.NewPolicy(catalog, policy.DefaultPhrases()),
		service.NewLoggingOrderSink(sysLogger),
		service.AgentOptions{ReplayWindow: cfg.Agent.ReplayWindow, HistoryLimit: cfg.Agent.HistoryLimit},
		sysLogger,
	)

	callID := "sim-" + uuid.NewString()
	color.Cyan("=== %s phone line simulation (%s) ===\n", catalog.Store(), callID)
	agentLabel := color.New(color.FgGreen, color.Bold).SprintFunc()
	callerLabel := color.New(color.FgYellow, color.Bold).SprintFunc()

	ctx := context.Background()
	say := func(text string) bool {
		res, err := agent.HandleTurn(ctx, dto.TurnRequest{CallID: callID, Utterance: text})
		if err != nil {
			color.Red("AGENT (error: %v)", err)
			return true
		}
		fmt.Printf("%s [%s]: %s\n", agentLabel("AGENT"), res.State, res.Reply)
		return res.ContinueListening
	}

	if !say("") {
		return
	}
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(callerLabel("CALLER") + ": ")
		if !scanner.Scan() {
			return
		}
		if !say(scanner.Text()) {
			color.Cyan("=== call ended ===")
			return
		}
	}
}
