// Command agentflow runs an interactive session against a configured
// agent workspace.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"agentflow/pkg/agent"
	"agentflow/pkg/config"
	"agentflow/pkg/events"
	"agentflow/pkg/llm/openaiofficial"
	"agentflow/pkg/logx"
	"agentflow/pkg/metrics"
	"agentflow/pkg/tools"
	"agentflow/pkg/workflow"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "agentflow: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "agentflow.yaml", "path to the workspace configuration file")
	agentName := flag.String("agent", "", "agent to converse with (default: first configured agent)")
	flag.Parse()

	// Best effort; credentials may come from the real environment instead.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}

	logger := logx.NewLogger("agentflow")
	sink := events.MultiSink{
		logx.NewSink(logger),
		metrics.NewRecorder(prometheus.DefaultRegisterer),
	}

	opts := append(cfg.OrchestratorOptions(), workflow.WithSink(sink), workflow.WithLogger(logger))
	orch := workflow.New(opts...)

	client := openaiofficial.NewClient(apiKey)
	for _, ac := range cfg.Agents {
		orch.RegisterLLMAgent(agent.NewLLMAgent(ac.Descriptor(), client, sink), ac.Tools...)
	}

	orch.RegisterTool(tools.NewDelegateTool(
		"delegate",
		"Delegate a request to another registered agent and return its reply",
		"",
	))

	if cfg.ToolsFile != "" {
		toolCfg, err := tools.LoadToolConfig(cfg.ToolsFile)
		if err != nil {
			return err
		}
		// Remote tool execution needs an MCP client from the embedding
		// application; standalone mode only validates the file.
		for _, desc := range toolCfg.Tools {
			logger.Warn("tool %q configured but no MCP client available in standalone mode", desc.Name)
		}
	}

	target := *agentName
	if target == "" {
		target = cfg.Agents[0].Name
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := workflow.NewSession(orch, target)
	fmt.Printf("agentflow session with %q (ctrl-d to exit)\n", target)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		reply, err := session.Send(ctx, line)
		if err != nil {
			logger.Error("run failed: %v", err)
			continue
		}
		fmt.Println(reply)
	}
	return scanner.Err()
}
