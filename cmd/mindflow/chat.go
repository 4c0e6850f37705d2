package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"go.uber.org/zap"

	"github.com/BaSui01/mindflow/agent/gateway"
	"github.com/BaSui01/mindflow/agent/orchestrator"
	"github.com/BaSui01/mindflow/agent/roles"
	"github.com/BaSui01/mindflow/agent/session"
	"github.com/BaSui01/mindflow/config"
	"github.com/BaSui01/mindflow/llm/tokenizer"
)

// =============================================================================
// 💬 chat 命令：终端里的单会话 REPL
// =============================================================================

const chatBanner = `MindFlow chat. Type a question to start learning.
  /safety <text>  run a safety probe
  /summary        summarize the session
  /state          print the session state
  /quit           exit`

// chatREPL 单个进程内编排器上的命令分发
type chatREPL struct {
	orch *orchestrator.Orchestrator
	out  io.Writer
}

func newChatREPL(orch *orchestrator.Orchestrator, out io.Writer) *chatREPL {
	return &chatREPL{orch: orch, out: out}
}

// handle 处理一行输入，返回 false 表示退出
func (c *chatREPL) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "/quit", "/exit":
		return false
	case "/safety":
		if arg == "" {
			fmt.Fprintln(c.out, "usage: /safety <text>")
			return true
		}
		c.print(c.orch.RunSafetyCheck(ctx, arg))
	case "/summary":
		c.print(c.orch.SessionSummary(ctx))
	case "/state":
		c.print(c.orch.State())
	default:
		if strings.HasPrefix(cmd, "/") {
			fmt.Fprintf(c.out, "unknown command %s\n", cmd)
			return true
		}
		resp := c.orch.HandleTurn(ctx, line, session.Overrides{Continue: true})
		c.printTurn(resp)
	}
	return true
}

func (c *chatREPL) printTurn(resp orchestrator.Response) {
	fmt.Fprintf(c.out, "[%s/%s] %s\n", resp.Agent, resp.Status, resp.Explanation)
	if len(resp.Subtopics) > 0 {
		fmt.Fprintf(c.out, "  subtopics: %s\n", strings.Join(resp.Subtopics, ", "))
	}
	if len(resp.Prerequisites) > 0 {
		fmt.Fprintf(c.out, "  prerequisites: %s\n", strings.Join(resp.Prerequisites, ", "))
	}
	if resp.Evaluation != nil {
		c.print(resp.Evaluation)
	}
}

func (c *chatREPL) print(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, string(data))
}

// runChat 从配置组装一个编排器并进入读行循环
func runChat(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	provider, err := buildProvider(ctx, cfg.LLM, logger)
	if err != nil {
		return err
	}
	gw := gateway.New(provider, gateway.Config{
		MinInterval:   cfg.LLM.MinInterval,
		RetryAttempts: cfg.LLM.MaxRetries,
		BaseDelay:     cfg.LLM.BaseDelay,
	}, logger, gateway.WithTokenizer(tokenizer.ForModel(leadModel(cfg.LLM))))
	orch := orchestrator.New(roles.New(gw, logger), logger)

	rl, err := readline.New("mindflow> ")
	if err != nil {
		return fmt.Errorf("create readline: %w", err)
	}
	defer rl.Close()

	repl := newChatREPL(orch, rl.Stdout())
	fmt.Fprintln(rl.Stdout(), chatBanner)

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}
		if !repl.handle(ctx, line) {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}
