package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/mindflow/config"
	"github.com/BaSui01/mindflow/llm"
	"github.com/BaSui01/mindflow/llm/providers/gemini"
	"github.com/BaSui01/mindflow/llm/providers/langchain"
	"github.com/BaSui01/mindflow/testutil/mocks"
)

// errNoBackend 没有任何可用的 LLM 凭据
var errNoBackend = errors.New("no llm backend configured: set MINDFLOW_LLM_GITHUB_TOKEN or MINDFLOW_LLM_GEMINI_API_KEY, or use provider \"mock\"")

// offlineReply 离线模式下所有角色收到的回复
const offlineReply = `{"status": "SAFE", "explanation": "MindFlow is running in offline mode. Configure an LLM backend to get real answers.", "next_agent": "interactive", "response": "MindFlow is running in offline mode."}`

// buildProvider 按配置组装 Provider 降级链：
// auto 为 GitHub Models → Gemini 主力模型 → Gemini 轻量模型，缺凭据的环节跳过。
func buildProvider(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (llm.Provider, error) {
	var chain []llm.Provider

	addGitHub := func() error {
		if cfg.GitHubToken == "" {
			return nil
		}
		p, err := langchain.NewGitHubModels(cfg.GitHubToken, cfg.GitHubBaseURL, cfg.GitHubModel, logger)
		if err != nil {
			return err
		}
		chain = append(chain, p)
		return nil
	}
	addGemini := func() error {
		if cfg.GeminiAPIKey == "" {
			return nil
		}
		for _, model := range []string{cfg.PrimaryModel, cfg.LightModel} {
			if model == "" {
				continue
			}
			p, err := gemini.New(ctx, gemini.Config{
				APIKey:  cfg.GeminiAPIKey,
				Model:   model,
				BaseURL: cfg.GeminiBaseURL,
				Timeout: cfg.Timeout,
			}, logger)
			if err != nil {
				return err
			}
			chain = append(chain, p)
		}
		return nil
	}

	var err error
	switch cfg.Provider {
	case "mock":
		logger.Warn("using offline mock llm provider")
		return mocks.NewMockProvider().WithResponse(offlineReply), nil
	case "github":
		err = addGitHub()
	case "gemini":
		err = addGemini()
	default:
		if err = addGitHub(); err == nil {
			err = addGemini()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("build llm provider: %w", err)
	}
	if len(chain) == 0 {
		return nil, errNoBackend
	}
	if len(chain) == 1 {
		return chain[0], nil
	}

	names := make([]string, len(chain))
	for i, p := range chain {
		names[i] = p.Name()
	}
	logger.Info("llm fallback chain", zap.Strings("providers", names))
	fb, err := llm.NewFallbackProvider(logger, chain...)
	if err != nil {
		return nil, err
	}
	return fb, nil
}

// leadModel 降级链第一个环节的模型名，用于挑选分词器
func leadModel(cfg config.LLMConfig) string {
	switch cfg.Provider {
	case "auto", "github":
		if cfg.GitHubToken != "" {
			return cfg.GitHubModel
		}
	}
	return cfg.PrimaryModel
}
