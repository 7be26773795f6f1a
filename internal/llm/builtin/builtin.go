// Package builtin links every bundled provider adapter into the llm factory registry.
package builtin

import (
	_ "github.com/nulzo/llm-relay/internal/llm/anthropic"
	_ "github.com/nulzo/llm-relay/internal/llm/google"
	_ "github.com/nulzo/llm-relay/internal/llm/huggingface"
	_ "github.com/nulzo/llm-relay/internal/llm/mock"
	_ "github.com/nulzo/llm-relay/internal/llm/ollama"
	_ "github.com/nulzo/llm-relay/internal/llm/openai"
)
