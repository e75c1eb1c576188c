// Package openai provides ai service implementations backed by
// OpenAI-compatible APIs (OpenAI, Ollama, LocalAI, vLLM).
//
// The Provider aggregates two embedding clients, one per ensemble model,
// and a chat-completion client used for brief synthesis. All clients are
// built on langchaingo and share a single ai.Config.
package openai
