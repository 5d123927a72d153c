package adapter

import "google.golang.org/genai"

func GeminiGenerateConfig(system string, opts ...GeminiOption) *genai.GenerateContentConfig {
	return newGemini(opts...).generateConfig(system)
}
