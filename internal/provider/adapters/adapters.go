// Package adapters holds the concrete provider.Adapter implementations
// shipped with this binary.
package adapters

import (
	"net/http"

	"github.com/howard-nolan/questionrouter/internal/cache"
	"github.com/howard-nolan/questionrouter/internal/provider"
)

// All builds the full set of adapters this binary ships, as a single
// declarative literal rather than init()-time side-effecting
// registration (§4.2/§9). It is a function rather than a package-level
// var because adapter construction needs the shared store and HTTP
// client, which only exist once cmd/questionrouter has finished reading
// configuration — there is no way to reference them from a var
// initializer evaluated at package-load time.
func All(store cache.Store, client *http.Client) []provider.Adapter {
	return []provider.Adapter{
		NewLocalCache(store),
		NewQuestionBank("万能题库", "https://lyck6.cn/pay", "http://lyck6.cn/scriptService/api/autoAnswer/%s", client),
		NewQuestionBank("能答题库", "https://enncy.cn", "https://api.enncy.cn/v1/query?token=%s", client),
		NewAnthropicLLM("https://api.anthropic.com", "claude-3-5-sonnet-latest", client),
		NewGoogleLLM("https://generativelanguage.googleapis.com", "gemini-1.5-flash", client),
	}
}
