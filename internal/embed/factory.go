package embed

import (
	"fmt"

	"github.com/rohanmhetar/failsight/internal/config"
	"github.com/rohanmhetar/failsight/internal/embed/lexical"
	"github.com/rohanmhetar/failsight/internal/embed/ollama"
	"github.com/rohanmhetar/failsight/internal/embed/tei"
	"github.com/rohanmhetar/failsight/pkg/models"
)

// NewProvider constructs the configured embedding provider. Called once at
// server startup.
func NewProvider(cfg config.EmbedConfig) (models.Embedder, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.NewProvider(cfg.Ollama, cfg.Timeout), nil
	case "tei":
		return tei.NewProvider(cfg.TEI, cfg.Timeout), nil
	case "lexical":
		return lexical.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unknown embed provider %q: must be one of ollama, tei, lexical", cfg.Provider)
	}
}
