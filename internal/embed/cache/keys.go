package cache

import (
	"crypto/sha256"
	"fmt"
)

// EmbeddingKey namespaces cached vectors by model so switching providers
// never serves stale vectors of the wrong width.
func EmbeddingKey(model, text string) string {
	return fmt.Sprintf("emb:%s:%x", model, sha256.Sum256([]byte(text)))
}
