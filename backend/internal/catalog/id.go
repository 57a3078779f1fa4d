package catalog

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewID mints a kind-prefixed entity id, e.g. "BO-3F2A9C41".
func NewID(kind Kind) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s-%s", kind.IDPrefix(), strings.ToUpper(hex[:8]))
}
