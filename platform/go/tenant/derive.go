package tenant

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NamespacePrefix is the fixed literal every tenant namespace starts with.
const NamespacePrefix = "tenant_"

// ErrInvalidTenantID reports a tenant identifier that is not a syntactically
// valid UUID. Surfaced as a 400 by the HTTP layer.
var ErrInvalidTenantID = errors.New("invalid tenant id")

// DeriveNamespace returns the PostgreSQL schema name owned by the tenant:
// "tenant_" followed by the lowercase UUID with every non-alphanumeric byte
// replaced by an underscore. The transform is load-bearing: the provisioner,
// validator and router must all compute byte-identical names, so any code
// needing a namespace goes through this function.
func DeriveNamespace(tenantID string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(tenantID))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTenantID, tenantID)
	}
	return NamespaceFor(id), nil
}

// NamespaceFor derives the namespace from an already-parsed UUID.
// Output alphabet is [a-z0-9_] by construction.
func NamespaceFor(id uuid.UUID) string {
	var b strings.Builder
	b.Grow(len(NamespacePrefix) + 36)
	b.WriteString(NamespacePrefix)
	for _, r := range strings.ToLower(id.String()) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// ShortID returns the first 8 hexadecimal characters of a UUID (without dashes).
func ShortID(id uuid.UUID) string {
	hex := strings.ReplaceAll(id.String(), "-", "")
	if len(hex) < 8 {
		return hex
	}
	return hex[:8]
}

// BuildAttachmentPrefix returns `<envKey>/<namespace>/`, the per-tenant object
// storage prefix for ticket and OmniBridge attachments.
func BuildAttachmentPrefix(envKey, namespace string) string {
	envKey = strings.TrimSuffix(envKey, "/")
	return envKey + "/" + namespace + "/"
}
