package tenant

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSpaceContextRoundTrip(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	space := Space{
		TenantID:  id,
		Namespace: NamespaceFor(id),
	}

	ctx := WithSpace(context.Background(), space)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, space, got)
}

func TestRequireFailsWithoutSpace(t *testing.T) {
	t.Parallel()

	_, err := Require(context.Background())
	require.ErrorIs(t, err, ErrMissingTenantContext)
}
