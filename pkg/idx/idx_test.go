package idx_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/supportportal/portal/pkg/idx"
)

func TestNewIsSortable(t *testing.T) {
	t.Parallel()

	a := idx.New()
	b := idx.New()
	require.NotEqual(t, a, b)
	require.Less(t, a.String(), b.String(), "later IDs must sort after earlier ones")
}

func TestParse(t *testing.T) {
	t.Parallel()

	id := idx.New()
	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	for _, bad := range []string{"", "   ", "not-a-ulid", "0000"} {
		_, err := idx.Parse(bad)
		require.ErrorIs(t, err, idx.ErrInvalid)
	}
}

func TestTime(t *testing.T) {
	t.Parallel()

	id := idx.New()
	require.WithinDuration(t, time.Now().UTC(), id.Time(), time.Second)
	require.True(t, idx.Zero.Time().IsZero())
}
