package realtime

import (
	"fmt"
	"testing"

	"bookinghub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferCapsAndKeepsNewestFirst(t *testing.T) {
	buf := NewUpdateBuffer(MaxBufferedUpdates)
	for i := 0; i < 120; i++ {
		buf.Push(models.BookingUpdate{ID: fmt.Sprintf("b%d", i)})
		require.LessOrEqual(t, buf.Len(), MaxBufferedUpdates)
	}

	items := buf.Snapshot()
	require.Len(t, items, MaxBufferedUpdates)
	assert.Equal(t, "b119", items[0].ID)
	assert.Equal(t, "b70", items[len(items)-1].ID)
}

func TestBufferReplaceIsWholesale(t *testing.T) {
	buf := NewUpdateBuffer(3)
	buf.Push(models.BookingUpdate{ID: "old"})
	buf.Replace([]models.BookingUpdate{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}})

	items := buf.Snapshot()
	require.Len(t, items, 3)
	assert.Equal(t, "a", items[0].ID)
}

func TestSnapshotIsACopy(t *testing.T) {
	buf := NewUpdateBuffer(0)
	buf.Push(models.BookingUpdate{ID: "a"})
	snap := buf.Snapshot()
	snap[0].ID = "mutated"
	assert.Equal(t, "a", buf.Snapshot()[0].ID)
}
