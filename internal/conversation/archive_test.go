package conversation

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suPer8Hu/ai-companion/internal/common"
)

func newTestArchive() *Archive {
	a := NewArchive()
	clock := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return a
}

func TestAppendTurn_DefaultConversationAndTitle(t *testing.T) {
	a := newTestArchive()

	c := a.AppendTurn("u1", "", RoleUser, "Merhaba")
	assert.Equal(t, DefaultID, c.ID)
	assert.Equal(t, "Merhaba", c.Title)

	a.AppendTurn("u1", "", RoleAssistant, "Selam!")
	c = a.AppendTurn("u1", DefaultID, RoleUser, "second message")
	assert.Equal(t, "Merhaba", c.Title)
	require.Len(t, c.Messages, 3)
	assert.Equal(t, RoleAssistant, c.Messages[1].Role)
	assert.Equal(t, c.Messages[2].Timestamp, c.LastMessageAt)
}

func TestAppendTurn_ReplyToDeletedConversationIsDropped(t *testing.T) {
	a := newTestArchive()
	c := a.AppendTurn("u1", "conv_x", RoleUser, "question")
	require.NoError(t, a.Delete("u1", c.ID))

	got := a.AppendTurn("u1", c.ID, RoleAssistant, "late answer")
	assert.Empty(t, got.ID)
	_, err := a.Get("u1", c.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Empty(t, a.List("u1"))
}

func TestAppendTurn_LongTitleTruncated(t *testing.T) {
	a := newTestArchive()
	long := strings.Repeat("ğ", 60)

	c := a.AppendTurn("u1", "c1", RoleUser, long)
	assert.Equal(t, strings.Repeat("ğ", 50)+"...", c.Title)
}

func TestCreate_PlaceholderReplacedByFirstUserMessage(t *testing.T) {
	a := newTestArchive()
	created := a.Create("u1")
	assert.Regexp(t, `^conv_`, created.ID)
	assert.Equal(t, PlaceholderTitle, created.Title)

	c := a.AppendTurn("u1", created.ID, RoleUser, "Plan a trip")
	assert.Equal(t, "Plan a trip", c.Title)
	assert.Equal(t, created.CreatedAt, c.CreatedAt)
}

func TestList_SortedByLastMessageDesc(t *testing.T) {
	a := newTestArchive()
	a.AppendTurn("u1", "old", RoleUser, "first")
	a.AppendTurn("u1", "new", RoleUser, "second")
	a.AppendTurn("u1", "old", RoleAssistant, strings.Repeat("x", 80))
	a.AppendTurn("u2", "other", RoleUser, "not mine")

	list := a.List("u1")
	require.Len(t, list, 2)
	assert.Equal(t, "old", list[0].ID)
	assert.Equal(t, 2, list[0].MessageCount)
	assert.Equal(t, strings.Repeat("x", 50)+"...", list[0].Preview)
	assert.Equal(t, "new", list[1].ID)
	assert.Equal(t, "second", list[1].Preview)

	assert.Empty(t, a.List("nobody"))
}

func TestGetDelete_NotFound(t *testing.T) {
	a := newTestArchive()
	a.AppendTurn("u1", "c1", RoleUser, "hi")

	_, err := a.Get("u1", "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = a.Get("u2", "c1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, a.Delete("u1", "c1"))
	assert.ErrorIs(t, a.Delete("u1", "c1"), common.ErrNotFound)
	assert.Empty(t, a.List("u1"))
}

func TestDelete_KeepsOthers(t *testing.T) {
	a := newTestArchive()
	for i := 0; i < 3; i++ {
		a.AppendTurn("u1", fmt.Sprintf("c%d", i), RoleUser, "hi")
	}
	require.NoError(t, a.Delete("u1", "c1"))
	_, err := a.Get("u1", "c0")
	assert.NoError(t, err)
	_, err = a.Get("u1", "c2")
	assert.NoError(t, err)
}

func TestExportImport(t *testing.T) {
	a := newTestArchive()
	a.AppendTurn("u1", "c1", RoleUser, "hi")

	b := NewArchive()
	b.Import(a.Export())
	assert.Equal(t, a.Export(), b.Export())

	// imported data is detached from the source map
	exp := a.Export()
	exp["u1"][0].Title = "changed"
	c, err := a.Get("u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "hi", c.Title)
}
