package persist

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/suPer8Hu/ai-companion/internal/conversation"
	"github.com/suPer8Hu/ai-companion/internal/identity"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func seedStores(t *testing.T) (*identity.Store, *conversation.Archive, identity.Account) {
	t.Helper()
	ids := identity.NewStore(nil)
	acc, _, err := ids.Register(context.Background(), identity.RegisterInput{Username: "Ada", Password: "pw1", Email: "ada@example.com"})
	require.NoError(t, err)
	_, err = ids.AddInterest(acc.UserID, "go")
	require.NoError(t, err)
	require.NoError(t, ids.RecordInteraction(acc.UserID, "software question?"))

	archive := conversation.NewArchive()
	archive.AppendTurn(acc.UserID, "", conversation.RoleUser, "hello there")
	archive.AppendTurn(acc.UserID, "", conversation.RoleAssistant, "hi!")
	return ids, archive, acc
}

func TestPairs_ArrayOfPairs(t *testing.T) {
	b, err := json.Marshal(Pairs[int]{"b": 2, "a": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `[["a",1],["b",2]]`, string(b))

	var back Pairs[int]
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, Pairs[int]{"a": 1, "b": 2}, back)

	assert.Error(t, json.Unmarshal([]byte(`[["a"]]`), &back))
}

func TestGateway_FileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)

	ids, archive, acc := seedStores(t)
	g := NewGateway(backend, ids, archive, zaptest.NewLogger(t))
	require.NoError(t, g.Save(context.Background()))

	for _, name := range []string{DocUsers, DocConversations, DocMemories} {
		_, err := os.Stat(filepath.Join(dir, name+".json"))
		require.NoError(t, err, name)
	}
	leftovers, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	assert.Empty(t, leftovers)

	ids2 := identity.NewStore(nil)
	archive2 := conversation.NewArchive()
	g2 := NewGateway(backend, ids2, archive2, zaptest.NewLogger(t))
	require.NoError(t, g2.Load(context.Background()))

	requireSameState(t, ids, ids2, archive, archive2)

	got, _, err := ids2.Authenticate(context.Background(), "ada", "pw1")
	require.NoError(t, err)
	assert.Equal(t, acc.UserID, got.UserID)
}

func TestGateway_UsersDocumentShape(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)
	ids, archive, acc := seedStores(t)
	require.NoError(t, NewGateway(backend, ids, archive, nil).Save(context.Background()))

	raw, err := os.ReadFile(filepath.Join(dir, "users.json"))
	require.NoError(t, err)
	var doc struct {
		UserLoginData [][]json.RawMessage `json:"userLoginData"`
		UserAccounts  [][]json.RawMessage `json:"userAccounts"`
		Timestamp     string              `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc.UserLoginData, 1)
	assert.JSONEq(t, `"ada"`, string(doc.UserLoginData[0][0]))
	assert.NotContains(t, string(doc.UserLoginData[0][1]), `"password"`)
	require.Len(t, doc.UserAccounts, 1)
	assert.JSONEq(t, `"`+acc.UserID+`"`, string(doc.UserAccounts[0][0]))
	assert.NotEmpty(t, doc.Timestamp)
}

func TestGateway_LoadMissingDocuments(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	ids := identity.NewStore(nil)
	g := NewGateway(backend, ids, conversation.NewArchive(), nil)

	require.NoError(t, g.Load(context.Background()))
	assert.Empty(t, ids.Export().Accounts)
}

func TestGateway_LoadLegacyPlaintext(t *testing.T) {
	dir := t.TempDir()
	legacy := `{
  "userLoginData": [["ada", {"userId": "user_1", "password": "pw1", "email": "", "createdAt": "2024-01-01T00:00:00Z"}]],
  "userAccounts": [["user_1", {"userId": "user_1", "username": "ada", "name": "Ada", "email": "", "language": "tr",
    "personality": "friend", "createdAt": "2024-01-01T00:00:00Z", "lastLoginAt": "2024-01-01T00:00:00Z", "isActive": true}]],
  "timestamp": "2024-01-01T00:00:00Z"
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte(legacy), 0o644))
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)

	ids := identity.NewStore(nil)
	require.NoError(t, NewGateway(backend, ids, conversation.NewArchive(), zaptest.NewLogger(t)).Load(context.Background()))

	cred := ids.Export().Logins["ada"]
	assert.Empty(t, cred.Password)
	assert.NotEmpty(t, cred.PasswordHash)
	_, _, err = ids.Authenticate(context.Background(), "ada", "pw1")
	assert.NoError(t, err)
}

func TestGateway_LoadMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "memories.json"), []byte("{not json"), 0o644))
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)

	err = NewGateway(backend, identity.NewStore(nil), conversation.NewArchive(), nil).Load(context.Background())
	assert.Error(t, err)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestGateway_DBBackendRoundTripAndUpsert(t *testing.T) {
	backend, err := NewDBBackend(openTestDB(t))
	require.NoError(t, err)

	ids, archive, _ := seedStores(t)
	g := NewGateway(backend, ids, archive, zaptest.NewLogger(t))
	require.NoError(t, g.Save(context.Background()))

	// second save overwrites the same three rows
	archive.AppendTurn("someone", "c1", conversation.RoleUser, "more")
	require.NoError(t, g.Save(context.Background()))

	var count int64
	require.NoError(t, backend.db.Model(&Snapshot{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)

	archive2 := conversation.NewArchive()
	ids2 := identity.NewStore(nil)
	require.NoError(t, NewGateway(backend, ids2, archive2, nil).Load(context.Background()))
	requireSameState(t, ids, ids2, archive, archive2)
}

// cmp uses Time.Equal, so the monotonic reading lost in encoding does not matter.
func requireSameState(t *testing.T, ids, ids2 *identity.Store, archive, archive2 *conversation.Archive) {
	t.Helper()
	if diff := cmp.Diff(ids.Export(), ids2.Export()); diff != "" {
		t.Fatalf("identity state mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(archive.Export(), archive2.Export()); diff != "" {
		t.Fatalf("conversation state mismatch (-want +got):\n%s", diff)
	}
}

type countingBackend struct {
	writes chan string
}

func (c *countingBackend) Read(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (c *countingBackend) Write(_ context.Context, name string, _ []byte) error {
	select {
	case c.writes <- name:
	default:
	}
	return nil
}

func TestGateway_RunStopsWithContext(t *testing.T) {
	backend := &countingBackend{writes: make(chan string, 16)}
	g := NewGateway(backend, identity.NewStore(nil), conversation.NewArchive(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		g.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	select {
	case <-backend.writes:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a periodic save")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
