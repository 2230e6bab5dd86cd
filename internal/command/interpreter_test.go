package command

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suPer8Hu/ai-companion/internal/conversation"
	"github.com/suPer8Hu/ai-companion/internal/identity"
	"github.com/suPer8Hu/ai-companion/internal/persona"
)

type fixture struct {
	ids     *identity.Store
	buffers *conversation.Buffers
	in      *Interpreter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ids := identity.NewStore(nil)
	buffers := conversation.NewBuffers()
	in := NewInterpreter(ids, buffers, NewWorkspaces(), persona.Builtin())
	in.Intn = func(n int) int { return n - 1 }
	in.Now = func() time.Time { return time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC) }
	return &fixture{ids: ids, buffers: buffers, in: in}
}

func (f *fixture) run(t *testing.T, sessionID, text string) string {
	t.Helper()
	reply, err := f.in.Execute(context.Background(), sessionID, text)
	require.NoError(t, err)
	return reply
}

func (f *fixture) login(t *testing.T, username string) (identity.Account, string) {
	t.Helper()
	acc, sid, err := f.ids.Register(context.Background(), identity.RegisterInput{Username: username, Password: "pw"})
	require.NoError(t, err)
	return acc, sid
}

func TestIsCommand(t *testing.T) {
	assert.True(t, IsCommand("/help"))
	assert.True(t, IsCommand("/nope"))
	assert.False(t, IsCommand("hello /help"))
}

func TestSetNameThenWhoami(t *testing.T) {
	f := newFixture(t)

	assert.Contains(t, f.run(t, "s1", "/whoami"), "Henüz kendinizi tanıtmadınız")
	assert.Contains(t, f.run(t, "s1", "/setname Ada"), "Ada")
	assert.Contains(t, f.run(t, "s1", "/whoami"), "Ada")

	assert.Contains(t, f.run(t, "s1", "/setname"), "İsim belirtmediniz")
}

func TestLangSwitchesHelp(t *testing.T) {
	f := newFixture(t)

	assert.Contains(t, f.run(t, "s1", "/help"), "Yardım Menüsü")
	assert.Equal(t, "🌐 Language changed to English!", f.run(t, "s1", "/lang en"))
	help := f.run(t, "s1", "/help")
	assert.Contains(t, help, "Help Menu")
	assert.NotContains(t, help, "Yardım")

	assert.Contains(t, f.run(t, "s1", "/lang de"), "Invalid language")
	assert.Equal(t, persona.English, f.ids.Guest("s1").Language)
}

func TestUnknownCommand(t *testing.T) {
	f := newFixture(t)
	reply := f.run(t, "s1", "/dance now")
	assert.Contains(t, reply, "Bilinmeyen komut: /dance now")

	// exact commands do not take arguments
	assert.Contains(t, f.run(t, "s1", "/help me"), "Bilinmeyen komut")
}

func TestCommandNameIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	assert.Contains(t, f.run(t, "s1", "  /HELP "), "Yardım Menüsü")
}

func TestClearAndReset(t *testing.T) {
	f := newFixture(t)
	f.buffers.Append("s1", conversation.Turn{Role: conversation.RoleUser, Content: "hi"})

	assert.Contains(t, f.run(t, "s1", "/clear"), "temizlendi")
	assert.Empty(t, f.buffers.History("s1"))

	f.buffers.Append("s1", conversation.Turn{Role: conversation.RoleUser, Content: "hi"})
	assert.Contains(t, f.run(t, "s1", "/reset"), "sıfırlandı")
	assert.Empty(t, f.buffers.History("s1"))
}

func TestPersonality_GuestAndAccountMirror(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Contains(t, f.run(t, "g", "/personality pirate"), "Geçersiz kişilik")
	assert.Equal(t, "🎭 Kişilik Öğretmen 👩‍🏫 olarak değiştirildi!", f.run(t, "g", "/personality Teacher"))
	assert.Equal(t, "teacher", f.ids.Guest("g").Personality)

	acc, sid := f.login(t, "ada")
	f.run(t, sid, "/distant")
	id, err := f.ids.Resolve(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, "distant", id.Account.Personality)
	assert.Equal(t, acc.UserID, id.Account.UserID)

	f.run(t, sid, "/lang en")
	id, _ = f.ids.Resolve(ctx, sid)
	assert.Equal(t, persona.English, id.Account.Language)
	assert.Contains(t, f.run(t, sid, "/friendly"), "Switched to friendly mode")
}

func TestAccountOnlyCommands(t *testing.T) {
	f := newFixture(t)
	for _, cmd := range []string{"/addinterest go", "/myinterests", "/mystats", "/myresearch"} {
		assert.Contains(t, f.run(t, "guest", cmd), "giriş yapmanız gerekiyor", cmd)
	}
}

func TestAddInterestDeduplicates(t *testing.T) {
	f := newFixture(t)
	acc, sid := f.login(t, "ada")

	assert.Contains(t, f.run(t, sid, "/myinterests"), "Henüz ilgi alanınız yok")
	f.run(t, sid, "/addinterest go")
	f.run(t, sid, "/addinterest go")
	f.run(t, sid, "/addinterest chess")
	assert.Contains(t, f.run(t, sid, "/addinterest"), "İlgi alanı belirtmediniz")

	m, err := f.ids.Memory(acc.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "chess"}, m.Interests)
	assert.Equal(t, "🎯 İlgi Alanlarınız:\n• go\n• chess", f.run(t, sid, "/myinterests"))
}

func TestMyResearchListsLastTen(t *testing.T) {
	f := newFixture(t)
	acc, sid := f.login(t, "ada")
	assert.Contains(t, f.run(t, sid, "/myresearch"), "Henüz araştırma")

	items := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}
	require.NoError(t, f.ids.AddResearch(acc.UserID, items...))
	reply := f.run(t, sid, "/myresearch")
	assert.NotContains(t, reply, "• a\n")
	assert.NotContains(t, reply, "• b\n")
	assert.Contains(t, reply, "• c\n")
	assert.Contains(t, reply, "• l")
}

func TestMyStats(t *testing.T) {
	f := newFixture(t)
	acc, sid := f.login(t, "ada")
	require.NoError(t, f.ids.RecordInteraction(acc.UserID, "hello"))

	reply := f.run(t, sid, "/mystats")
	assert.Contains(t, reply, "👤 İsim: ada")
	assert.Contains(t, reply, "🌐 Dil: Türkçe")
	assert.Contains(t, reply, "💬 Toplam Mesaj: 1")
	assert.Contains(t, reply, "🎭 Kişilik: Arkadaş 😄")
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	f.run(t, "session_0123456789", "/setname Ada")
	reply := f.run(t, "session_0123456789", "/profile")
	assert.Contains(t, reply, "İsim: Ada")
	assert.Contains(t, reply, "Oturum: 23456789")
}

func TestCreativeCommands(t *testing.T) {
	f := newFixture(t)

	reply := f.run(t, "s1", "/story korku")
	assert.Contains(t, reply, "(Tema: korku)")
	assert.Contains(t, reply, "Köprünün altında garip sesler geliyordu...")
	ws := f.in.Workspace("s1")
	story, ok := ws.Active.(Story)
	require.True(t, ok)
	assert.Equal(t, "korku", story.Theme)

	f.run(t, "s1", "/brainstorm")
	bs, ok := f.in.Workspace("s1").Active.(Brainstorm)
	require.True(t, ok)
	assert.Equal(t, "innovation", bs.Topic)
	assert.Equal(t, "Yaratıcı çözümler:", bs.Technique)

	f.run(t, "s1", "/poem")
	poem, ok := f.in.Workspace("s1").Active.(Poem)
	require.True(t, ok)
	assert.Equal(t, "free verse", poem.Style)

	f.run(t, "s1", "/lang en")
	reply = f.run(t, "s1", "/riddle")
	assert.Contains(t, reply, "Riddle Time!")
	assert.Contains(t, reply, "never in a thousand years")
	assert.Equal(t, KindRiddle, f.in.Workspace("s1").Active.Kind())
}

func TestCreativeSelectionUsesInjectedRandom(t *testing.T) {
	f := newFixture(t)
	f.in.Intn = func(int) int { return 0 }
	assert.Contains(t, f.run(t, "s1", "/story"), "Bir zamanlar uzak bir galakside...")
	assert.Contains(t, f.run(t, "s1", "/story"), "(Tema: adventure)")
}

func TestWorkspaceJSON(t *testing.T) {
	f := newFixture(t)
	b, err := json.Marshal(f.in.Workspace("none"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"activeProject":null,"history":[]}`, string(b))

	f.run(t, "s1", "/poem haiku")
	b, err = json.Marshal(f.in.Workspace("s1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"activeProject":{"type":"poem","style":"haiku","startedAt":"2025-02-03T04:05:06Z"},"history":[]}`, string(b))
}

func TestBuiltinCatalogComplete(t *testing.T) {
	c := BuiltinCatalog()
	for key := range c.templates[persona.Turkish] {
		assert.Contains(t, c.templates[persona.English], key)
	}
	assert.Equal(t, "no-such-key", c.Render(persona.English, "no-such-key", nil))
}
