// Package command handles slash commands. Any input starting with "/" is
// answered here and never reaches the model.
package command

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/suPer8Hu/ai-companion/internal/identity"
	"github.com/suPer8Hu/ai-companion/internal/persona"
)

const (
	Prefix            = "/"
	maxListedResearch = 10
)

// IsCommand reports whether text is a slash command.
func IsCommand(text string) bool {
	return strings.HasPrefix(text, Prefix)
}

// Identities is the subset of the identity store commands touch.
type Identities interface {
	Resolve(ctx context.Context, sessionID string) (identity.Identity, error)
	SetGuestName(sessionID, name string) identity.GuestProfile
	SetGuestLanguage(sessionID string, lang persona.Language) identity.GuestProfile
	SetGuestPersonality(sessionID, tag string) identity.GuestProfile
	UpdateAccount(userID string, fn func(*identity.Account)) (identity.Account, error)
	AddInterest(userID, interest string) (bool, error)
}

type HistoryClearer interface {
	Clear(sessionID string)
}

type Interpreter struct {
	identities Identities
	history    HistoryClearer
	workspaces *Workspaces
	personas   *persona.Table
	catalog    *Catalog
	pools      *Pools

	exact   map[string]handler
	withArg map[string]handler

	// Intn returns a value in [0, n). Replace it for deterministic picks.
	Intn func(n int) int
	Now  func() time.Time
}

func NewInterpreter(ids Identities, history HistoryClearer, workspaces *Workspaces, personas *persona.Table) *Interpreter {
	in := &Interpreter{
		identities: ids,
		history:    history,
		workspaces: workspaces,
		personas:   personas,
		catalog:    BuiltinCatalog(),
		pools:      BuiltinPools(),
		Intn:       rand.IntN,
		Now:        time.Now,
	}
	in.exact = in.exactCommands()
	in.withArg = in.argCommands()
	return in
}

// Workspace returns the creative state of a session.
func (in *Interpreter) Workspace(sessionID string) Workspace {
	return in.workspaces.Get(sessionID)
}

type handler func(ctx context.Context, req *request) (string, error)

type request struct {
	sessionID string
	name      string
	arg       string
	id        identity.Identity
	lang      persona.Language
}

func (r *request) userID() string {
	if r.id.Account == nil {
		return ""
	}
	return r.id.Account.UserID
}

// Execute runs one command and returns the localized reply. Unknown
// commands get the unknown-command reply.
func (in *Interpreter) Execute(ctx context.Context, sessionID, text string) (string, error) {
	id, err := in.identities.Resolve(ctx, sessionID)
	if err != nil {
		return "", err
	}
	name, arg := split(text)
	req := &request{sessionID: sessionID, name: name, arg: arg, id: id, lang: id.Language()}

	if h, ok := in.exact[name]; ok && arg == "" {
		return h(ctx, req)
	}
	if h, ok := in.withArg[name]; ok {
		return h(ctx, req)
	}
	return in.render(req.lang, "unknownCommand", map[string]string{"Command": strings.TrimSpace(text)}), nil
}

func split(text string) (name, arg string) {
	text = strings.TrimSpace(text)
	name, arg, _ = strings.Cut(text, " ")
	return strings.ToLower(name), strings.TrimSpace(arg)
}

func (in *Interpreter) exactCommands() map[string]handler {
	return map[string]handler{
		"/help":          in.static("help"),
		"/commands":      in.static("commands"),
		"/about":         in.static("about"),
		"/creative-help": in.static("creativeHelp"),
		"/clear":         in.clear("cleared"),
		"/reset":         in.clear("reset"),
		"/profile":       in.profile,
		"/whoami":        in.whoami,
		"/riddle":        in.riddle,
		"/formal":        in.tone("formal", "toneFormal"),
		"/professional":  in.tone("professional", "toneProfessional"),
		"/distant":       in.tone("distant", "toneDistant"),
		"/friendly":      in.tone(persona.DefaultTag, "toneFriendly"),
		"/myinterests":   in.accountOnly(in.myInterests),
		"/mystats":       in.accountOnly(in.myStats),
		"/myresearch":    in.accountOnly(in.myResearch),
	}
}

func (in *Interpreter) argCommands() map[string]handler {
	return map[string]handler{
		"/story":       in.story,
		"/brainstorm":  in.brainstorm,
		"/poem":        in.poem,
		"/personality": in.personality,
		"/lang":        in.language,
		"/setname":     in.setName,
		"/addinterest": in.accountOnly(in.addInterest),
	}
}

func (in *Interpreter) render(lang persona.Language, key string, data any) string {
	return in.catalog.Render(lang, key, data)
}

func (in *Interpreter) static(key string) handler {
	return func(_ context.Context, req *request) (string, error) {
		return in.render(req.lang, key, nil), nil
	}
}

func (in *Interpreter) clear(key string) handler {
	return func(_ context.Context, req *request) (string, error) {
		in.history.Clear(req.sessionID)
		return in.render(req.lang, key, nil), nil
	}
}

func (in *Interpreter) accountOnly(next handler) handler {
	return func(ctx context.Context, req *request) (string, error) {
		if !req.id.Authenticated() {
			return in.render(req.lang, "loginRequired", nil), nil
		}
		return next(ctx, req)
	}
}

func (in *Interpreter) formatDate(t time.Time, lang persona.Language) string {
	if lang == persona.English {
		return t.Format("1/2/2006")
	}
	return t.Format("02.01.2006")
}

func (in *Interpreter) profile(_ context.Context, req *request) (string, error) {
	created := req.id.Guest.CreatedAt
	if req.id.Account != nil {
		created = req.id.Account.CreatedAt
	}
	session := req.sessionID
	if r := []rune(session); len(r) > 8 {
		session = string(r[len(r)-8:])
	}
	return in.render(req.lang, "profile", map[string]string{
		"Name":        req.id.DisplayName(),
		"Language":    req.lang.DisplayName(req.lang),
		"Personality": in.personas.Lookup(req.id.Personality(), req.lang).Name,
		"Session":     session,
		"Created":     in.formatDate(created, req.lang),
	}), nil
}

func (in *Interpreter) whoami(_ context.Context, req *request) (string, error) {
	name := req.id.DisplayName()
	if name == "" {
		return in.render(req.lang, "unknownUser", nil), nil
	}
	return in.render(req.lang, "greeting", map[string]string{"Name": name}), nil
}

func (in *Interpreter) setName(_ context.Context, req *request) (string, error) {
	if req.arg == "" {
		return in.render(req.lang, "nameMissing", nil), nil
	}
	in.identities.SetGuestName(req.sessionID, req.arg)
	if uid := req.userID(); uid != "" {
		if _, err := in.identities.UpdateAccount(uid, func(a *identity.Account) { a.Name = req.arg }); err != nil {
			return "", err
		}
	}
	return in.render(req.lang, "nameSet", map[string]string{"Name": req.arg}), nil
}

func (in *Interpreter) language(_ context.Context, req *request) (string, error) {
	lang, ok := persona.ParseLanguage(req.arg)
	if !ok {
		return in.render(req.lang, "invalidLanguage", nil), nil
	}
	in.identities.SetGuestLanguage(req.sessionID, lang)
	if uid := req.userID(); uid != "" {
		if _, err := in.identities.UpdateAccount(uid, func(a *identity.Account) { a.Language = lang }); err != nil {
			return "", err
		}
	}
	return in.render(lang, "languageChanged", map[string]string{"Language": lang.DisplayName(lang)}), nil
}

func (in *Interpreter) setPersonality(req *request, tag string) error {
	in.identities.SetGuestPersonality(req.sessionID, tag)
	if uid := req.userID(); uid != "" {
		if _, err := in.identities.UpdateAccount(uid, func(a *identity.Account) { a.Personality = tag }); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) personality(_ context.Context, req *request) (string, error) {
	tag := strings.ToLower(req.arg)
	if !in.personas.Known(tag) {
		return in.render(req.lang, "invalidPersonality", nil), nil
	}
	if err := in.setPersonality(req, tag); err != nil {
		return "", err
	}
	return in.render(req.lang, "personalityChanged", map[string]string{
		"Personality": in.personas.Lookup(tag, req.lang).Name,
	}), nil
}

func (in *Interpreter) tone(tag, key string) handler {
	return func(_ context.Context, req *request) (string, error) {
		if err := in.setPersonality(req, tag); err != nil {
			return "", err
		}
		return in.render(req.lang, key, nil), nil
	}
}

func (in *Interpreter) addInterest(_ context.Context, req *request) (string, error) {
	if req.arg == "" {
		return in.render(req.lang, "interestMissing", nil), nil
	}
	if _, err := in.identities.AddInterest(req.userID(), req.arg); err != nil {
		return "", fmt.Errorf("add interest: %w", err)
	}
	return in.render(req.lang, "interestAdded", map[string]string{"Interest": req.arg}), nil
}

func (in *Interpreter) myInterests(_ context.Context, req *request) (string, error) {
	if req.id.Memory == nil || len(req.id.Memory.Interests) == 0 {
		return in.render(req.lang, "noInterests", nil), nil
	}
	return in.render(req.lang, "interests", map[string][]string{"Items": req.id.Memory.Interests}), nil
}

func (in *Interpreter) myResearch(_ context.Context, req *request) (string, error) {
	if req.id.Memory == nil || len(req.id.Memory.Research) == 0 {
		return in.render(req.lang, "noResearch", nil), nil
	}
	items := req.id.Memory.Research
	if len(items) > maxListedResearch {
		items = items[len(items)-maxListedResearch:]
	}
	return in.render(req.lang, "research", map[string][]string{"Items": items}), nil
}

func (in *Interpreter) myStats(_ context.Context, req *request) (string, error) {
	acc := req.id.Account
	messages, interests, research := 0, 0, 0
	if req.id.Interaction != nil {
		messages = req.id.Interaction.TotalMessages
	}
	if req.id.Memory != nil {
		interests, research = len(req.id.Memory.Interests), len(req.id.Memory.Research)
	}
	return in.render(req.lang, "stats", map[string]any{
		"Name":        acc.Name,
		"Language":    acc.Language.OrDefault().DisplayName(req.lang),
		"Personality": in.personas.Lookup(acc.Personality, req.lang).Name,
		"Messages":    messages,
		"Interests":   interests,
		"Research":    research,
		"Joined":      in.formatDate(acc.CreatedAt, req.lang),
		"LastLogin":   in.formatDate(acc.LastLoginAt, req.lang),
	}), nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (in *Interpreter) story(_ context.Context, req *request) (string, error) {
	p := Story{
		Theme:     orDefault(req.arg, defaultTheme),
		Opening:   pick(in.pools.Story[req.lang], in.Intn),
		StartedAt: in.Now(),
	}
	in.workspaces.SetActive(req.sessionID, p)
	return in.render(req.lang, "story", p), nil
}

func (in *Interpreter) brainstorm(_ context.Context, req *request) (string, error) {
	p := Brainstorm{
		Topic:     orDefault(req.arg, defaultTopic),
		Technique: pick(in.pools.Brainstorm[req.lang], in.Intn),
		StartedAt: in.Now(),
	}
	in.workspaces.SetActive(req.sessionID, p)
	return in.render(req.lang, "brainstorm", p), nil
}

func (in *Interpreter) poem(_ context.Context, req *request) (string, error) {
	p := Poem{Style: orDefault(req.arg, defaultStyle), StartedAt: in.Now()}
	in.workspaces.SetActive(req.sessionID, p)
	return in.render(req.lang, "poem", p), nil
}

func (in *Interpreter) riddle(_ context.Context, req *request) (string, error) {
	p := Riddle{Riddle: pick(in.pools.Riddle[req.lang], in.Intn), StartedAt: in.Now()}
	in.workspaces.SetActive(req.sessionID, p)
	return in.render(req.lang, "riddle", p), nil
}
