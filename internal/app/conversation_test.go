package app

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dis-cadets/srt-bot/internal/attendance"
	"github.com/dis-cadets/srt-bot/internal/attendance/memstore"
	"github.com/dis-cadets/srt-bot/internal/config"
	"github.com/dis-cadets/srt-bot/internal/models"
)

var sgt = time.FixedZone("SGT", 8*3600)

const groupChat = int64(-100200)

type harness struct {
	t     *testing.T
	store *memstore.Store
	conv  *Conversation
	now   time.Time
}

func newHarness(t *testing.T, scope config.RosterScope) *harness {
	t.Helper()
	h := &harness{t: t, store: memstore.New(), now: time.Date(2024, time.March, 4, 8, 0, 0, 0, sgt)}
	e := attendance.NewEngine(attendance.DefaultCutoffHour, sgt)
	h.conv = NewConversation(Deps{
		Registry:   attendance.NewRegistry(h.store, nil),
		Ledger:     attendance.NewLedger(h.store, e, nil),
		Roster:     attendance.NewRoster(h.store, e, nil),
		Activities: h.store,
		Engine:     e,
		Scope:      scope,
		IsAdmin:    func(id int64) bool { return id == 1 },
		Now:        func() time.Time { return h.now },
	})
	return h
}

func (h *harness) at(hour, min int) {
	h.now = time.Date(h.now.Year(), h.now.Month(), h.now.Day(), hour, min, 0, 0, sgt)
}

func (h *harness) say(user int64, text string) []Reply {
	return h.conv.Handle(context.Background(), Event{Private: true, ChatID: user, UserID: user, Text: text})
}

func (h *harness) press(user int64, action string) []Reply {
	return h.conv.Handle(context.Background(), Event{
		Private: true, ChatID: user, UserID: user, Action: action, CallbackID: "cb", MessageID: 10,
	})
}

func (h *harness) inGroup(user int64, text string) []Reply {
	return h.conv.Handle(context.Background(), Event{ChatID: groupChat, ChatTitle: "Alpha Coy", UserID: user, Text: text})
}

func (h *harness) register(user int64, name string) {
	h.t.Helper()
	h.say(user, "/start")
	out := h.say(user, name)
	require.Equal(h.t, MsgRegistered, out[0].Text)
}

func (h *harness) activityAction(name string) string {
	h.t.Helper()
	acts, err := h.store.ListActivities(context.Background())
	require.NoError(h.t, err)
	for _, a := range acts {
		if a.Name == name {
			return actActivityPrefix + strconv.FormatInt(a.ID, 10)
		}
	}
	h.t.Fatalf("no activity %q", name)
	return ""
}

func actions(r Reply) []string {
	var out []string
	for _, b := range r.Buttons {
		out = append(out, b.Action)
	}
	return out
}

func TestRegistrationFlow(t *testing.T) {
	h := newHarness(t, config.ScopeAll)

	out := h.say(100, "/start")
	require.Len(t, out, 1)
	require.Equal(t, MsgAskName, out[0].Text)

	out = h.say(100, "Tan Wei Ming")
	require.Len(t, out, 3)
	require.Equal(t, MsgRegistered, out[0].Text)
	require.Equal(t, "Welcome, Tan Wei Ming!", out[1].Text)
	require.Equal(t, MsgMenu, out[2].Text)
	require.Equal(t, []string{ActBook}, actions(out[2]))

	out = h.say(100, "/start")
	require.Equal(t, "Welcome, Tan Wei Ming!", out[0].Text)
	require.Equal(t, []string{ActBook}, actions(out[1]))
}

func TestRegistrationDuplicateName(t *testing.T) {
	h := newHarness(t, config.ScopeAll)
	h.register(100, "Tan Wei Ming")

	out := h.say(200, "Tan Wei Ming")
	require.Equal(t, MsgNameTaken, out[0].Text)
	require.Equal(t, 1, h.store.CadetCount())

	out = h.say(200, "Tan Wei Ming Jr")
	require.Equal(t, MsgRegistered, out[0].Text)
	require.Equal(t, 2, h.store.CadetCount())
}

func TestBookCheckInCheckOut(t *testing.T) {
	h := newHarness(t, config.ScopeAll)
	h.register(100, "Tan Wei Ming")

	out := h.press(100, ActBook)
	require.Equal(t, MsgPickActivity, out[0].Text)
	require.True(t, out[0].Edit)
	require.Len(t, out[0].Buttons, len(memstore.DefaultActivities))

	out = h.press(100, h.activityAction("Run - Wingline"))
	require.Len(t, out, 2)
	require.Equal(t, MsgBooked, out[0].Text)
	require.Equal(t, []string{ActCheckIn, ActDetails}, actions(out[1]))

	h.at(8, 5)
	out = h.press(100, ActCheckIn)
	require.Equal(t, MsgCheckedIn, out[0].Text)
	require.Equal(t, []string{ActCheckOut, ActDetails}, actions(out[0]))

	out = h.press(100, ActDetails)
	require.Equal(t, "SRT Information for 04-03-24:\nTan Wei Ming | Run - Wingline | Started at 0805 | Ongoing", out[0].Text)
	require.Equal(t, []string{ActCheckOut}, actions(out[0]))

	h.at(9, 0)
	out = h.press(100, ActCheckOut)
	require.Equal(t, MsgCheckedOut, out[0].Text)
	require.Equal(t, []string{ActMenu}, actions(out[0]))

	out = h.press(100, ActMenu)
	require.Equal(t, []string{ActBook}, actions(out[0]), "re-booking allowed before cutoff")

	h.at(21, 30)
	out = h.press(100, ActMenu)
	require.Equal(t, MsgClosed, out[0].Text)
	require.Equal(t, []string{ActClosed}, actions(out[0]))

	out = h.press(100, ActClosed)
	require.Equal(t, MsgClosed, out[0].Notice)
}

func TestStaleActionIsNotExecuted(t *testing.T) {
	h := newHarness(t, config.ScopeAll)
	h.register(100, "Tan Wei Ming")

	out := h.press(100, ActCheckOut)
	require.Equal(t, MsgStale, out[0].Notice)
	require.Equal(t, []string{ActBook}, actions(out[0]))

	h.press(100, h.activityAction("Run - Wingline"))
	out = h.press(100, h.activityAction("Gym - Wingline"))
	require.Equal(t, MsgStale, out[0].Notice, "booking is not offered while pending")

	c, err := h.store.CadetByTelegramID(context.Background(), 100)
	require.NoError(t, err)
	recs := h.store.RecordsOf(c.ID)
	require.Len(t, recs, 1)
	require.Equal(t, models.StatusPending, recs[0].Status)
}

func TestYesterdaysRecordDoesNotBlockToday(t *testing.T) {
	h := newHarness(t, config.ScopeAll)
	h.register(100, "Tan Wei Ming")
	h.press(100, h.activityAction("Run - Wingline"))

	h.now = h.now.AddDate(0, 0, 1)
	out := h.say(100, "/start")
	require.Equal(t, []string{ActBook}, actions(out[1]))
}

func TestUnregisteredButtonPress(t *testing.T) {
	h := newHarness(t, config.ScopeAll)
	out := h.press(100, ActBook)
	require.Equal(t, MsgAskName, out[0].Text)
}

func TestGroupBroadcast(t *testing.T) {
	h := newHarness(t, config.ScopeAll)
	h.register(100, "Alice Lim")
	h.register(200, "Bala Kumar")

	out := h.inGroup(100, "/srt@DisSrtBot")
	require.Equal(t, attendance.MsgNoneActive, out[0].Text)

	h.press(100, h.activityAction("Run - Wingline"))
	h.press(200, h.activityAction("Gym - Wingline"))
	h.at(8, 10)
	h.press(200, ActCheckIn)

	out = h.inGroup(100, "/start")
	require.Equal(t, "Cadets participating in SRT on 2024-03-04:\n\n"+
		"Run - Wingline\nAlice Lim | Not checked in\n\n"+
		"Gym - Wingline\nBala Kumar | Started at 0810", out[0].Text)

	require.Nil(t, h.inGroup(100, "hello all"))
}

func TestGroupScopeAndMembership(t *testing.T) {
	h := newHarness(t, config.ScopeGroup)
	h.register(100, "Alice Lim")
	h.register(200, "Bala Kumar")
	h.press(100, h.activityAction("Run - Wingline"))
	h.press(200, h.activityAction("Run - Wingline"))

	out := h.inGroup(100, "/srt")
	require.Contains(t, out[0].Text, "Alice Lim")
	require.NotContains(t, out[0].Text, "Bala Kumar")

	g, err := h.store.GroupByChatID(context.Background(), groupChat)
	require.NoError(t, err)
	require.NotNil(t, g)
	c, err := h.store.CadetByTelegramID(context.Background(), 100)
	require.NoError(t, err)
	require.Contains(t, h.store.GroupsOf(c.ID), g.ID)
}

func TestBroadcastAfterCutoff(t *testing.T) {
	h := newHarness(t, config.ScopeAll)
	h.at(22, 0)
	out := h.inGroup(100, "/srt")
	require.Equal(t, attendance.MsgAllCheckedOut, out[0].Text)
}

func TestExport(t *testing.T) {
	h := newHarness(t, config.ScopeAll)
	h.register(1, "Admin Cadet")

	out := h.say(1, "/export")
	require.Equal(t, MsgEmptyExport, out[0].Text)

	h.press(1, h.activityAction("Run - Wingline"))
	out = h.say(1, "/export")
	require.NotNil(t, out[0].Document)
	require.True(t, strings.HasSuffix(out[0].Document.Name, ".xlsx"))
	require.NotEmpty(t, out[0].Document.Data)

	h.register(100, "Alice Lim")
	out = h.say(100, "/export")
	require.Equal(t, MsgAdminOnly, out[0].Text)
}

func TestStorageFailure(t *testing.T) {
	h := newHarness(t, config.ScopeAll)
	h.register(100, "Alice Lim")

	h.store.FailWith(errors.New("connection reset"))
	out := h.press(100, ActBook)
	require.Equal(t, MsgTryAgain, out[0].Text)
	require.Equal(t, MsgTryAgain, out[0].Notice)

	out = h.inGroup(100, "/srt")
	require.Equal(t, MsgTryAgain, out[0].Text)
}
