package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dis-cadets/srt-bot/internal/attendance"
	"github.com/dis-cadets/srt-bot/internal/config"
	"github.com/dis-cadets/srt-bot/internal/ctxutil"
	"github.com/dis-cadets/srt-bot/internal/export"
	"github.com/dis-cadets/srt-bot/internal/logging"
	"github.com/dis-cadets/srt-bot/internal/metrics"
	"github.com/dis-cadets/srt-bot/internal/models"
	"github.com/dis-cadets/srt-bot/internal/observability"
)

// Event is one incoming update reduced to what the conversation needs.
type Event struct {
	Private    bool
	ChatID     int64
	ChatTitle  string
	UserID     int64
	Username   string
	Text       string // message text; empty for button presses
	Action     string // callback data; empty for messages
	CallbackID string
	MessageID  int // message the pressed button belongs to
}

type Button struct {
	Label  string
	Action string
}

type Document struct {
	Name string
	Data []byte
}

// Reply is rendered by the transport. Edit replaces the message the button was pressed on;
// Notice is shown as the callback answer.
type Reply struct {
	Text     string
	Buttons  []Button
	Edit     bool
	Notice   string
	Document *Document
}

type Deps struct {
	Registry   *attendance.Registry
	Ledger     *attendance.Ledger
	Roster     *attendance.Roster
	Activities attendance.ActivityStore
	Engine     attendance.Engine
	Scope      config.RosterScope
	IsAdmin    func(telegramID int64) bool
	Now        func() time.Time
	Log        *zap.Logger
}

// Conversation derives every decision from storage; it keeps no per-user session.
type Conversation struct {
	Deps
}

func NewConversation(d Deps) *Conversation {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.IsAdmin == nil {
		d.IsAdmin = func(int64) bool { return false }
	}
	d.Log = d.Log.Named("conversation")
	return &Conversation{Deps: d}
}

func (c *Conversation) Handle(ctx context.Context, ev Event) []Reply {
	ctx = ctxutil.WithChatID(ctx, ev.ChatID)
	if ev.Action != "" {
		ctx = ctxutil.WithOp(ctx, ev.Action)
	} else if cmd := command(ev.Text); cmd != "" {
		ctx = ctxutil.WithOp(ctx, cmd)
	}

	var (
		out []Reply
		err error
	)
	switch {
	case !ev.Private && ev.Action != "":
		out = []Reply{{}}
	case !ev.Private:
		out, err = c.handleGroup(ctx, ev)
	case ev.Action != "":
		out, err = c.handleAction(ctx, ev)
	default:
		out, err = c.handlePrivateText(ctx, ev)
	}
	if err != nil {
		return c.fail(ctx, ev, err)
	}
	return out
}

// command returns the leading /command of text without any @botname suffix.
func command(text string) string {
	f := strings.Fields(text)
	if len(f) == 0 || !strings.HasPrefix(f[0], "/") {
		return ""
	}
	cmd := f[0]
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd)
}

func (c *Conversation) handlePrivateText(ctx context.Context, ev Event) ([]Reply, error) {
	cadet, err := c.Registry.FindByTelegramID(ctx, ev.UserID)
	if err != nil {
		return nil, err
	}
	if cadet != nil {
		ctx = ctxutil.WithCadetID(ctx, cadet.ID)
	}

	switch command(ev.Text) {
	case "/start":
		if cadet == nil {
			return []Reply{{Text: MsgAskName}}, nil
		}
		m, err := c.menu(ctx, *cadet, false)
		if err != nil {
			return nil, err
		}
		return []Reply{{Text: welcome(cadet.Name)}, m}, nil
	case "/export":
		return c.export(ctx, ev, nil)
	}

	if cadet != nil {
		m, err := c.menu(ctx, *cadet, false)
		if err != nil {
			return nil, err
		}
		return []Reply{m}, nil
	}
	if command(ev.Text) != "" {
		return []Reply{{Text: MsgAskName}}, nil
	}
	return c.register(ctx, ev)
}

func (c *Conversation) register(ctx context.Context, ev Event) ([]Reply, error) {
	var handle *string
	if ev.Username != "" {
		h := ev.Username
		handle = &h
	}
	cadet, err := c.Registry.ResolveOrRegister(ctx, ev.UserID, handle, ev.Text)
	switch {
	case errors.Is(err, attendance.ErrDuplicateName):
		return []Reply{{Text: MsgNameTaken}}, nil
	case errors.Is(err, attendance.ErrInvalidName):
		return []Reply{{Text: MsgNameEmpty}}, nil
	case err != nil:
		return nil, err
	}
	ctx = ctxutil.WithCadetID(ctx, cadet.ID)
	m, err := c.menu(ctx, *cadet, false)
	if err != nil {
		return nil, err
	}
	return []Reply{{Text: MsgRegistered}, {Text: welcome(cadet.Name)}, m}, nil
}

func (c *Conversation) handleAction(ctx context.Context, ev Event) ([]Reply, error) {
	cadet, err := c.Registry.FindByTelegramID(ctx, ev.UserID)
	if err != nil {
		return nil, err
	}
	if cadet == nil {
		return []Reply{{Text: MsgAskName}}, nil
	}
	ctx = ctxutil.WithCadetID(ctx, cadet.ID)

	now := c.Now()
	today, err := c.Ledger.TodayRecord(ctx, *cadet, now)
	if err != nil {
		return nil, err
	}
	allowed := c.Engine.Next(today, now)

	switch {
	case ev.Action == ActMenu:
		return []Reply{menuReply(allowed, today, true)}, nil
	case ev.Action == ActDetails:
		return c.details(ctx, *cadet, allowed, now)
	case ev.Action == ActClosed:
		return []Reply{{Notice: MsgClosed}}, nil
	case ev.Action == ActBook:
		if !allowed.Contains(attendance.ActionBook) {
			return c.stale(allowed, today), nil
		}
		return c.pickActivity(ctx)
	case strings.HasPrefix(ev.Action, actActivityPrefix):
		if !allowed.Contains(attendance.ActionBook) {
			return c.stale(allowed, today), nil
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(ev.Action, actActivityPrefix), 10, 64)
		if err != nil {
			return c.unknown(allowed, today), nil
		}
		return c.book(ctx, *cadet, id, now)
	case ev.Action == ActCheckIn:
		if !allowed.Contains(attendance.ActionCheckIn) {
			return c.stale(allowed, today), nil
		}
		return c.transition(ctx, *cadet, now, attendance.ActionCheckIn)
	case ev.Action == ActCheckOut:
		if !allowed.Contains(attendance.ActionCheckOut) {
			return c.stale(allowed, today), nil
		}
		return c.transition(ctx, *cadet, now, attendance.ActionCheckOut)
	}
	return c.unknown(allowed, today), nil
}

func (c *Conversation) pickActivity(ctx context.Context) ([]Reply, error) {
	acts, err := c.Activities.ListActivities(ctx)
	if err != nil {
		return nil, err
	}
	if len(acts) == 0 {
		return []Reply{{Text: MsgNoActivities, Edit: true}}, nil
	}
	buttons := make([]Button, 0, len(acts))
	for _, a := range acts {
		buttons = append(buttons, Button{Label: a.Name, Action: actActivityPrefix + strconv.FormatInt(a.ID, 10)})
	}
	return []Reply{{Text: MsgPickActivity, Buttons: buttons, Edit: true}}, nil
}

func (c *Conversation) book(ctx context.Context, cadet models.Cadet, activityID int64, now time.Time) ([]Reply, error) {
	rec, err := c.Ledger.Book(ctx, cadet, activityID, now)
	if errors.Is(err, attendance.ErrActivityNotFound) {
		out, err := c.pickActivity(ctx)
		if err != nil {
			return nil, err
		}
		out[0].Notice = MsgActivityGone
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	next := menuReply(c.Engine.Next(rec, now), rec, false)
	return []Reply{{Text: MsgBooked, Edit: true}, next}, nil
}

func (c *Conversation) transition(ctx context.Context, cadet models.Cadet, now time.Time, a attendance.Action) ([]Reply, error) {
	var err error
	if a == attendance.ActionCheckIn {
		err = c.Ledger.CheckIn(ctx, cadet, now)
	} else {
		err = c.Ledger.CheckOut(ctx, cadet, now)
	}
	if errors.Is(err, attendance.ErrPrecondition) {
		// the offered set said yes but the row disagreed; another update won the race
		observability.CaptureCtx(ctx, err)
		today, terr := c.Ledger.TodayRecord(ctx, cadet, now)
		if terr != nil {
			return nil, terr
		}
		return c.stale(c.Engine.Next(today, now), today), nil
	}
	if err != nil {
		return nil, err
	}

	if a == attendance.ActionCheckOut {
		return []Reply{{Text: MsgCheckedOut, Buttons: []Button{{Label: LabelMenu, Action: ActMenu}}, Edit: true}}, nil
	}
	today, err := c.Ledger.TodayRecord(ctx, cadet, now)
	if err != nil {
		return nil, err
	}
	r := menuReply(c.Engine.Next(today, now), today, true)
	r.Text = MsgCheckedIn
	return []Reply{r}, nil
}

func (c *Conversation) details(ctx context.Context, cadet models.Cadet, allowed attendance.ActionSet, now time.Time) ([]Reply, error) {
	line, ok, err := c.Ledger.SummaryLine(ctx, cadet)
	if err != nil {
		return nil, err
	}
	if !ok {
		line = MsgNoRecord
	}
	date := now.In(c.Engine.Location).Format("02-01-06")
	buttons := make([]Button, 0, len(allowed))
	for _, a := range allowed {
		buttons = append(buttons, actionButton(a))
	}
	return []Reply{{Text: fmt.Sprintf("SRT Information for %s:\n%s", date, line), Buttons: buttons, Edit: true}}, nil
}

func (c *Conversation) menu(ctx context.Context, cadet models.Cadet, edit bool) (Reply, error) {
	now := c.Now()
	today, err := c.Ledger.TodayRecord(ctx, cadet, now)
	if err != nil {
		return Reply{}, err
	}
	return menuReply(c.Engine.Next(today, now), today, edit), nil
}

func menuReply(allowed attendance.ActionSet, today *models.AttendanceRecord, edit bool) Reply {
	if allowed.Contains(attendance.ActionClosed) {
		return Reply{Text: MsgClosed, Buttons: []Button{actionButton(attendance.ActionClosed)}, Edit: edit}
	}
	buttons := make([]Button, 0, len(allowed)+1)
	for _, a := range allowed {
		buttons = append(buttons, actionButton(a))
	}
	if today != nil && (today.Status == models.StatusPending || today.Status == models.StatusOngoing) {
		buttons = append(buttons, actionButton(attendance.ActionViewDetails))
	}
	return Reply{Text: MsgMenu, Buttons: buttons, Edit: edit}
}

func (c *Conversation) stale(allowed attendance.ActionSet, today *models.AttendanceRecord) []Reply {
	r := menuReply(allowed, today, true)
	r.Notice = MsgStale
	return []Reply{r}
}

func (c *Conversation) unknown(allowed attendance.ActionSet, today *models.AttendanceRecord) []Reply {
	r := menuReply(allowed, today, true)
	r.Notice = MsgUnknownAction
	return []Reply{r}
}

func (c *Conversation) handleGroup(ctx context.Context, ev Event) ([]Reply, error) {
	cmd := command(ev.Text)
	if cmd != "/start" && cmd != "/srt" && cmd != "/export" {
		return nil, nil
	}

	group, err := c.Registry.ResolveOrRegisterGroup(ctx, ev.ChatID, ev.ChatTitle)
	if err != nil {
		return nil, err
	}
	cadet, err := c.Registry.FindByTelegramID(ctx, ev.UserID)
	if err != nil {
		return nil, err
	}
	if cadet != nil {
		ctx = ctxutil.WithCadetID(ctx, cadet.ID)
		if _, err := c.Registry.EnsureMembership(ctx, cadet.ID, group.ID); err != nil {
			return nil, err
		}
	}

	var scope *int64
	if c.Scope == config.ScopeGroup {
		scope = &group.ID
	}
	if cmd == "/export" {
		return c.export(ctx, ev, &group.ID)
	}

	acts, err := c.Activities.ListActivities(ctx)
	if err != nil {
		return nil, err
	}
	text, err := c.Roster.BroadcastSummary(ctx, acts, scope, c.Now())
	if err != nil {
		return nil, err
	}
	return []Reply{{Text: text}}, nil
}

// export sends the latest record of every cadet in scope as an xlsx document.
func (c *Conversation) export(ctx context.Context, ev Event, groupID *int64) ([]Reply, error) {
	if !c.IsAdmin(ev.UserID) {
		return []Reply{{Text: MsgAdminOnly}}, nil
	}
	rows, err := c.Roster.Snapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []Reply{{Text: MsgEmptyExport}}, nil
	}
	now := c.Now()
	data, err := export.RosterXLSX(rows, c.Engine.Location, now)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("srt-roster-%s.xlsx", now.In(c.Engine.Location).Format("20060102-1504"))
	return []Reply{{
		Text:     fmt.Sprintf("SRT roster, %d cadets", len(rows)),
		Document: &Document{Name: name, Data: data},
	}}, nil
}

func (c *Conversation) fail(ctx context.Context, ev Event, err error) []Reply {
	metrics.HandlerErrors.Inc()
	logging.With(c.Log, ctx).Error("update failed", zap.Error(err))
	observability.CaptureCtx(ctx, err)
	r := Reply{Text: MsgTryAgain}
	if ev.CallbackID != "" {
		r.Notice = MsgTryAgain
	}
	return []Reply{r}
}
