package attendance_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dis-cadets/srt-bot/internal/attendance"
	"github.com/dis-cadets/srt-bot/internal/models"
)

func TestRoster_ScenarioSingleCadet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.cadet(t, 100, "Tan Wei Ming")
	run := f.activity(t, "Run - Wingline")

	_, err := f.ledger.Book(ctx, c, run.ID, at(4, 8, 0))
	require.NoError(t, err)

	rows, err := f.roster.ActivityRoster(ctx, run.ID, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Tan Wei Ming | Not checked in", attendance.FormatRosterEntry(rows[0], sgt))

	require.NoError(t, f.ledger.CheckIn(ctx, c, at(4, 8, 5)))
	rows, err = f.roster.ActivityRoster(ctx, run.ID, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Tan Wei Ming | Started at 0805", attendance.FormatRosterEntry(rows[0], sgt))

	require.NoError(t, f.ledger.CheckOut(ctx, c, at(4, 9, 0)))
	rows, err = f.roster.ActivityRoster(ctx, run.ID, nil)
	require.NoError(t, err)
	require.Empty(t, rows)

	acts, err := f.store.ListActivities(ctx)
	require.NoError(t, err)

	msg, err := f.roster.BroadcastSummary(ctx, acts, nil, at(4, 9, 1))
	require.NoError(t, err)
	require.Equal(t, attendance.MsgNoneActive, msg)

	msg, err = f.roster.BroadcastSummary(ctx, acts, nil, at(4, 22, 0))
	require.NoError(t, err)
	require.Equal(t, attendance.MsgAllCheckedOut, msg)

	msg, err = f.roster.BroadcastSummary(ctx, acts, nil, at(4, 21, 0))
	require.NoError(t, err)
	require.Equal(t, attendance.MsgNoneActive, msg)
}

func TestRoster_TwoCadetsTwoActivities(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.cadet(t, 100, "Alice Lim")
	b := f.cadet(t, 200, "Bala Kumar")
	run := f.activity(t, "Run - Wingline")
	gym := f.activity(t, "Gym - Wingline")

	_, err := f.ledger.Book(ctx, a, run.ID, at(4, 8, 0))
	require.NoError(t, err)
	_, err = f.ledger.Book(ctx, b, gym.ID, at(4, 8, 2))
	require.NoError(t, err)
	require.NoError(t, f.ledger.CheckIn(ctx, b, at(4, 8, 10)))

	acts, err := f.store.ListActivities(ctx)
	require.NoError(t, err)
	msg, err := f.roster.BroadcastSummary(ctx, acts, nil, at(4, 9, 0))
	require.NoError(t, err)

	want := "Cadets participating in SRT on 2024-03-04:\n\n" +
		"Run - Wingline\nAlice Lim | Not checked in\n\n" +
		"Gym - Wingline\nBala Kumar | Started at 0810"
	require.Equal(t, want, msg)
	require.Equal(t, 1, strings.Count(msg, "Alice Lim"))
	require.Equal(t, 1, strings.Count(msg, "Bala Kumar"))
}

func TestRoster_GroupScope(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.cadet(t, 100, "Alice Lim")
	b := f.cadet(t, 200, "Bala Kumar")
	run := f.activity(t, "Run - Wingline")

	g, err := f.registry.ResolveOrRegisterGroup(ctx, -1001, "Alpha Coy")
	require.NoError(t, err)
	_, err = f.registry.EnsureMembership(ctx, a.ID, g.ID)
	require.NoError(t, err)

	for _, c := range []models.Cadet{a, b} {
		_, err := f.ledger.Book(ctx, c, run.ID, at(4, 8, 0))
		require.NoError(t, err)
	}

	all, err := f.roster.ActivityRoster(ctx, run.ID, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)

	scoped, err := f.roster.ActivityRoster(ctx, run.ID, &g.ID)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	require.Equal(t, "Alice Lim", scoped[0].CadetName)
}

func TestRoster_SnapshotAndCounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.cadet(t, 100, "Zed Tan")
	b := f.cadet(t, 200, "Alice Lim")
	f.cadet(t, 300, "No Booking")
	run := f.activity(t, "Run - Wingline")

	_, err := f.ledger.Book(ctx, a, run.ID, at(4, 8, 0))
	require.NoError(t, err)
	_, err = f.ledger.Book(ctx, b, run.ID, at(4, 8, 0))
	require.NoError(t, err)
	require.NoError(t, f.ledger.CheckIn(ctx, b, at(4, 8, 1)))
	require.NoError(t, f.ledger.CheckOut(ctx, b, at(4, 9, 1)))

	snap, err := f.roster.Snapshot(ctx, nil)
	require.NoError(t, err)
	require.Len(t, snap, 2)
	require.Equal(t, "Alice Lim", snap[0].CadetName)
	require.Equal(t, "Run - Wingline", snap[0].ActivityName)
	require.Equal(t, models.StatusCompleted, snap[0].Status)

	require.Equal(t, map[string]int{"Run - Wingline": 1}, attendance.ActiveCounts(snap))
}
