// Package memstore is an in-process attendance.Store used by tests and by
// `bot serve --memory`. It keeps the same uniqueness rules as the Postgres schema.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dis-cadets/srt-bot/internal/attendance"
	"github.com/dis-cadets/srt-bot/internal/models"
)

// DefaultActivities mirrors the seed migration.
var DefaultActivities = []string{
	"Run - Wingline",
	"Run - Yellow Cluster",
	"Gym - Wingline",
	"Basketball - Basketball Court",
}

var (
	errTelegramIDTaken   = errors.New("telegram id already registered")
	errNoUnassignedGroup = errors.New("unassigned group is missing")
)

type membership struct{ cadetID, groupID int64 }

type Store struct {
	mu sync.Mutex

	cadets     []models.Cadet
	groups     []models.Group
	members    map[membership]struct{}
	activities []models.Activity
	records    []models.AttendanceRecord

	nextID int64
	err    error
}

var _ attendance.Store = (*Store)(nil)

// New returns a store seeded with the default activities and the unassigned group.
func New() *Store {
	s := &Store{members: make(map[membership]struct{})}
	for _, name := range DefaultActivities {
		s.activities = append(s.activities, models.Activity{ID: s.id(), Name: name})
	}
	s.groups = append(s.groups, models.Group{ID: s.id(), Name: models.UnassignedGroupName})
	return s
}

// FailWith makes every following call return err until it is called again with nil.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) CadetByTelegramID(_ context.Context, telegramID int64) (*models.Cadet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, c := range s.cadets {
		if c.TelegramID == telegramID {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateCadet(_ context.Context, telegramID int64, username *string, name string) (*models.Cadet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, c := range s.cadets {
		if c.Name == name {
			return nil, attendance.ErrDuplicateName
		}
		if c.TelegramID == telegramID {
			return nil, errTelegramIDTaken
		}
	}
	var def *models.Group
	for i := range s.groups {
		if s.groups[i].IsUnassigned() {
			def = &s.groups[i]
			break
		}
	}
	if def == nil {
		return nil, errNoUnassignedGroup
	}
	c := models.Cadet{ID: s.id(), TelegramID: telegramID, Username: username, Name: name, CreatedAt: time.Now()}
	s.cadets = append(s.cadets, c)
	s.members[membership{c.ID, def.ID}] = struct{}{}
	return &c, nil
}

func (s *Store) GroupByChatID(_ context.Context, chatID int64) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, g := range s.groups {
		if g.ChatID != nil && *g.ChatID == chatID {
			g := g
			return &g, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateGroup(_ context.Context, chatID int64, name string) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, g := range s.groups {
		if g.ChatID != nil && *g.ChatID == chatID {
			g := g
			return &g, nil
		}
	}
	id := chatID
	g := models.Group{ID: s.id(), ChatID: &id, Name: name}
	s.groups = append(s.groups, g)
	return &g, nil
}

func (s *Store) UnassignedGroup(_ context.Context) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, g := range s.groups {
		if g.IsUnassigned() {
			g := g
			return &g, nil
		}
	}
	return nil, nil
}

func (s *Store) EnsureMembership(_ context.Context, cadetID, groupID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	k := membership{cadetID, groupID}
	if _, ok := s.members[k]; ok {
		return false, nil
	}
	s.members[k] = struct{}{}
	return true, nil
}

// GroupsOf lists the group ids a cadet belongs to, ascending.
func (s *Store) GroupsOf(cadetID int64) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int64
	for k := range s.members {
		if k.cadetID == cadetID {
			out = append(out, k.groupID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CadetCount reports the number of registered cadets.
func (s *Store) CadetCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cadets)
}

func (s *Store) ListActivities(_ context.Context) ([]models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]models.Activity(nil), s.activities...), nil
}

func (s *Store) ActivityByID(_ context.Context, id int64) (*models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.activity(id), nil
}

func (s *Store) activity(id int64) *models.Activity {
	for _, a := range s.activities {
		if a.ID == id {
			a := a
			return &a
		}
	}
	return nil
}

func (s *Store) ReplaceRecord(_ context.Context, rec models.AttendanceRecord) (*models.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if s.activity(rec.ActivityID) == nil {
		return nil, attendance.ErrActivityNotFound
	}
	kept := s.records[:0]
	for _, r := range s.records {
		if r.CadetID != rec.CadetID {
			kept = append(kept, r)
		}
	}
	rec.ID = s.id()
	rec.CheckInTime, rec.CheckOutTime = nil, nil
	s.records = append(kept, rec)
	return &rec, nil
}

// RecordsOf returns every stored record of the cadet.
func (s *Store) RecordsOf(cadetID int64) []models.AttendanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.AttendanceRecord
	for _, r := range s.records {
		if r.CadetID == cadetID {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) latest(cadetID int64) int {
	idx := -1
	for i, r := range s.records {
		if r.CadetID != cadetID {
			continue
		}
		if idx < 0 || r.CreatedOn.After(s.records[idx].CreatedOn) {
			idx = i
		}
	}
	return idx
}

func (s *Store) LatestRecord(_ context.Context, cadetID int64) (*models.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	i := s.latest(cadetID)
	if i < 0 {
		return nil, nil
	}
	r := s.records[i]
	return &r, nil
}

func (s *Store) StartRecord(_ context.Context, cadetID int64, at time.Time) (bool, error) {
	return s.advance(cadetID, models.StatusPending, models.StatusOngoing, at)
}

func (s *Store) FinishRecord(_ context.Context, cadetID int64, at time.Time) (bool, error) {
	return s.advance(cadetID, models.StatusOngoing, models.StatusCompleted, at)
}

func (s *Store) advance(cadetID int64, from, to models.Status, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	i := s.latest(cadetID)
	if i < 0 || s.records[i].Status != from {
		return false, nil
	}
	t := at
	r := &s.records[i]
	r.Status = to
	if to == models.StatusOngoing {
		r.CheckInTime = &t
	} else {
		r.CheckOutTime = &t
	}
	return true, nil
}

func (s *Store) HasRecordBetween(_ context.Context, cadetID int64, from, to time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	for _, r := range s.records {
		if r.CadetID == cadetID && !r.CreatedOn.Before(from) && r.CreatedOn.Before(to) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) inScope(cadetID int64, groupID *int64) bool {
	if groupID == nil {
		return true
	}
	_, ok := s.members[membership{cadetID, *groupID}]
	return ok
}

func (s *Store) cadet(id int64) *models.Cadet {
	for i := range s.cadets {
		if s.cadets[i].ID == id {
			return &s.cadets[i]
		}
	}
	return nil
}

// ActiveRoster returns entries in record insertion order.
func (s *Store) ActiveRoster(_ context.Context, activityID int64, groupID *int64) ([]models.RosterEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []models.RosterEntry
	for i, r := range s.records {
		if s.latest(r.CadetID) != i || r.ActivityID != activityID || r.Status == models.StatusCompleted {
			continue
		}
		if !s.inScope(r.CadetID, groupID) {
			continue
		}
		c := s.cadet(r.CadetID)
		if c == nil {
			continue
		}
		out = append(out, models.RosterEntry{CadetName: c.Name, CheckInTime: r.CheckInTime})
	}
	return out, nil
}

func (s *Store) LatestRecords(_ context.Context, groupID *int64) ([]models.RecordView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []models.RecordView
	for i, r := range s.records {
		if s.latest(r.CadetID) != i || !s.inScope(r.CadetID, groupID) {
			continue
		}
		c := s.cadet(r.CadetID)
		if c == nil {
			continue
		}
		v := models.RecordView{
			CadetID:      c.ID,
			CadetName:    c.Name,
			ActivityID:   r.ActivityID,
			Status:       r.Status,
			CheckInTime:  r.CheckInTime,
			CheckOutTime: r.CheckOutTime,
			CreatedOn:    r.CreatedOn,
		}
		if a := s.activity(r.ActivityID); a != nil {
			v.ActivityName = a.Name
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CadetName < out[j].CadetName })
	return out, nil
}
