package attendance

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/dis-cadets/srt-bot/internal/metrics"
	"github.com/dis-cadets/srt-bot/internal/models"
)

type registryStore interface {
	CadetStore
	GroupStore
}

// Registry resolves Telegram identities and group chats to internal rows.
type Registry struct {
	store registryStore
	log   *zap.Logger
}

func NewRegistry(store registryStore, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{store: store, log: log.Named("registry")}
}

func (r *Registry) FindByTelegramID(ctx context.Context, telegramID int64) (*models.Cadet, error) {
	c, err := r.store.CadetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, r.fail("find_cadet", err)
	}
	return c, nil
}

// ResolveOrRegister returns the cadet for telegramID, creating it on first contact.
// The store places a new cadet in the unassigned group in the same write.
func (r *Registry) ResolveOrRegister(ctx context.Context, telegramID int64, handle *string, displayName string) (*models.Cadet, error) {
	existing, err := r.FindByTelegramID(ctx, telegramID)
	if err != nil || existing != nil {
		return existing, err
	}

	name := normalizeName(displayName)
	if name == "" {
		return nil, ErrInvalidName
	}
	if handle != nil && strings.TrimSpace(*handle) == "" {
		handle = nil
	}

	c, err := r.store.CreateCadet(ctx, telegramID, handle, name)
	if err != nil {
		if errors.Is(err, ErrDuplicateName) {
			r.log.Info("duplicate display name", zap.Int64("telegram_id", telegramID), zap.String("name", name))
			return nil, err
		}
		return nil, r.fail("create_cadet", err)
	}
	metrics.Registrations.Inc()
	r.log.Info("cadet registered", zap.Int64("cadet_id", c.ID), zap.Int64("telegram_id", telegramID))
	return c, nil
}

func (r *Registry) UnassignedGroup(ctx context.Context) (*models.Group, error) {
	g, err := r.store.UnassignedGroup(ctx)
	if err != nil {
		return nil, r.fail("unassigned_group", err)
	}
	if g == nil {
		return nil, r.fail("unassigned_group", errors.New("default group row is missing"))
	}
	return g, nil
}

// ResolveOrRegisterGroup lazily creates the group row for a chat on first contact.
func (r *Registry) ResolveOrRegisterGroup(ctx context.Context, chatID int64, title string) (*models.Group, error) {
	g, err := r.store.GroupByChatID(ctx, chatID)
	if err != nil {
		return nil, r.fail("find_group", err)
	}
	if g != nil {
		return g, nil
	}
	g, err = r.store.CreateGroup(ctx, chatID, strings.TrimSpace(title))
	if err != nil {
		return nil, r.fail("create_group", err)
	}
	r.log.Info("group registered", zap.Int64("group_id", g.ID), zap.Int64("chat_id", chatID))
	return g, nil
}

// EnsureMembership is idempotent; it reports whether a new association was created.
func (r *Registry) EnsureMembership(ctx context.Context, cadetID, groupID int64) (bool, error) {
	created, err := r.store.EnsureMembership(ctx, cadetID, groupID)
	if err != nil {
		return false, r.fail("ensure_membership", err)
	}
	if created {
		r.log.Debug("membership added", zap.Int64("cadet_id", cadetID), zap.Int64("group_id", groupID))
	}
	return created, nil
}

func (r *Registry) fail(op string, err error) error {
	err = storageErr(op, err)
	if errors.Is(err, ErrStorageUnavailable) {
		metrics.ObserveStorageError(op)
		r.log.Error("store failure", zap.String("op", op), zap.Error(err))
	}
	return err
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
