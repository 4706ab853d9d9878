package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/relaydesk/relaydesk/internal/domain/ticket"
	"github.com/relaydesk/relaydesk/internal/infrastructure/persistence/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.TicketModel{},
		&models.MessageLinkModel{},
		&models.BlockEntryModel{},
		&models.BotSettingModel{},
	)
	require.NoError(t, err)

	return db
}

func newTestTicket(t *testing.T, userChatID int64, username string) *ticket.Ticket {
	t.Helper()
	tk, err := ticket.NewTicket(userChatID, username, "Test")
	require.NoError(t, err)
	return tk
}

func TestTicketRepository_Save(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTicketRepository(db)
	ctx := context.Background()

	t.Run("save assigns an ID", func(t *testing.T) {
		tk := newTestTicket(t, 100, "alice_u")
		err := repo.Save(ctx, tk)
		require.NoError(t, err)
		assert.NotZero(t, tk.ID())
	})

	t.Run("second open ticket for the same user is rejected", func(t *testing.T) {
		tk := newTestTicket(t, 100, "alice_u")
		err := repo.Save(ctx, tk)
		assert.ErrorIs(t, err, ticket.ErrDuplicateOpenTicket)
	})

	t.Run("a new ticket is allowed after the open one closes", func(t *testing.T) {
		open, err := repo.FindOpenByUser(ctx, 100)
		require.NoError(t, err)
		open.Close()
		require.NoError(t, repo.Update(ctx, open))

		tk := newTestTicket(t, 100, "alice_u")
		require.NoError(t, repo.Save(ctx, tk))
		assert.NotZero(t, tk.ID())
	})

	t.Run("topic ID round-trips", func(t *testing.T) {
		tk := newTestTicket(t, 200, "bob_u")
		require.NoError(t, tk.SetTopicID(501))
		require.NoError(t, repo.Save(ctx, tk))

		found, err := repo.FindByID(ctx, tk.ID())
		require.NoError(t, err)
		require.NotNil(t, found.TopicID())
		assert.Equal(t, int64(501), *found.TopicID())
	})
}

func TestTicketRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTicketRepository(db)
	ctx := context.Background()

	tk := newTestTicket(t, 100, "alice_u")
	require.NoError(t, repo.Save(ctx, tk))

	tk.Close()
	require.NoError(t, repo.Update(ctx, tk))

	found, err := repo.FindByID(ctx, tk.ID())
	require.NoError(t, err)
	assert.True(t, found.Status().IsClosed())
}

func TestTicketRepository_FindOpenByUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTicketRepository(db)
	ctx := context.Background()

	t.Run("no ticket at all", func(t *testing.T) {
		_, err := repo.FindOpenByUser(ctx, 999)
		assert.ErrorIs(t, err, ticket.ErrTicketNotFound)
	})

	t.Run("closed tickets do not count", func(t *testing.T) {
		tk := newTestTicket(t, 300, "carol_u")
		require.NoError(t, repo.Save(ctx, tk))
		tk.Close()
		require.NoError(t, repo.Update(ctx, tk))

		_, err := repo.FindOpenByUser(ctx, 300)
		assert.ErrorIs(t, err, ticket.ErrTicketNotFound)
	})

	t.Run("open ticket is found", func(t *testing.T) {
		tk := newTestTicket(t, 300, "carol_u")
		require.NoError(t, repo.Save(ctx, tk))

		found, err := repo.FindOpenByUser(ctx, 300)
		require.NoError(t, err)
		assert.Equal(t, tk.ID(), found.ID())
		assert.Equal(t, "carol_u", found.Username())
	})
}

func TestTicketRepository_FindLatestByUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTicketRepository(db)
	ctx := context.Background()

	first := newTestTicket(t, 100, "alice_u")
	require.NoError(t, repo.Save(ctx, first))
	first.Close()
	require.NoError(t, repo.Update(ctx, first))

	second := newTestTicket(t, 100, "alice_u")
	require.NoError(t, repo.Save(ctx, second))

	found, err := repo.FindLatestByUser(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, second.ID(), found.ID())

	_, err = repo.FindLatestByUser(ctx, 999)
	assert.ErrorIs(t, err, ticket.ErrTicketNotFound)
}

func TestTicketRepository_ListOpen(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTicketRepository(db)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		tk := newTestTicket(t, i, "")
		require.NoError(t, repo.Save(ctx, tk))
		// Spread updated_at so the ordering is deterministic.
		require.NoError(t, db.Model(&models.TicketModel{}).
			Where("id = ?", tk.ID()).
			Update("updated_at", time.Now().UTC().Add(time.Duration(i)*time.Minute).UnixMilli()).Error)
	}

	closed := newTestTicket(t, 4, "")
	require.NoError(t, repo.Save(ctx, closed))
	closed.Close()
	require.NoError(t, repo.Update(ctx, closed))

	tickets, err := repo.ListOpen(ctx, 50)
	require.NoError(t, err)
	require.Len(t, tickets, 3)
	// Most recently updated first.
	assert.Equal(t, int64(3), tickets[0].UserChatID())
	assert.Equal(t, int64(1), tickets[2].UserChatID())

	limited, err := repo.ListOpen(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
