package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/go-crm/internal/db"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/services"
)

func setupTestDB(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(gdb)
}

func seedUser(t *testing.T, s *Store, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Name: email, Email: email, Password: "hash", Role: role}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func TestStore_UserLookups(t *testing.T) {
	ctx := context.Background()
	s := setupTestDB(t)
	sup := seedUser(t, s, "sam@epic.co", models.RoleSupport)
	seedUser(t, s, "carl@epic.co", models.RoleCommercial)

	got, err := s.FindUserByEmail(ctx, "sam@epic.co")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sup.ID, got.ID)

	got, err = s.FindUserByEmail(ctx, "nobody@epic.co")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = s.FindUserByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = s.FindUserByRoleAndEmail(ctx, models.RoleSupport, "sam@epic.co")
	require.NoError(t, err)
	require.NotNil(t, got)

	got, err = s.FindUserByRoleAndEmail(ctx, models.RoleSupport, "carl@epic.co")
	require.NoError(t, err)
	assert.Nil(t, got, "role must match as well as email")

	supports, err := s.ListUsersByRole(ctx, models.RoleSupport)
	require.NoError(t, err)
	require.Len(t, supports, 1)
	assert.Equal(t, "sam@epic.co", supports[0].Email)
}

func TestStore_ContractFilterAndCounts(t *testing.T) {
	ctx := context.Background()
	s := setupTestDB(t)
	owner := seedUser(t, s, "carl@epic.co", models.RoleCommercial)
	client := &models.Client{Name: "Kevin", Email: "kevin@startup.io", SalesContactID: owner.ID}
	require.NoError(t, s.CreateClient(ctx, client))

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	signed := &models.Contract{ClientID: client.ID, SalesContactID: owner.ID, AmountTotal: 100}
	signed.SetSigned(true, now)
	unsigned := &models.Contract{ClientID: client.ID, SalesContactID: owner.ID, AmountTotal: 50, AmountRemaining: 50}
	require.NoError(t, s.CreateContract(ctx, signed))
	require.NoError(t, s.CreateContract(ctx, unsigned))

	yes, no := true, false
	list, err := s.ListContracts(ctx, services.ContractFilter{Signed: &yes})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, signed.ID, list[0].ID)
	require.NotNil(t, list[0].Client)
	assert.Equal(t, "Kevin", list[0].Client.Name)

	list, err = s.ListContracts(ctx, services.ContractFilter{Signed: &no})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, unsigned.ID, list[0].ID)

	list, err = s.ListContracts(ctx, services.ContractFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	n, err := s.CountClientContracts(ctx, client.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = s.CountUserReferences(ctx, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestStore_EventFilters(t *testing.T) {
	ctx := context.Background()
	s := setupTestDB(t)
	owner := seedUser(t, s, "carl@epic.co", models.RoleCommercial)
	sup := seedUser(t, s, "sam@epic.co", models.RoleSupport)
	client := &models.Client{Name: "Kevin", Email: "kevin@startup.io", SalesContactID: owner.ID}
	require.NoError(t, s.CreateClient(ctx, client))
	contract := &models.Contract{ClientID: client.ID, SalesContactID: owner.ID, AmountTotal: 10}
	require.NoError(t, s.CreateContract(ctx, contract))

	start := time.Date(2026, 6, 4, 13, 0, 0, 0, time.UTC)
	later := &models.Event{Name: "b", ContractID: contract.ID, Start: start.Add(48 * time.Hour), End: start.Add(50 * time.Hour), SupportContactID: &sup.ID}
	earlier := &models.Event{Name: "a", ContractID: contract.ID, Start: start, End: start.Add(2 * time.Hour)}
	require.NoError(t, s.CreateEvent(ctx, later))
	require.NoError(t, s.CreateEvent(ctx, earlier))

	all, err := s.ListEvents(ctx, services.EventFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Name, "events are ordered by start")

	unassigned, err := s.ListEvents(ctx, services.EventFilter{Unassigned: true})
	require.NoError(t, err)
	require.Len(t, unassigned, 1)
	assert.Equal(t, earlier.ID, unassigned[0].ID)

	mine, err := s.ListEvents(ctx, services.EventFilter{SupportContactID: &sup.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, later.ID, mine[0].ID)

	got, err := s.FindEvent(ctx, earlier.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Contract)
	assert.Equal(t, owner.ID, got.Contract.SalesContactID)
	assert.True(t, got.Start.Equal(start))

	n, err := s.CountContractEvents(ctx, contract.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestStore_SaveEventLeavesContractAlone(t *testing.T) {
	ctx := context.Background()
	s := setupTestDB(t)
	owner := seedUser(t, s, "carl@epic.co", models.RoleCommercial)
	client := &models.Client{Name: "Kevin", Email: "kevin@startup.io", SalesContactID: owner.ID}
	require.NoError(t, s.CreateClient(ctx, client))
	contract := &models.Contract{ClientID: client.ID, SalesContactID: owner.ID, AmountTotal: 10}
	require.NoError(t, s.CreateContract(ctx, contract))
	start := time.Date(2026, 6, 4, 13, 0, 0, 0, time.UTC)
	ev := &models.Event{ContractID: contract.ID, Start: start, End: start.Add(time.Hour)}
	require.NoError(t, s.CreateEvent(ctx, ev))

	loaded, err := s.FindEvent(ctx, ev.ID)
	require.NoError(t, err)
	loaded.Location = "Paris"
	loaded.Contract.AmountTotal = 9999
	require.NoError(t, s.SaveEvent(ctx, loaded))

	c, err := s.FindContract(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, c.AmountTotal)
}

func TestStore_TransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := setupTestDB(t)
	owner := seedUser(t, s, "carl@epic.co", models.RoleCommercial)
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx services.Store) error {
		c := &models.Client{Name: "Kevin", Email: "kevin@startup.io", SalesContactID: owner.ID}
		if err := tx.CreateClient(ctx, c); err != nil {
			return err
		}
		locked, err := tx.LockClient(ctx, c.ID, services.LockForUpdate)
		require.NoError(t, err)
		require.NotNil(t, locked)
		return boom
	})
	require.ErrorIs(t, err, boom)

	clients, err := s.ListClients(ctx)
	require.NoError(t, err)
	assert.Empty(t, clients)

	missing, err := s.LockContract(ctx, 42, services.LockForShare)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
