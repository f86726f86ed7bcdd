package services_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/internal/apperrors"
	"github.com/diewo77/go-crm/internal/audit"
	"github.com/diewo77/go-crm/internal/db"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/repository"
	"github.com/diewo77/go-crm/internal/services"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recordingSink struct {
	entries []audit.Entry
}

func (r *recordingSink) Record(_ context.Context, e audit.Entry) {
	r.entries = append(r.entries, e)
}

type fixture struct {
	gdb       *gorm.DB
	store     *repository.Store
	clock     *fakeClock
	sink      *recordingSink
	hook      *test.Hook
	clients   *services.ClientService
	contracts *services.ContractService
	events    *services.EventService
	users     *services.UserService

	carl, cora auth.Identity // commercial
	gina       auth.Identity // gestion
	sam, sue   auth.Identity // support
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
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
	return gdb
}

func newFixture(t *testing.T, extra ...services.Option) *fixture {
	t.Helper()
	gdb := setupTestDB(t)
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	f := &fixture{
		gdb:   gdb,
		store: repository.New(gdb),
		clock: &fakeClock{t: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)},
		sink:  &recordingSink{},
		hook:  hook,
	}
	opts := append([]services.Option{
		services.WithClock(f.clock.Now),
		services.WithAudit(f.sink),
		services.WithLogger(logger),
	}, extra...)
	f.clients = services.NewClientService(f.store, opts...)
	f.contracts = services.NewContractService(f.store, opts...)
	f.events = services.NewEventService(f.store, opts...)
	f.users = services.NewUserService(f.store, opts...)

	f.carl = f.seedUser(t, "carl@epic.co", models.RoleCommercial)
	f.cora = f.seedUser(t, "cora@epic.co", models.RoleCommercial)
	f.gina = f.seedUser(t, "gina@epic.co", models.RoleGestion)
	f.sam = f.seedUser(t, "sam@epic.co", models.RoleSupport)
	f.sue = f.seedUser(t, "sue@epic.co", models.RoleSupport)
	return f
}

func (f *fixture) seedUser(t *testing.T, email string, role models.Role) auth.Identity {
	t.Helper()
	u := &models.User{Name: strings.Split(email, "@")[0], Email: email, Password: "hash", Role: role}
	if err := f.store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return auth.Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}

func (f *fixture) seedClient(t *testing.T, owner auth.Identity) *models.Client {
	t.Helper()
	c, err := f.clients.Create(context.Background(), owner, services.ClientInput{
		Name: "Kevin Casey", Email: "kevin@startup.io", Phone: "+33612345678", Company: "Cool Startup LLC",
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) seedContract(t *testing.T, owner auth.Identity, signed bool) *models.Contract {
	t.Helper()
	client := f.seedClient(t, owner)
	c, err := f.contracts.Create(context.Background(), owner, services.ContractInput{
		ClientID: client.ID, AmountTotal: 1000, AmountRemaining: 400, Signed: signed,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) seedEvent(t *testing.T, owner auth.Identity) *models.Event {
	t.Helper()
	contract := f.seedContract(t, owner, true)
	e, err := f.events.Create(context.Background(), owner, services.EventInput{
		ContractID: contract.ID, Name: "Launch party",
		Start: "2026-06-04 13:00", End: "2026-06-04 18:00",
		Location: "53 Rue du Château, Candé-sur-Beuvron", Attendees: 75,
	})
	require.NoError(t, err)
	return e
}

func requireCode(t *testing.T, err error, code apperrors.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, apperrors.CodeOf(err), "unexpected error: %v", err)
}

func strPtr(s string) *string     { return &s }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }
func intPtr(v int) *int           { return &v }
