// Package services is the lifecycle rule engine. Every operation takes the
// acting auth.Identity, checks the caller's role before reading any state,
// then loads the target, applies ownership policies and entity invariants and
// finally writes through the Store.
package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/gate"
	"github.com/diewo77/go-crm/internal/apperrors"
	"github.com/diewo77/go-crm/internal/audit"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/policy"
)

// Option configures a service.
type Option func(*base)

// WithClock injects the source of "now".
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		if now != nil {
			b.now = now
		}
	}
}

// WithAudit sets the audit sink. Defaults to audit.Nop.
func WithAudit(s audit.Sink) Option {
	return func(b *base) {
		if s != nil {
			b.audit = s
		}
	}
}

// WithLogger sets the logger. Defaults to the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(b *base) {
		if l != nil {
			b.log = l
		}
	}
}

// WithGate replaces the ownership policies. Defaults to policy.NewGate().
func WithGate(g *gate.Gate[auth.Identity]) Option {
	return func(b *base) {
		if g != nil {
			b.gate = g
		}
	}
}

// WithLocation sets the time zone event dates are read in. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(b *base) {
		if loc != nil {
			b.loc = loc
		}
	}
}

type base struct {
	store Store
	gate  *gate.Gate[auth.Identity]
	audit audit.Sink
	log   logrus.FieldLogger
	now   func() time.Time
	loc   *time.Location
}

func newBase(store Store, opts []Option) base {
	b := base{
		store: store,
		gate:  policy.NewGate(),
		audit: audit.Nop{},
		log:   logrus.StandardLogger(),
		now:   time.Now,
		loc:   time.UTC,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// trace logs the outcome of op. Domain refusals go to debug, anything else
// is an infrastructure failure and goes to error.
func (b *base) trace(op string, id auth.Identity, errp *error) {
	err := *errp
	if err == nil {
		return
	}
	entry := b.log.WithFields(logrus.Fields{"op": op, "user_id": id.ID, "role": id.Role})
	if code := apperrors.CodeOf(err); code != apperrors.CodeUnknown {
		entry.WithField("code", code).Debug(err.Error())
		return
	}
	entry.WithError(err).Error("operation failed")
}

func (b *base) record(ctx context.Context, id auth.Identity, entity string, entityID uint, action, details string) {
	b.audit.Record(ctx, audit.Entry{
		ActorID:    id.ID,
		ActorEmail: id.Email,
		EntityType: entity,
		EntityID:   entityID,
		Action:     action,
		Details:    details,
	})
}

// requireRole is the role guard every operation starts with.
func requireRole(id auth.Identity, roles ...models.Role) error {
	return gate.RequireRole(id.Role, roles...)
}

var allRoles = []models.Role{models.RoleCommercial, models.RoleSupport, models.RoleGestion}
