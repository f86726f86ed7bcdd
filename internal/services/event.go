package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/gate"
	"github.com/diewo77/go-crm/internal/apperrors"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/policy"
	"github.com/diewo77/go-crm/validation"
)

// DateLayout is the format event start and end dates are given in.
const DateLayout = "2006-01-02 15:04"

// EventInput holds the fields of a new event. Start and End use DateLayout.
type EventInput struct {
	ContractID uint   `json:"contract_id"`
	Name       string `json:"name"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Location   string `json:"location"`
	Attendees  int    `json:"attendees"`
	Notes      string `json:"notes"`
}

// EventUpdate holds the fields an assigned support user may change.
// Nil fields are kept.
type EventUpdate struct {
	Start     *string `json:"start"`
	End       *string `json:"end"`
	Location  *string `json:"location"`
	Attendees *int    `json:"attendees"`
	Notes     *string `json:"notes"`
}

// EventService manages events.
type EventService struct {
	base
}

func NewEventService(store Store, opts ...Option) *EventService {
	return &EventService{base: newBase(store, opts)}
}

// parseDate reads DateLayout, also accepting RFC 3339.
func (s *EventService) parseDate(field, value string, v validation.Violations) time.Time {
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation(DateLayout, value, s.loc); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	v[field] = "invalid_date, expected YYYY-MM-DD HH:MM"
	return time.Time{}
}

func checkSchedule(start, end time.Time, attendees int, v validation.Violations) {
	if v.Empty() && !end.After(start) {
		v["end"] = "must_be_after_start"
	}
	validation.NonNegativeInt("attendees", attendees, v)
}

// Create schedules an event on a signed contract the caller is sales contact
// of. The contract row is share-locked so it cannot be deleted underneath.
func (s *EventService) Create(ctx context.Context, id auth.Identity, in EventInput) (e *models.Event, err error) {
	defer s.trace("event.create", id, &err)
	if err := requireRole(id, models.RoleCommercial); err != nil {
		return nil, err
	}
	err = s.store.Transaction(ctx, func(tx Store) error {
		contract, err := tx.LockContract(ctx, in.ContractID, LockForShare)
		if err != nil {
			return fmt.Errorf("lock contract: %w", err)
		}
		if contract == nil {
			return apperrors.NotFound("contract not found")
		}
		if !contract.Signed {
			return apperrors.PreconditionFailed("contract not signed")
		}
		if err := s.gate.Authorize(ctx, id, gate.ActionCreate, policy.ResourceEvent, contract); err != nil {
			return err
		}

		v := validation.Violations{}
		start := s.parseDate("start", in.Start, v)
		end := s.parseDate("end", in.End, v)
		checkSchedule(start, end, in.Attendees, v)
		if err := v.Err(); err != nil {
			return err
		}

		e = &models.Event{
			Name:       strings.TrimSpace(in.Name),
			ContractID: contract.ID,
			Start:      start,
			End:        end,
			Location:   strings.TrimSpace(in.Location),
			Attendees:  in.Attendees,
			Notes:      in.Notes,
		}
		if err := tx.CreateEvent(ctx, e); err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"event_id": e.ID, "contract_id": e.ContractID, "user_id": id.ID}).Info("event created")
	return e, nil
}

// AssignSupport makes the support user with supportEmail the event's
// support contact, replacing any previous one.
func (s *EventService) AssignSupport(ctx context.Context, id auth.Identity, eventID uint, supportEmail string) (e *models.Event, err error) {
	defer s.trace("event.assign_support", id, &err)
	if err := requireRole(id, models.RoleGestion); err != nil {
		return nil, err
	}
	e, err = s.store.FindEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	if e == nil {
		return nil, apperrors.NotFound("event not found")
	}
	if err := s.gate.Authorize(ctx, id, gate.ActionAssign, policy.ResourceEvent, e); err != nil {
		return nil, err
	}
	support, err := s.store.FindUserByRoleAndEmail(ctx, models.RoleSupport, strings.TrimSpace(supportEmail))
	if err != nil {
		return nil, fmt.Errorf("find support user: %w", err)
	}
	if support == nil {
		return nil, apperrors.WithMetadata(apperrors.CodeNotFound, "support user not found",
			map[string]string{"email": supportEmail})
	}

	e.SupportContactID = &support.ID
	e.SupportContact = support
	if err := s.store.SaveEvent(ctx, e); err != nil {
		return nil, fmt.Errorf("save event: %w", err)
	}
	s.log.WithFields(logrus.Fields{"event_id": e.ID, "support_id": support.ID, "user_id": id.ID}).Info("support assigned")
	return e, nil
}

// errNotAssigned is returned both for a missing event and for an event
// assigned to someone else.
func errNotAssigned() error {
	return apperrors.NotFound("event not found or not assigned to you")
}

// UpdateAssigned lets the support contact of an event change its schedule,
// location, attendance and notes.
func (s *EventService) UpdateAssigned(ctx context.Context, id auth.Identity, eventID uint, in EventUpdate) (e *models.Event, err error) {
	defer s.trace("event.update_assigned", id, &err)
	if err := requireRole(id, models.RoleSupport); err != nil {
		return nil, err
	}
	e, err = s.store.FindEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	if e == nil || !e.AssignedTo(id.ID) {
		return nil, errNotAssigned()
	}

	v := validation.Violations{}
	start, end, attendees := e.Start, e.End, e.Attendees
	if in.Start != nil {
		start = s.parseDate("start", *in.Start, v)
	}
	if in.End != nil {
		end = s.parseDate("end", *in.End, v)
	}
	if in.Attendees != nil {
		attendees = *in.Attendees
	}
	checkSchedule(start, end, attendees, v)
	if err := v.Err(); err != nil {
		return nil, err
	}

	e.Start, e.End, e.Attendees = start, end, attendees
	if in.Location != nil {
		e.Location = strings.TrimSpace(*in.Location)
	}
	if in.Notes != nil {
		e.Notes = *in.Notes
	}
	if err := s.store.SaveEvent(ctx, e); err != nil {
		return nil, fmt.Errorf("save event: %w", err)
	}
	s.log.WithFields(logrus.Fields{"event_id": e.ID, "user_id": id.ID}).Info("event updated")
	return e, nil
}

// Delete removes an event. Only the sales contact of the event's contract
// may do so.
func (s *EventService) Delete(ctx context.Context, id auth.Identity, eventID uint) (err error) {
	defer s.trace("event.delete", id, &err)
	if err := requireRole(id, models.RoleCommercial); err != nil {
		return err
	}
	e, err := s.store.FindEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("find event: %w", err)
	}
	if e == nil {
		return apperrors.NotFound("event not found")
	}
	if err := s.gate.Authorize(ctx, id, gate.ActionDelete, policy.ResourceEvent, e); err != nil {
		return err
	}
	if err := s.store.DeleteEvent(ctx, e.ID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	s.log.WithFields(logrus.Fields{"event_id": e.ID, "user_id": id.ID}).Info("event deleted")
	return nil
}

// List returns every event.
func (s *EventService) List(ctx context.Context, id auth.Identity) ([]models.Event, error) {
	return s.list(ctx, "event.list", id, EventFilter{}, allRoles...)
}

// ListUnassigned returns events without a support contact.
func (s *EventService) ListUnassigned(ctx context.Context, id auth.Identity) ([]models.Event, error) {
	return s.list(ctx, "event.list_unassigned", id, EventFilter{Unassigned: true}, models.RoleGestion)
}

// ListMine returns the events the calling support user is assigned to.
func (s *EventService) ListMine(ctx context.Context, id auth.Identity) ([]models.Event, error) {
	userID := id.ID
	return s.list(ctx, "event.list_mine", id, EventFilter{SupportContactID: &userID}, models.RoleSupport)
}

func (s *EventService) list(ctx context.Context, op string, id auth.Identity, f EventFilter, roles ...models.Role) (events []models.Event, err error) {
	defer s.trace(op, id, &err)
	if err := requireRole(id, roles...); err != nil {
		return nil, err
	}
	events, err = s.store.ListEvents(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}
