package engine

import (
	"context"

	"github.com/roach88/stride/internal/model"
)

// TimeSlotInput describes a calendar slot to create.
type TimeSlotInput struct {
	StartMinutes uint32
	EndMinutes   uint32
	SlotType     model.SlotType
	Recurrence   model.Recurrence
}

func slotOwner(s *model.TimeSlot) string { return s.Owner }

// AddTimeSlot creates a slot owned by the caller and returns its id. It
// fails if the slot overlaps another of the caller's slots of the same type.
func (e *Engine) AddTimeSlot(ctx context.Context, in TimeSlotInput) (string, error) {
	var id string
	err := e.mutate(ctx, "add_time_slot", model.EntityTimeSlot, func(o *op) error {
		s, err := model.NewTimeSlot(o, e.ids.NewID("slot"), o.caller, in.StartMinutes, in.EndMinutes, in.Recurrence, in.SlotType)
		if err != nil {
			return err
		}
		clash, err := overlapping(o, s)
		if err != nil {
			return err
		}
		if clash != nil {
			return operationError(model.EntityTimeSlot, "Time slot overlaps with existing slot %s", clash.ID)
		}
		if err := o.tx.TimeSlots().Put(ctx, s); err != nil {
			return err
		}
		id = s.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	e.logger.Info("time slot added", "id", id,
		"start", model.FormatMinutes(in.StartMinutes), "end", model.FormatMinutes(in.EndMinutes), "type", in.SlotType)
	return id, nil
}

// UpdateTimeSlot moves a slot and replaces its recurrence. The slot type
// cannot change.
func (e *Engine) UpdateTimeSlot(ctx context.Context, id string, start, end uint32, r model.Recurrence) error {
	return e.mutate(ctx, "update_time_slot", model.EntityTimeSlot, func(o *op) error {
		s, err := getOwned(o, o.tx.TimeSlots(), model.EntityTimeSlot, id, slotOwner)
		if err != nil {
			return err
		}
		if err := s.SetTimes(start, end); err != nil {
			return err
		}
		s.Recurrence = r.Clone()
		if err := s.Validate(o); err != nil {
			return err
		}
		clash, err := overlapping(o, s)
		if err != nil {
			return err
		}
		if clash != nil {
			return operationError(model.EntityTimeSlot, "Would overlap with existing time slot %s", clash.ID)
		}
		return o.tx.TimeSlots().Put(ctx, s)
	})
}

// DeleteTimeSlot removes a slot.
func (e *Engine) DeleteTimeSlot(ctx context.Context, id string) error {
	return e.mutate(ctx, "delete_time_slot", model.EntityTimeSlot, func(o *op) error {
		if _, err := getOwned(o, o.tx.TimeSlots(), model.EntityTimeSlot, id, slotOwner); err != nil {
			return err
		}
		_, err := o.tx.TimeSlots().Delete(ctx, id)
		return err
	})
}

// overlapping returns the first slot of the same owner and type, other than
// c itself, that overlaps c.
func overlapping(o *op, c *model.TimeSlot) (*model.TimeSlot, error) {
	slots, err := o.tx.TimeSlots().ByOwner(o.ctx, c.Owner)
	if err != nil {
		return nil, err
	}
	for _, s := range slots {
		if s.ID == c.ID || s.SlotType != c.SlotType {
			continue
		}
		if s.IntersectsWindow(c.StartMinutes, c.EndMinutes) && s.OverlapsWith(c) {
			return s, nil
		}
	}
	return nil, nil
}
