package model

import "math"

// Reward is something an owner buys with earned points.
type Reward struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Cost        uint32      `json:"cost"`
	State       RewardState `json:"state"`
	Owner       string      `json:"owner"`
}

// NewReward builds an Active reward and validates it.
func NewReward(env Env, id, owner, title, description string, cost uint32) (*Reward, error) {
	r := &Reward{
		ID:          id,
		Title:       title,
		Description: description,
		Cost:        cost,
		State:       RewardActive,
		Owner:       owner,
	}
	if err := r.Validate(env); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate runs title, description, cost and storage checks.
func (r *Reward) Validate(env Env) error {
	title, err := checkTitle(EntityReward, r.Title)
	if err != nil {
		return err
	}
	r.Title = title

	desc, err := checkDescription(EntityReward, r.Description)
	if err != nil {
		return err
	}
	r.Description = desc

	if r.Cost == math.MaxUint32 {
		return fieldErr(EntityReward, "cost", ReasonInvalid, r.Cost)
	}
	return env.CheckStorage(r)
}

// ValidateStateForAction rejects every action on a redeemed reward.
func (r *Reward) ValidateStateForAction(a Action) error {
	if r.State == RewardCompleted {
		return &ActionError{Entity: EntityReward, State: string(r.State), Action: a}
	}
	return nil
}

// TransitionTo moves Active to Completed. There is no other edge.
func (r *Reward) TransitionTo(to RewardState) error {
	if r.State != RewardActive || to != RewardCompleted {
		return &TransitionError{Entity: EntityReward, From: string(r.State), To: string(to)}
	}
	r.State = to
	return nil
}

// Clone returns a copy.
func (r *Reward) Clone() *Reward {
	c := *r
	return &c
}

func (r *Reward) BaseStorage() uint64 { return RewardBaseStorage }
func (r *Reward) MaxStorage() uint64  { return RewardMaxStorage }

func (r *Reward) DynamicSize() uint64 {
	return uint64(len(r.ID) + len(r.Title) + len(r.Description) + len(r.Owner))
}
