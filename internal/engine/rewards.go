package engine

import (
	"context"

	"github.com/roach88/stride/internal/model"
)

func rewardOwner(r *model.Reward) string { return r.Owner }

// AddReward creates an Active reward owned by the caller and returns its id.
func (e *Engine) AddReward(ctx context.Context, title, description string, cost uint32) (string, error) {
	var id string
	err := e.mutate(ctx, "add_reward", model.EntityReward, func(o *op) error {
		r, err := model.NewReward(o, e.ids.NewID("reward"), o.caller, title, description, cost)
		if err != nil {
			return err
		}
		if err := o.tx.Rewards().Put(ctx, r); err != nil {
			return err
		}
		id = r.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	e.logger.Info("reward added", "id", id, "cost", cost)
	return id, nil
}

// UpdateReward overwrites an Active reward's title, description and cost.
func (e *Engine) UpdateReward(ctx context.Context, id, title, description string, cost uint32) error {
	return e.mutate(ctx, "update_reward", model.EntityReward, func(o *op) error {
		r, err := getOwned(o, o.tx.Rewards(), model.EntityReward, id, rewardOwner)
		if err != nil {
			return err
		}
		if err := r.ValidateStateForAction(model.ActionUpdate); err != nil {
			return err
		}
		r.Title, r.Description, r.Cost = title, description, cost
		if err := r.Validate(o); err != nil {
			return err
		}
		return o.tx.Rewards().Put(ctx, r)
	})
}

// DeleteReward removes a reward in any state.
func (e *Engine) DeleteReward(ctx context.Context, id string) error {
	return e.mutate(ctx, "delete_reward", model.EntityReward, func(o *op) error {
		if _, err := getOwned(o, o.tx.Rewards(), model.EntityReward, id, rewardOwner); err != nil {
			return err
		}
		_, err := o.tx.Rewards().Delete(ctx, id)
		return err
	})
}

// RedeemReward spends the reward's cost from the caller's points and marks
// it Completed. It returns the remaining balance. Without enough points
// nothing changes.
func (e *Engine) RedeemReward(ctx context.Context, id string) (uint32, error) {
	var left uint32
	err := e.mutate(ctx, "redeem_reward", model.EntityReward, func(o *op) error {
		r, err := getOwned(o, o.tx.Rewards(), model.EntityReward, id, rewardOwner)
		if err != nil {
			return err
		}
		if err := r.ValidateStateForAction(model.ActionRedeem); err != nil {
			return err
		}

		ledger := o.ledger()
		have, err := ledger.Balance(ctx, r.Owner)
		if err != nil {
			return err
		}
		if have < r.Cost {
			return operationError(model.EntityReward,
				"Insufficient points for redemption: available %d, required %d", have, r.Cost)
		}
		if left, err = ledger.Add(ctx, r.Owner, Debit(r.Cost)); err != nil {
			return err
		}
		if err := r.TransitionTo(model.RewardCompleted); err != nil {
			return err
		}
		return o.tx.Rewards().Put(ctx, r)
	})
	if err != nil {
		return 0, err
	}
	e.logger.Info("reward redeemed", "id", id, "balance", left)
	return left, nil
}
