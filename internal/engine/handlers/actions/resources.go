package actions

import (
	"fightschool-server/internal/domain"
	"fightschool-server/internal/engine/handlers"
	"fightschool-server/internal/systems"
	"fightschool-server/pkg/api"
	"fmt"
)

// HandleCreateConsumable - вместо удара участник варит зелье (+1 расходник при резолве)
func HandleCreateConsumable(ctx handlers.Context) (handlers.Result, error) {
	if err := requireCorrect(ctx); err != nil {
		return handlers.Result{}, err
	}
	actor := ctx.Actor
	if actor.HealApplied || actor.Charging {
		return handlers.Result{}, fmt.Errorf("action already locked: %w", domain.ErrNotEligible)
	}

	clearChoice(actor)
	actor.Crafting = true
	return handlers.Changed(fmt.Sprintf("%s is crafting a potion", actor.Name)), nil
}

// HandleToggleCharge включает или выключает накопление заряда (только для классов с зарядом).
// Выключение теряет накопленные раунды.
func HandleToggleCharge(ctx handlers.Context, p api.ChargePayload) (handlers.Result, error) {
	if err := requireLiving(ctx); err != nil {
		return handlers.Result{}, err
	}
	actor := ctx.Actor
	if !systems.Class(actor.Class).CanCharge {
		return handlers.Result{}, fmt.Errorf("%s cannot charge: %w", actor.Class, domain.ErrNotEligible)
	}

	if !p.Enabled {
		if !actor.Charging {
			return handlers.Result{}, nil
		}
		actor.Charging = false
		actor.ChargeRounds = 0
		return handlers.Changed(fmt.Sprintf("%s stopped charging", actor.Name)), nil
	}

	if !actor.IsCorrect {
		return handlers.Result{}, fmt.Errorf("answer was not correct: %w", domain.ErrNotEligible)
	}
	clearChoice(actor)
	actor.Charging = true
	return handlers.Changed(fmt.Sprintf("%s starts charging", actor.Name)), nil
}
