package actions

import (
	"fightschool-server/internal/domain"
	"fightschool-server/internal/engine/handlers"
	"fightschool-server/internal/systems"
	"fightschool-server/pkg/api"
	"fmt"
)

// HandleHeal - лечение применяется сразу, в момент выбора цели
func HandleHeal(ctx handlers.Context, p api.TargetPayload) (handlers.Result, error) {
	if err := requireCorrect(ctx); err != nil {
		return handlers.Result{}, err
	}
	actor := ctx.Actor
	if systems.RoleOf(actor) != domain.RoleHealer {
		return handlers.Result{}, fmt.Errorf("%s cannot heal: %w", actor.Class, domain.ErrNotEligible)
	}
	if actor.HealApplied {
		return handlers.Result{}, fmt.Errorf("heal already applied: %w", domain.ErrNotEligible)
	}

	target := ctx.Session.LivingParticipant(p.TargetID)
	if target == nil {
		return handlers.Result{}, fmt.Errorf("heal target %q: %w", p.TargetID, domain.ErrInvalidTarget)
	}

	actor.Pending = nil
	actor.Crafting = false
	healed := systems.ApplyHeal(actor, target)
	return handlers.Changed(fmt.Sprintf("%s heals %s for %d", actor.Name, target.Name, healed)), nil
}

// HandleDeclineHealing - хилер передумал лечить и будет атаковать
func HandleDeclineHealing(ctx handlers.Context) (handlers.Result, error) {
	if err := requireLiving(ctx); err != nil {
		return handlers.Result{}, err
	}
	actor := ctx.Actor
	if systems.RoleOf(actor) != domain.RoleHealer {
		return handlers.Result{}, fmt.Errorf("%s does not heal: %w", actor.Class, domain.ErrNotEligible)
	}
	if actor.HealApplied {
		return handlers.Result{}, fmt.Errorf("heal already applied: %w", domain.ErrNotEligible)
	}

	actor.IsHealing = false
	actor.HealTargetID = ""
	return handlers.Changed(fmt.Sprintf("%s declined healing", actor.Name)), nil
}
