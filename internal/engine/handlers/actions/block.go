package actions

import (
	"fightschool-server/internal/domain"
	"fightschool-server/internal/engine/handlers"
	"fightschool-server/internal/systems"
	"fightschool-server/pkg/api"
	"fmt"
)

// HandleBlock - танк прикрывает союзника от атак этого раунда.
// Блок не зависит от правильности ответа.
func HandleBlock(ctx handlers.Context, p api.TargetPayload) (handlers.Result, error) {
	if err := requireLiving(ctx); err != nil {
		return handlers.Result{}, err
	}
	actor := ctx.Actor
	if systems.RoleOf(actor) != domain.RoleTank {
		return handlers.Result{}, fmt.Errorf("%s cannot block: %w", actor.Class, domain.ErrNotEligible)
	}

	target := ctx.Session.LivingParticipant(p.TargetID)
	if target == nil || target.ID == actor.ID {
		return handlers.Result{}, fmt.Errorf("block target %q: %w", p.TargetID, domain.ErrInvalidTarget)
	}

	actor.BlockTargetID = target.ID
	return handlers.Changed(fmt.Sprintf("%s blocks for %s", actor.Name, target.Name)), nil
}
