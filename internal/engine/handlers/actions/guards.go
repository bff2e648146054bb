package actions

import (
	"fightschool-server/internal/domain"
	"fightschool-server/internal/engine/handlers"
	"fmt"
)

// requireLiving - мертвые не действуют
func requireLiving(ctx handlers.Context) error {
	if ctx.Actor == nil {
		return fmt.Errorf("no participant: %w", domain.ErrNotEligible)
	}
	if !ctx.Actor.IsAlive() {
		return domain.ErrActorDead
	}
	return nil
}

// requireCorrect - выбирать способности могут только ответившие верно
func requireCorrect(ctx handlers.Context) error {
	if err := requireLiving(ctx); err != nil {
		return err
	}
	if !ctx.Actor.IsCorrect {
		return fmt.Errorf("answer was not correct: %w", domain.ErrNotEligible)
	}
	return nil
}

// clearChoice сбрасывает взаимоисключающие выборы раунда
func clearChoice(c *domain.Combatant) {
	c.Pending = nil
	c.Crafting = false
	if !c.HealApplied {
		c.IsHealing = false
		c.HealTargetID = ""
	}
}
