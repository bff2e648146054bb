package actions

import (
	"fightschool-server/internal/domain"
	"fightschool-server/internal/engine/handlers"
	"fightschool-server/internal/systems"
	"fightschool-server/pkg/api"
	"fmt"
	"strings"
)

// HandleAnswer принимает ответ на вопрос. Один ответ на участника за раунд.
// Хилер может сразу заявить лечение; оно применится в начале abilities, если ответ верный.
func HandleAnswer(ctx handlers.Context, p api.AnswerPayload) (handlers.Result, error) {
	if err := requireLiving(ctx); err != nil {
		return handlers.Result{}, err
	}
	actor := ctx.Actor
	if actor.HasAnswered {
		return handlers.Result{}, fmt.Errorf("already answered: %w", domain.ErrNotEligible)
	}

	actor.Answer = strings.TrimSpace(p.Text)
	actor.HasAnswered = true

	if p.IsHealing && systems.RoleOf(actor) == domain.RoleHealer {
		actor.IsHealing = true
		if target := ctx.Session.LivingParticipant(p.HealTarget); target != nil {
			actor.HealTargetID = target.ID
		}
	}

	return handlers.Changed(fmt.Sprintf("%s answered", actor.Name)), nil
}
