package actions

import (
	"fightschool-server/internal/domain"
	"fightschool-server/internal/engine/handlers"
	"fightschool-server/internal/systems"
	"fightschool-server/pkg/api"
	"fmt"
)

// HandleUseAbility запоминает выбранную способность.
// Цель можно прислать сразу или позже через select_target;
// неверная цель не ошибка, ее дозаполнит авто-таргет.
func HandleUseAbility(ctx handlers.Context, p api.AbilityPayload) (handlers.Result, error) {
	if err := requireCorrect(ctx); err != nil {
		return handlers.Result{}, err
	}
	actor := ctx.Actor
	if actor.HealApplied {
		return handlers.Result{}, fmt.Errorf("already healed this round: %w", domain.ErrNotEligible)
	}
	if actor.Charging {
		return handlers.Result{}, fmt.Errorf("charging: %w", domain.ErrNotEligible)
	}

	def, err := systems.CanUse(actor, p.AbilityID, ctx.Session.Round)
	if err != nil {
		return handlers.Result{}, err
	}

	clearChoice(actor)
	actor.Pending = &domain.PendingAction{AbilityID: def.ID}
	if p.TargetID != "" {
		_ = attachTarget(ctx.Session, actor.Pending, def, p.TargetID, domain.TargetNone)
	}

	return handlers.Changed(fmt.Sprintf("%s prepares %s", actor.Name, def.ID)), nil
}

// HandleSelectTarget - цель для уже выбранной способности
func HandleSelectTarget(ctx handlers.Context, p api.SelectTargetPayload) (handlers.Result, error) {
	if err := requireCorrect(ctx); err != nil {
		return handlers.Result{}, err
	}
	actor := ctx.Actor
	if actor.Pending.IsEmpty() {
		// Цель без способности - обычная атака
		if actor.IsHealing || actor.Crafting || actor.Charging {
			return handlers.Result{}, fmt.Errorf("no ability selected: %w", domain.ErrNotEligible)
		}
		actor.Pending = &domain.PendingAction{AbilityID: domain.AbilityAttack}
	}

	def := systems.Ability(actor.Pending.AbilityID)
	if def == nil {
		return handlers.Result{}, fmt.Errorf("unknown ability %q: %w", actor.Pending.AbilityID, domain.ErrNotEligible)
	}
	if err := attachTarget(ctx.Session, actor.Pending, def, p.TargetID, domain.ParseTargetType(p.TargetType)); err != nil {
		return handlers.Result{}, err
	}

	return handlers.Changed(fmt.Sprintf("%s targets %s", actor.Name, p.TargetID)), nil
}

// HandleUseUltimate - ультимейт класса, один раз за бой
func HandleUseUltimate(ctx handlers.Context, p api.UltimatePayload) (handlers.Result, error) {
	if err := requireCorrect(ctx); err != nil {
		return handlers.Result{}, err
	}
	actor := ctx.Actor
	class := systems.Class(actor.Class)
	if p.UltimateID != class.Ultimate {
		return handlers.Result{}, fmt.Errorf("%s is not the %s ultimate: %w", p.UltimateID, class.ID, domain.ErrNotEligible)
	}
	if actor.HealApplied || actor.Charging {
		return handlers.Result{}, fmt.Errorf("action already locked: %w", domain.ErrNotEligible)
	}

	def, err := systems.CanUse(actor, p.UltimateID, ctx.Session.Round)
	if err != nil {
		return handlers.Result{}, err
	}

	clearChoice(actor)
	actor.Pending = &domain.PendingAction{AbilityID: def.ID}
	return handlers.Changed(fmt.Sprintf("%s readies %s", actor.Name, def.ID)), nil
}

// attachTarget проверяет цель по типу способности и записывает ее в выбор
func attachTarget(s *domain.Session, pending *domain.PendingAction, def *systems.AbilityDef, targetID string, want domain.TargetType) error {
	kind := def.Target
	if kind == domain.TargetNone {
		kind = domain.TargetEnemy
	}
	if want != domain.TargetNone && want != kind {
		return fmt.Errorf("%s expects %s target: %w", def.ID, kind, domain.ErrInvalidTarget)
	}

	switch kind {
	case domain.TargetAlly:
		if s.LivingParticipant(targetID) == nil {
			return fmt.Errorf("ally %q: %w", targetID, domain.ErrInvalidTarget)
		}
	default:
		if s.Enemy(targetID) == nil {
			return fmt.Errorf("enemy %q: %w", targetID, domain.ErrInvalidTarget)
		}
	}

	pending.TargetID = targetID
	pending.TargetType = kind
	return nil
}
