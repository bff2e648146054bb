package api

import (
	"errors"
	"strings"
)

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

const maxAnswerLength = 512

func (p HostPayload) Validate() error {
	// Переподключение хоста к своей сессии обходится без fightId
	if strings.TrimSpace(p.FightID) == "" && strings.TrimSpace(p.SessionID) == "" {
		return errors.New("fightId or sessionId is required")
	}
	return nil
}

func (p HostSoloPayload) Validate() error {
	if strings.TrimSpace(p.FightID) == "" {
		return errors.New("fightId is required")
	}
	if strings.TrimSpace(p.ParticipantID) == "" {
		return errors.New("participantId is required")
	}
	return nil
}

func (p JoinPayload) Validate() error {
	if strings.TrimSpace(p.ParticipantID) == "" {
		return errors.New("participantId is required")
	}
	if strings.TrimSpace(p.SessionID) == "" {
		return errors.New("sessionId is required")
	}
	return nil
}

func (p AnswerPayload) Validate() error {
	if len(p.Text) > maxAnswerLength {
		return errors.New("answer too long")
	}
	return nil
}

func (p TargetPayload) Validate() error {
	if p.TargetID == "" {
		return errors.New("targetId is required")
	}
	return nil
}

func (p AbilityPayload) Validate() error {
	if p.AbilityID == "" {
		return errors.New("abilityId is required")
	}
	return nil
}

func (p SelectTargetPayload) Validate() error {
	if p.TargetID == "" {
		return errors.New("targetId is required")
	}
	switch strings.ToLower(p.TargetType) {
	case "", "ally", "enemy":
		return nil
	}
	return errors.New("targetType must be ally or enemy")
}

func (p UltimatePayload) Validate() error {
	if p.UltimateID == "" {
		return errors.New("ultimateId is required")
	}
	return nil
}
