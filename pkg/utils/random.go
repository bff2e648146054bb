package utils

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// SessionCodeAlphabet - без похожих символов (0/O, 1/I/L), чтобы код было легко продиктовать
const SessionCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// SessionCodeLength - длина кода сессии
const SessionCodeLength = 6

// SessionCode создает человекочитаемый код сессии. Уникальность проверяет вызывающий.
func SessionCode() string {
	b := make([]byte, SessionCodeLength)
	limit := big.NewInt(int64(len(SessionCodeAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic("failed to generate session code: " + err.Error())
		}
		b[i] = SessionCodeAlphabet[n.Int64()]
	}
	return string(b)
}

// GenerateID создает уникальный ID соединения
func GenerateID() string {
	return uuid.NewString()
}

// Seed - случайное зерно для перемешивания вопросов и добычи
func Seed() int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	if err != nil {
		panic("failed to generate seed: " + err.Error())
	}
	return n.Int64()
}
