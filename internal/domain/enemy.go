package domain

// Enemy - враг в сессии
type Enemy struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Image      string  `json:"image,omitempty"`
	Health     int     `json:"health"`
	MaxHealth  int     `json:"maxHealth"`
	Difficulty float64 `json:"difficulty"`
}

// IsAlive - враг действует, только пока здоровье выше нуля
func (e *Enemy) IsAlive() bool {
	return e.Health > 0
}

// TakeDamage возвращает true, если удар добил врага
func (e *Enemy) TakeDamage(amount int) bool {
	if !e.IsAlive() || amount <= 0 {
		return false
	}
	e.Health -= amount
	if e.Health < 0 {
		e.Health = 0
	}
	return e.Health == 0
}
