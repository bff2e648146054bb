package agent

import (
	"context"
	"encoding/json"
	"fightschool-server/internal/network"
	"fightschool-server/pkg/api"
	"fightschool-server/pkg/logger"
	"fightschool-server/pkg/utils"
	"math/rand"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Commander - то, что боту нужно от движка.
// Бот не импортирует engine: движок сам импортирует ботов через BotLauncher.
type Commander interface {
	ProcessCommand(ctx context.Context, connID string, cmd api.ClientCommand)
	CurrentAnswer(sessionID string) (answer string, choices []string, err error)
}

// Порог здоровья союзника, ниже которого хилер-бот лечит вместо атаки
const healThreshold = 0.7

// Launcher создает ботов-компаньонов соло-режима
type Launcher struct {
	Hub       *network.Hub
	Commander Commander
	Accuracy  float64       // доля верных ответов
	Think     time.Duration // максимальная пауза перед ответом
}

func NewLauncher(hub *network.Hub, commander Commander, accuracy float64, think time.Duration) *Launcher {
	return &Launcher{Hub: hub, Commander: commander, Accuracy: accuracy, Think: think}
}

// Launch подключает бота к сессии как обычное соединение и запускает его цикл
func (l *Launcher) Launch(sessionID, participantID string, seed int64) {
	b := &Bot{
		ConnID:        "bot-" + utils.GenerateID(),
		SessionID:     sessionID,
		ParticipantID: participantID,
		hub:           l.Hub,
		commander:     l.Commander,
		accuracy:      l.Accuracy,
		think:         l.Think,
		rng:           rand.New(rand.NewSource(seed)),
		log: logger.Log.WithFields(logrus.Fields{
			"component":      "bot",
			"session_id":     sessionID,
			"participant_id": participantID,
		}),
	}
	// Бот регистрируется в хабе как обычный клиент и получает свой канал для обновлений.
	b.Inbox = l.Hub.Register(b.ConnID)
	l.Hub.Attach(b.ConnID, sessionID, participantID, false)

	go b.Run()
}

// Bot - участник-компьютер (Headless Agent). Получает те же сообщения, что и клиент,
// и отвечает теми же командами.
//
// Жизненный цикл:
//  1. Launch -> регистрация в хабе, привязка к сессии, личный канал (Inbox).
//  2. Run -> слушает Inbox, пока хаб не закроет канал (очистка сессии).
//  3. question -> отвечает: верно с вероятностью accuracy, иначе выбирает неверный вариант.
//  4. phase_change abilities -> выбирает действие по последнему combat_state.
type Bot struct {
	ConnID        string
	SessionID     string
	ParticipantID string
	Inbox         <-chan api.ServerMessage

	hub       *network.Hub
	commander Commander
	accuracy  float64
	think     time.Duration
	rng       *rand.Rand
	log       *logrus.Entry

	last *api.SessionView // последний полученный снимок
}

// Run запускает цикл жизни бота. Должен быть запущен в горутине.
func (b *Bot) Run() {
	defer b.hub.Unregister(b.ConnID)
	b.log.Debug("Bot started")

	for msg := range b.Inbox {
		b.handle(msg)
	}
	b.log.Debug("Bot shut down")
}

func (b *Bot) handle(msg api.ServerMessage) {
	switch msg.Type {
	case api.MsgCombatState, api.MsgJoined, api.MsgSessionCreated:
		if msg.State != nil {
			b.last = msg.State
		}
	case api.MsgQuestion:
		b.answer()
	case api.MsgPhaseChange:
		if msg.Phase == "abilities" {
			b.act()
		}
	case api.MsgForceDisconnect:
		b.log.WithField("reason", msg.Reason).Debug("Bot disconnected by server")
	}
}

// answer отвечает на текущий вопрос
func (b *Bot) answer() {
	answer, choices, err := b.commander.CurrentAnswer(b.SessionID)
	if err != nil || answer == "" {
		return
	}
	if b.think > 0 {
		time.Sleep(time.Duration(b.rng.Int63n(int64(b.think))))
	}

	text := answer
	correct := b.rng.Float64() < b.accuracy
	if !correct {
		text = wrongChoice(answer, choices, b.rng)
	}

	payload := api.AnswerPayload{Text: text}
	me := b.me()
	if correct && me != nil && me.Role == "healer" {
		if ally := b.woundedAlly(); ally != nil {
			payload.IsHealing = true
			payload.HealTarget = ally.ID
		}
	}
	b.send("answer", payload)
}

// act - выбор в фазе abilities
func (b *Bot) act() {
	me := b.me()
	if me == nil || me.IsDead {
		return
	}

	switch me.Role {
	case "tank":
		if ally := b.lowestAlly(me.ID); ally != nil {
			b.send("block", api.TargetPayload{TargetID: ally.ID})
		}
	case "healer":
		if me.IsHealing {
			if me.HealTargetID == "" {
				if ally := b.lowestAlly(""); ally != nil {
					b.send("heal", api.TargetPayload{TargetID: ally.ID})
				}
			}
			return
		}
	}

	if me.IsCorrect && !me.IsHealing {
		b.send("use_ability", api.AbilityPayload{AbilityID: "attack", TargetID: b.firstEnemy()})
	}
}

// --- Чтение последнего снимка ---

func (b *Bot) me() *api.CombatantView {
	if b.last == nil {
		return nil
	}
	for i := range b.last.Participants {
		if b.last.Participants[i].ID == b.ParticipantID {
			return &b.last.Participants[i]
		}
	}
	return nil
}

// lowestAlly - живой союзник с наименьшим здоровьем, кроме exclude
func (b *Bot) lowestAlly(exclude string) *api.CombatantView {
	if b.last == nil {
		return nil
	}
	var best *api.CombatantView
	for i := range b.last.Participants {
		c := &b.last.Participants[i]
		if c.IsDead || c.ID == exclude {
			continue
		}
		if best == nil || c.Health < best.Health {
			best = c
		}
	}
	return best
}

// woundedAlly - самый раненый союзник, если он ниже порога лечения
func (b *Bot) woundedAlly() *api.CombatantView {
	ally := b.lowestAlly("")
	if ally == nil || ally.MaxHealth == 0 {
		return nil
	}
	if float64(ally.Health)/float64(ally.MaxHealth) >= healThreshold {
		return nil
	}
	return ally
}

func (b *Bot) firstEnemy() string {
	if b.last == nil {
		return ""
	}
	for _, e := range b.last.Enemies {
		if e.Health > 0 {
			return e.ID
		}
	}
	return ""
}

// wrongChoice - любой вариант, кроме правильного. Без вариантов бот "не знает".
func wrongChoice(answer string, choices []string, rng *rand.Rand) string {
	var wrong []string
	for _, c := range choices {
		if !strings.EqualFold(strings.TrimSpace(c), strings.TrimSpace(answer)) {
			wrong = append(wrong, c)
		}
	}
	if len(wrong) == 0 {
		return "?"
	}
	return wrong[rng.Intn(len(wrong))]
}

// --- Отправка команд ---

func (b *Bot) send(msgType string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		b.log.WithError(err).Error("Failed to marshal bot payload")
		return
	}
	b.commander.ProcessCommand(context.Background(), b.ConnID, api.ClientCommand{Type: msgType, Payload: raw})
}
