package storage

import (
	"encoding/binary"
	"encoding/json"
	"fightschool-server/internal/domain"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	JournalMagic    string = `FSJL` // 4 байта
	JournalVersion1 uint32 = 1
)

// JournalFileHeader - заголовок файла журнала.
// binary.Write пишет его целиком: тут только массивы и числа.
type JournalFileHeader struct {
	Magic        [4]byte // 4 байта
	Version      uint32  // 4 байта
	Seed         int64   // 8 байт
	Timestamp    int64   // 8 байт
	Outcome      uint8   // 1 байт
	SessionIDLen uint8   // 1 байт
	FightIDLen   uint8   // 1 байт
	_            uint8   // выравнивание
	EntryCount   int32   // 4 байта
}

// EntryHeader - заголовок каждой записи журнала
type EntryHeader struct {
	Round          int32  // 4
	Message        uint8  // 1
	ParticipantLen uint8  // 1
	PayloadLen     uint16 // 2
}

// JournalService пишет и читает бинарные журналы боев
type JournalService struct {
	SaveDir string
}

func NewJournalService(dir string) (*JournalService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	return &JournalService{SaveDir: dir}, nil
}

// Save пишет журнал в файл и возвращает путь
func (s *JournalService) Save(j *domain.Journal) (string, error) {
	filename := fmt.Sprintf("journal_%s_%s_%d.fsjl", j.SessionID, j.FightID, j.Timestamp)
	path := filepath.Join(s.SaveDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WriteJournal(f, j); err != nil {
		return "", err
	}
	return path, nil
}

// Load читает журнал из файла
func (s *JournalService) Load(path string) (*domain.Journal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadJournal(f)
}

func shortString(name, v string) ([]byte, error) {
	b := []byte(v)
	if len(b) > 255 {
		return nil, fmt.Errorf("%s too long: %d", name, len(b))
	}
	return b, nil
}

func WriteJournal(w io.Writer, j *domain.Journal) error {
	sessionID, err := shortString("session id", j.SessionID)
	if err != nil {
		return err
	}
	fightID, err := shortString("fight id", j.FightID)
	if err != nil {
		return err
	}

	header := JournalFileHeader{
		Version:      JournalVersion1,
		Seed:         j.Seed,
		Timestamp:    j.Timestamp,
		Outcome:      uint8(j.Outcome),
		SessionIDLen: uint8(len(sessionID)),
		FightIDLen:   uint8(len(fightID)),
		EntryCount:   int32(len(j.Entries)),
	}
	copy(header.Magic[:], JournalMagic)

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(sessionID); err != nil {
		return err
	}
	if _, err := w.Write(fightID); err != nil {
		return err
	}

	for _, e := range j.Entries {
		participant, err := shortString("participant id", e.ParticipantID)
		if err != nil {
			return err
		}
		payloadLen := len(e.Payload)
		if payloadLen > 65535 {
			return fmt.Errorf("payload too long: %d", payloadLen)
		}

		eh := EntryHeader{
			Round:          int32(e.Round),
			Message:        uint8(e.Message),
			ParticipantLen: uint8(len(participant)),
			PayloadLen:     uint16(payloadLen),
		}
		if err := binary.Write(w, binary.LittleEndian, &eh); err != nil {
			return err
		}
		if _, err := w.Write(participant); err != nil {
			return err
		}
		if payloadLen > 0 {
			if _, err := w.Write(e.Payload); err != nil {
				return err
			}
		}
	}
	return nil
}

func ReadJournal(r io.Reader) (*domain.Journal, error) {
	var header JournalFileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if string(header.Magic[:]) != JournalMagic {
		return nil, fmt.Errorf("invalid magic")
	}
	if header.Version != JournalVersion1 {
		return nil, fmt.Errorf("unsupported version: %d (expected %d)", header.Version, JournalVersion1)
	}
	if header.EntryCount < 0 {
		return nil, fmt.Errorf("negative entry count: %d", header.EntryCount)
	}

	readString := func(n uint8) (string, error) {
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		return string(buf), nil
	}

	j := &domain.Journal{
		Seed:      header.Seed,
		Timestamp: header.Timestamp,
		Outcome:   domain.Outcome(header.Outcome),
		Entries:   make([]domain.JournalEntry, header.EntryCount),
	}
	var err error
	if j.SessionID, err = readString(header.SessionIDLen); err != nil {
		return nil, fmt.Errorf("failed to read session id: %w", err)
	}
	if j.FightID, err = readString(header.FightIDLen); err != nil {
		return nil, fmt.Errorf("failed to read fight id: %w", err)
	}

	for i := range j.Entries {
		var eh EntryHeader
		if err := binary.Read(r, binary.LittleEndian, &eh); err != nil {
			return nil, err
		}
		e := domain.JournalEntry{
			Round:   int(eh.Round),
			Message: domain.MessageType(eh.Message),
		}
		if e.ParticipantID, err = readString(eh.ParticipantLen); err != nil {
			return nil, err
		}
		if eh.PayloadLen > 0 {
			e.Payload = make([]byte, eh.PayloadLen)
			if _, err := io.ReadFull(r, e.Payload); err != nil {
				return nil, err
			}
		} else {
			e.Payload = json.RawMessage{}
		}
		j.Entries[i] = e
	}
	return j, nil
}
