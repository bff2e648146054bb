package main

import (
	"encoding/json"
	"fightschool-server/internal/infrastructure/storage"
	"fmt"
	"os"
	"sort"
	"time"
)

func main() {
	if len(os.Args) < 3 {
		printHelp()
		return
	}

	svc := &storage.JournalService{}
	j, err := svc.Load(os.Args[2])
	if err != nil {
		fmt.Printf("Cannot read journal: %v\n", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "show":
		fmt.Printf("session %s  fight %s  seed %d\n", j.SessionID, j.FightID, j.Seed)
		fmt.Printf("started %s  outcome %s  entries %d\n",
			time.Unix(j.Timestamp, 0).UTC().Format(time.RFC3339), j.Outcome, len(j.Entries))
		for _, e := range j.Entries {
			fmt.Printf("  r%-3d %-18s %-20s %s\n", e.Round, e.Message, e.ParticipantID, e.Payload)
		}
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(j); err != nil {
			fmt.Printf("Encode failed: %v\n", err)
			os.Exit(1)
		}
	case "stats":
		perMessage := make(map[string]int)
		perParticipant := make(map[string]int)
		rounds := 0
		for _, e := range j.Entries {
			perMessage[e.Message.String()]++
			if e.ParticipantID != "" {
				perParticipant[e.ParticipantID]++
			}
			if e.Round > rounds {
				rounds = e.Round
			}
		}
		fmt.Printf("rounds %d  outcome %s\n", rounds, j.Outcome)
		printCounts("messages", perMessage)
		printCounts("participants", perParticipant)
	default:
		printHelp()
	}
}

func printCounts(title string, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Println(title + ":")
	for _, k := range keys {
		fmt.Printf("  %-20s %d\n", k, counts[k])
	}
}

func printHelp() {
	fmt.Println(`Journal - просмотр журналов боев (.fsjl)
Commands:
  show <file>   - заголовок и все принятые сообщения по раундам
  json <file>   - журнал целиком в JSON
  stats <file>  - число сообщений по типам и участникам`)
}
