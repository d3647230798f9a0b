// Package roster loads the league's participants and their team entries,
// fetched once from the league membership endpoint and cached on disk.
package roster

import (
	"fmt"
	"strings"
)

// GuidSeparator joins a participant's uuid and user id in the upstream's
// composite identity.
const GuidSeparator = "-0-"

type TeamEntry struct {
	Name string `json:"name"`
	// Slot is 1 for the primary team, 2 and 3 for secondary teams.
	Slot int `json:"teamno"`
}

type Participant struct {
	UUID   string      `json:"uuid"`
	UserID string      `json:"userid"`
	Teams  []TeamEntry `json:"teams"`
}

func (p Participant) Guid() string {
	return fmt.Sprintf("%s%s%s", p.UUID, GuidSeparator, p.UserID)
}

// ParseGuid splits a composite `{uuid}-0-{userid}` identity.
func ParseGuid(guid string) (uuid, userId string, ok bool) {
	first := strings.Index(guid, GuidSeparator)
	if first < 0 {
		return "", "", false
	}
	last := strings.LastIndex(guid, GuidSeparator)
	uuid = guid[:first]
	userId = guid[last+len(GuidSeparator):]
	if uuid == "" || userId == "" {
		return "", "", false
	}
	return uuid, userId, true
}

// Team identifies one team across the season.
type Team struct {
	Participant Participant
	Entry       TeamEntry
}

func (t Team) Primary() bool {
	return t.Entry.Slot == 1
}

// Teams flattens participants into their teams in roster order.
func Teams(participants []Participant) []Team {
	var teams []Team
	for _, p := range participants {
		for _, entry := range p.Teams {
			teams = append(teams, Team{Participant: p, Entry: entry})
		}
	}
	return teams
}
