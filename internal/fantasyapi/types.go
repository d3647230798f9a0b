package fantasyapi

import "encoding/json"

// every endpoint wraps its payload in `{"Data": {"Value": ...}}`
type envelope[T any] struct {
	Data struct {
		Value T `json:"Value"`
	} `json:"Data"`
}

type LeagueInfo struct {
	LeagueName string `json:"leagueName"`
}

type MemberRank struct {
	// Guid is a composite `{uuid}-0-{userid}`
	Guid     string `json:"guid"`
	TeamName string `json:"teamName"`
	TeamNo   Number `json:"teamNo"`
}

type LeagueMembers struct {
	MemRank    []MemberRank `json:"memRank"`
	LeagueInfo LeagueInfo   `json:"leagueInfo"`
}

type TeamPlayer struct {
	Id          Number `json:"id"`
	Position    Number `json:"playerpostion"`
	IsCaptain   Number `json:"iscaptain"`
	IsMgCaptain Number `json:"ismgcaptain"`
}

type TeamInfo struct {
	MaxTeamBal Number `json:"maxTeambal"`
}

// ChipFields are the upstream field names recording the race a chip was
// consumed on.
var ChipFields = []string{
	"limitlesstakengd",
	"is_wildcard_taken_gd_id",
	"finalfixtakengd",
	"nonigativetakengd",
	"extradrstakengd",
	"autopilottakengd",
}

type UserTeam struct {
	GdPoints   Number       `json:"gdpoints"`
	MaxTeamBal Number       `json:"maxteambal"`
	AltTeamBal Number       `json:"maxTeambal"`
	TeamInfo   *TeamInfo    `json:"team_info"`
	Players    []TeamPlayer `json:"playerid"`

	// Chips holds every field in ChipFields that was present in the payload.
	Chips map[string]Number `json:"-"`
}

func (t *UserTeam) UnmarshalJSON(data []byte) error {
	type plain UserTeam
	var decoded plain
	err := json.Unmarshal(data, &decoded)
	if err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	err = json.Unmarshal(data, &fields)
	if err != nil {
		return err
	}
	decoded.Chips = map[string]Number{}
	for _, name := range ChipFields {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		var n Number
		// a chip field of an unexpected shape is treated as unused
		if json.Unmarshal(raw, &n) == nil {
			decoded.Chips[name] = n
		}
	}

	*t = UserTeam(decoded)
	return nil
}

// Budget returns the team's budget, the upstream has moved this field around
// over time.
func (t UserTeam) Budget() Number {
	if t.MaxTeamBal.Present() {
		return t.MaxTeamBal
	}
	if t.AltTeamBal.Present() {
		return t.AltTeamBal
	}
	if t.TeamInfo != nil {
		return t.TeamInfo.MaxTeamBal
	}
	return Number{}
}

type OpponentTeam struct {
	UserTeam []UserTeam `json:"userTeam"`
}

type AdditionalStats struct {
	TotalPositionPts Number `json:"total_position_pts"`
	TotalDnfDqPts    Number `json:"total_dnf_dq_pts"`
	OvertakingPts    Number `json:"overtaking_pts"`
	FastestLapPts    Number `json:"fastest_lap_pts"`
	DotdPts          Number `json:"dotd_pts"`
	ValueForMoney    Number `json:"value_for_money"`
}

type Asset struct {
	PlayerId        Number           `json:"PlayerId"`
	PositionName    string           `json:"PositionName"`
	IsActive        Number           `json:"IsActive"`
	FullName        string           `json:"FUllName"`
	TeamName        string           `json:"TeamName"`
	Value           Number           `json:"Value"`
	OverallPoints   Number           `json:"OverallPpints"`
	AdditionalStats *AdditionalStats `json:"AdditionalStats"`
}

type RaceDay struct {
	MeetingNumber   Number `json:"MeetingNumber"`
	CircuitLocation string `json:"CircuitLocation"`
}

type Constraints struct {
	GamedayId Number `json:"GamedayId"`
}
