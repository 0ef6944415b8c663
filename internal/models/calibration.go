package models

const (
	// SenseCount is the number of maze senses a calibration run must complete.
	SenseCount = 6

	// AllSenses is the SenseSet value with every sense recorded.
	AllSenses SenseSet = 1<<SenseCount - 1

	// ScoreCap is the highest total score that still wins the run. Lower is better.
	ScoreCap uint64 = 20_000_000

	// MaxSenseScore bounds a single sense submission.
	MaxSenseScore uint64 = 10_000_000_000
)

type Character uint32

const (
	CharacterAlice Character = iota
	CharacterRobert
	CharacterCarol
)

func (c Character) Valid() bool {
	return c <= CharacterCarol
}

func (c Character) String() string {
	switch c {
	case CharacterAlice:
		return "ALICE"
	case CharacterRobert:
		return "ROBERT"
	case CharacterCarol:
		return "CAROL"
	default:
		return "UNKNOWN"
	}
}

var senseNames = [SenseCount]string{"hearing", "smell", "taste", "touch", "sight", "proprioception"}

// SenseName returns the human name of a sense, or "" when out of range.
func SenseName(senseID uint32) string {
	if senseID >= SenseCount {
		return ""
	}
	return senseNames[senseID]
}

func ValidSense(senseID uint32) bool {
	return senseID < SenseCount
}

// SenseSet is a bitmask where bit i is set iff sense i has been recorded.
type SenseSet uint32

func (s SenseSet) IsCompleted(senseID uint32) bool {
	if !ValidSense(senseID) {
		return false
	}
	return s&(1<<senseID) != 0
}

// MarkCompleted returns s with senseID recorded. Out of range ids are ignored.
func (s SenseSet) MarkCompleted(senseID uint32) SenseSet {
	if !ValidSense(senseID) {
		return s
	}
	return s | 1<<senseID
}

func (s SenseSet) Complete() bool {
	return s == AllSenses
}

func (s SenseSet) Count() int {
	n := 0
	for id := uint32(0); id < SenseCount; id++ {
		if s.IsCompleted(id) {
			n++
		}
	}
	return n
}

// CalibrationSession is one player's calibration attempt. Sessions are never
// deleted; a closed session stays readable until a new one replaces it.
type CalibrationSession struct {
	Player          string    `json:"player" redis:"player"`
	House           string    `json:"house" redis:"house"`
	Character       Character `json:"character" redis:"character"`
	CompletedSenses SenseSet  `json:"completed_senses" redis:"completed_senses"`
	TotalScore      uint64    `json:"total_score" redis:"total_score"`
	SessionID       uint32    `json:"session_id" redis:"session_id"`
	PlayerPoints    int64     `json:"player_points" redis:"player_points"`
	HousePoints     int64     `json:"house_points" redis:"house_points"`
	Active          bool      `json:"active" redis:"active"`
}

// SenseResult is written once per (player, sense) and never overwritten.
type SenseResult struct {
	SenseID     uint32 `json:"sense_id" redis:"sense_id"`
	Points      uint64 `json:"points" redis:"points"`
	ElapsedTime uint64 `json:"time_ms" redis:"time_ms"`
	Score       uint64 `json:"score" redis:"score"`
}

type LeaderboardEntry struct {
	Player     string    `json:"player" redis:"player"`
	Character  Character `json:"character" redis:"character"`
	TotalScore uint64    `json:"total_score" redis:"total_score"`
	Timestamp  uint64    `json:"timestamp" redis:"timestamp"`
}

type ExitResult struct {
	Won        bool   `json:"won"`
	TotalScore uint64 `json:"total_score"`
}
