package models

// Wallet holds a participant's hub points. Points locked in a running
// calibration are moved from Balance to LockedBalance until the hub settles.
type Wallet struct {
	Player        string `json:"player" redis:"player"`
	Balance       int64  `json:"balance" redis:"balance"`
	LockedBalance int64  `json:"locked_balance" redis:"locked_balance"`
	TotalWagered  int64  `json:"total_wagered" redis:"total_wagered"`
	TotalWon      int64  `json:"total_won" redis:"total_won"`
}

// MaxPoints bounds any single balance or stake handed to the hub. Settlement
// scripts compare amounts as Lua numbers, which are exact only up to 2^53.
const MaxPoints int64 = 1<<53 - 1

type HubGameStatus string

const (
	HubGameLocked  HubGameStatus = "locked"
	HubGameSettled HubGameStatus = "settled"
)

// HubGame is the hub's escrow record for one calibration session.
type HubGame struct {
	GameID        string        `json:"game_id" redis:"game_id"`
	SessionID     uint32        `json:"session_id" redis:"session_id"`
	Player1       string        `json:"player1" redis:"player1"`
	Player2       string        `json:"player2" redis:"player2"`
	Player1Points int64         `json:"player1_points" redis:"player1_points"`
	Player2Points int64         `json:"player2_points" redis:"player2_points"`
	Status        HubGameStatus `json:"status" redis:"status"`
	Player1Won    bool          `json:"player1_won" redis:"player1_won"`
}

type BalanceResponse struct {
	Balance       int64 `json:"balance"`
	LockedBalance int64 `json:"locked_balance"`
	TotalWagered  int64 `json:"total_wagered"`
	TotalWon      int64 `json:"total_won"`
}
