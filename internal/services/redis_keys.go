package services

import "time"

const (
	KeySession        = "calibration:session:%s"
	KeySenseResult    = "calibration:sense:%s:%d"
	KeySessionCounter = "calibration:session_counter"
	KeyLeaderboard    = "calibration:leaderboard"
	KeyWallet         = "hub:wallet:%s"
	KeyHubGame        = "hub:game:%d"
	KeyRateLimit      = "ratelimit:%s:%s"
	KeyLoginChallenge = "auth:challenge:%s"

	TTLSession = 30 * 24 * time.Hour // 30 days
	TTLHubGame = 30 * 24 * time.Hour

	DefaultRateLimitSenses = 30 // Max 30 sense submissions per minute
	DefaultRateLimitStart  = 10 // Max 10 starts per minute
)
