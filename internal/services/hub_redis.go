package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"sa-birth-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

var _ Hub = (*RedisHub)(nil)

// RedisHub is a game hub that escrows both parties' points in Redis wallets.
// Lock and settlement each run as a single Lua script so a session's stakes
// move atomically.
type RedisHub struct {
	client         *redis.Client
	defaultBalance int64
}

func NewRedisHub(client *redis.Client, defaultBalance int64) *RedisHub {
	return &RedisHub{client: client, defaultBalance: defaultBalance}
}

// Wallets and hub games are Redis hashes. Amounts only move through
// HINCRBY, so balances stay exact integers.
var lockStakesScript = redis.NewScript(`
	local game_key = KEYS[1]
	local default_balance = ARGV[7]

	if redis.call("EXISTS", game_key) == 1 then
		return redis.error_reply("session already exists")
	end

	local function available(key)
		local balance = redis.call("HGET", key, "balance")
		if not balance then
			balance = default_balance
		end
		return tonumber(balance)
	end

	if available(KEYS[2]) < tonumber(ARGV[5]) then
		return redis.error_reply("insufficient balance for " .. ARGV[3])
	end
	if available(KEYS[3]) < tonumber(ARGV[6]) then
		return redis.error_reply("insufficient balance for " .. ARGV[4])
	end

	local function lock(key, player, points)
		redis.call("HSETNX", key, "player", player)
		redis.call("HSETNX", key, "balance", default_balance)
		redis.call("HSETNX", key, "locked_balance", "0")
		redis.call("HSETNX", key, "total_wagered", "0")
		redis.call("HSETNX", key, "total_won", "0")
		if points ~= "0" then
			redis.call("HINCRBY", key, "balance", "-" .. points)
			redis.call("HINCRBY", key, "locked_balance", points)
			redis.call("HINCRBY", key, "total_wagered", points)
		end
	end

	lock(KEYS[2], ARGV[3], ARGV[5])
	lock(KEYS[3], ARGV[4], ARGV[6])

	redis.call("HSET", game_key,
		"game_id", ARGV[1],
		"session_id", ARGV[2],
		"player1", ARGV[3],
		"player2", ARGV[4],
		"player1_points", ARGV[5],
		"player2_points", ARGV[6],
		"status", "locked",
		"player1_won", "false")
	redis.call("EXPIRE", game_key, ARGV[8])

	return "OK"
`)

var settleStakesScript = redis.NewScript(`
	local game_key = KEYS[1]

	local status = redis.call("HGET", game_key, "status")
	if not status then
		return redis.error_reply("game not found")
	end
	if status ~= "locked" then
		return redis.error_reply("game already ended")
	end

	if redis.call("EXISTS", KEYS[2]) == 0 or redis.call("EXISTS", KEYS[3]) == 0 then
		return redis.error_reply("wallet not found")
	end

	local p1_points = redis.call("HGET", game_key, "player1_points")
	local p2_points = redis.call("HGET", game_key, "player2_points")

	local function unlock(key, points)
		if points == "0" then
			return
		end
		local locked = redis.call("HINCRBY", key, "locked_balance", "-" .. points)
		if locked < 0 then
			redis.call("HSET", key, "locked_balance", "0")
		end
	end

	local function credit(key, points)
		if points ~= "0" then
			redis.call("HINCRBY", key, "balance", points)
			redis.call("HINCRBY", key, "total_won", points)
		end
	end

	unlock(KEYS[2], p1_points)
	unlock(KEYS[3], p2_points)

	local winner = KEYS[3]
	if ARGV[1] == "true" then
		winner = KEYS[2]
	end
	credit(winner, p1_points)
	credit(winner, p2_points)

	redis.call("HSET", game_key, "status", "settled", "player1_won", ARGV[1])

	return "OK"
`)

var fundWalletScript = redis.NewScript(`
	if redis.call("EXISTS", KEYS[1]) == 1 then
		return 0
	end
	redis.call("HSET", KEYS[1],
		"player", ARGV[1],
		"balance", ARGV[2],
		"locked_balance", "0",
		"total_wagered", "0",
		"total_won", "0")
	return 1
`)

func validPoints(points int64) bool {
	return points >= 0 && points <= models.MaxPoints
}

func (h *RedisHub) StartGame(ctx context.Context, gameID string, sessionID uint32, player1, player2 string, player1Points, player2Points int64) error {
	if !validPoints(player1Points) || !validPoints(player2Points) {
		return fmt.Errorf("stakes must be between 0 and %d", models.MaxPoints)
	}

	keys := []string{
		fmt.Sprintf(KeyHubGame, sessionID),
		fmt.Sprintf(KeyWallet, player1),
		fmt.Sprintf(KeyWallet, player2),
	}

	return lockStakesScript.Run(ctx, h.client, keys,
		gameID, sessionID, player1, player2,
		player1Points, player2Points, h.defaultBalance,
		int64(TTLHubGame/time.Second),
	).Err()
}

func (h *RedisHub) EndGame(ctx context.Context, sessionID uint32, player1Won bool) error {
	game, err := h.GetGame(ctx, sessionID)
	if err != nil {
		return err
	}

	keys := []string{
		fmt.Sprintf(KeyHubGame, sessionID),
		fmt.Sprintf(KeyWallet, game.Player1),
		fmt.Sprintf(KeyWallet, game.Player2),
	}

	return settleStakesScript.Run(ctx, h.client, keys, strconv.FormatBool(player1Won)).Err()
}

func (h *RedisHub) GetGame(ctx context.Context, sessionID uint32) (*models.HubGame, error) {
	cmd := h.client.HGetAll(ctx, fmt.Sprintf(KeyHubGame, sessionID))
	fields, err := cmd.Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get hub game: %v", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("hub game not found: %d", sessionID)
	}

	var game models.HubGame
	if err := cmd.Scan(&game); err != nil {
		return nil, fmt.Errorf("failed to decode hub game: %v", err)
	}
	return &game, nil
}

// GetWallet returns the player's wallet, or the opening balance a new
// wallet would start with.
func (h *RedisHub) GetWallet(ctx context.Context, player string) (*models.Wallet, error) {
	cmd := h.client.HGetAll(ctx, fmt.Sprintf(KeyWallet, player))
	fields, err := cmd.Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %v", err)
	}
	if len(fields) == 0 {
		return &models.Wallet{Player: player, Balance: h.defaultBalance}, nil
	}

	var wallet models.Wallet
	if err := cmd.Scan(&wallet); err != nil {
		return nil, fmt.Errorf("failed to decode wallet: %v", err)
	}
	return &wallet, nil
}

// FundWallet creates a wallet with balance unless one already exists.
func (h *RedisHub) FundWallet(ctx context.Context, player string, balance int64) (bool, error) {
	if !validPoints(balance) {
		return false, fmt.Errorf("balance must be between 0 and %d", models.MaxPoints)
	}

	created, err := fundWalletScript.Run(ctx, h.client, []string{fmt.Sprintf(KeyWallet, player)}, player, balance).Int()
	if err != nil {
		return false, fmt.Errorf("failed to fund wallet: %v", err)
	}
	return created == 1, nil
}
