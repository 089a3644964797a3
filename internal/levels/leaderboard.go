package levels

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/shootyourshot/backend/internal/models"
)

var ErrNoLeaderboard = errors.New("leaderboard cache not configured")

// Leaderboard keeps each player's best stroke count per level in a sorted
// set. A lower score ranks higher.
type Leaderboard struct {
	rdb *redis.Client
}

func NewLeaderboard(rdb *redis.Client) *Leaderboard {
	return &Leaderboard{rdb: rdb}
}

func leaderboardKey(levelID int) string {
	return fmt.Sprintf("leaderboard:%d", levelID)
}

// Submit records strokes for a player, keeping the lower of old and new.
func (b *Leaderboard) Submit(ctx context.Context, levelID, playerID, strokes int) error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.ZAddArgs(ctx, leaderboardKey(levelID), redis.ZAddArgs{
		LT:      true,
		Members: []redis.Z{{Score: float64(strokes), Member: strconv.Itoa(playerID)}},
	}).Err()
}

// Top returns up to limit entries, ranked. Names are left empty.
func (b *Leaderboard) Top(ctx context.Context, levelID, limit int) ([]models.LeaderboardEntry, error) {
	if b == nil || b.rdb == nil {
		return nil, ErrNoLeaderboard
	}
	zs, err := b.rdb.ZRangeWithScores(ctx, leaderboardKey(levelID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]models.LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		id, err := strconv.Atoi(member)
		if err != nil {
			continue
		}
		out = append(out, models.LeaderboardEntry{
			Rank:     len(out) + 1,
			PlayerID: id,
			Strokes:  int(z.Score),
		})
	}
	return out, nil
}
