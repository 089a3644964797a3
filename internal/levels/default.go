package levels

import "github.com/shootyourshot/backend/internal/game"

// DefaultLevel is the screen-bordered level played when nothing else is
// selected: the ball starts in the middle and the hole sits just below the
// top border.
func DefaultLevel(cfg game.Config) *game.Level {
	start := game.NewVec2(cfg.ScreenW/2, cfg.ScreenH/2)
	hole := game.NewVec2(cfg.ScreenW/2, cfg.BorderSize+cfg.BallRadius+5)
	return game.NewLevel(cfg, start, hole, game.Borders(cfg))
}

// CrossingLevel adds a block patrolling across the ball's path to the hole.
func CrossingLevel(cfg game.Config) *game.Level {
	start := game.NewVec2(cfg.ScreenW/2, cfg.ScreenH-cfg.BorderSize-4*cfg.BallRadius)
	hole := game.NewVec2(cfg.ScreenW/2, cfg.BorderSize+cfg.BallRadius+5)

	size := cfg.SquareSize * 4
	y := cfg.ScreenH/2 - size/2
	left := cfg.BorderSize + size
	right := cfg.ScreenW - cfg.BorderSize - 2*size
	patrol := game.NewPatrollingObstacle(cfg, game.NewRect(left, y, size, size),
		[]game.Vec2{game.NewVec2(left, y), game.NewVec2(right, y)}, 4)

	obstacles := append(game.Borders(cfg), patrol)
	return game.NewLevel(cfg, start, hole, obstacles)
}

// Builtin lists the levels seeded into an empty store, by name.
func Builtin(cfg game.Config) map[string]*game.Level {
	return map[string]*game.Level{
		"Level 0":  DefaultLevel(cfg),
		"Crossing": CrossingLevel(cfg),
	}
}
