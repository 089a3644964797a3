package game

import "fmt"

// Config carries every physics and layout constant. It is built once and
// handed to the Level, Ball and Obstacle constructors.
type Config struct {
	Friction            float64 `json:"friction"`
	MaxVelocity         float64 `json:"max_velocity"`
	StepScale           float64 `json:"step_scale"`  // lookahead fraction of a full move
	SpeedScale          float64 `json:"speed_scale"` // drag distance -> speed
	BallRadius          float64 `json:"ball_radius"`
	ScreenW             float64 `json:"screen_w"`
	ScreenH             float64 `json:"screen_h"`
	BorderSize          float64 `json:"border_size"`
	SquareSize          float64 `json:"square_size"`
	CheckpointThreshold float64 `json:"checkpoint_threshold"`
	TickRate            int     `json:"tick_rate"`
	WinAnimationSeconds float64 `json:"win_animation_seconds"`
}

// DefaultConfig returns the tuned gameplay constants.
//
// Friction is 1 per tick. Speeds top out at MaxVelocity*SpeedScale = 50, so a
// full-power shot rolls for 50 ticks.
func DefaultConfig() Config {
	return Config{
		Friction:            1,
		MaxVelocity:         500,
		StepScale:           0.01,
		SpeedScale:          0.1,
		BallRadius:          15,
		ScreenW:             1280,
		ScreenH:             720,
		BorderSize:          30,
		SquareSize:          20,
		CheckpointThreshold: 5,
		TickRate:            60,
		WinAnimationSeconds: 0,
	}
}

// BallSize is the side of the square bounds used for the ball and the target.
func (c Config) BallSize() float64 {
	return c.BallRadius
}

// TickSeconds is the simulated duration of one tick.
func (c Config) TickSeconds() float64 {
	if c.TickRate <= 0 {
		return 1.0 / 60
	}
	return 1 / float64(c.TickRate)
}

// Validate rejects configurations the simulation cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Friction <= 0:
		return fmt.Errorf("friction must be positive, got %v", c.Friction)
	case c.MaxVelocity <= 0:
		return fmt.Errorf("max velocity must be positive, got %v", c.MaxVelocity)
	case c.SpeedScale <= 0:
		return fmt.Errorf("speed scale must be positive, got %v", c.SpeedScale)
	case c.StepScale < 0:
		return fmt.Errorf("step scale must not be negative, got %v", c.StepScale)
	case c.BallRadius <= 0:
		return fmt.Errorf("ball radius must be positive, got %v", c.BallRadius)
	case c.TickRate <= 0:
		return fmt.Errorf("tick rate must be positive, got %d", c.TickRate)
	case c.WinAnimationSeconds < 0:
		return fmt.Errorf("win animation must not be negative, got %v", c.WinAnimationSeconds)
	}
	return nil
}
