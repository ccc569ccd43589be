// Package starfield simulates the decorative twinkling background. It has
// no effect on any other feature.
package starfield

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"
)

const (
	DefaultStars      = 200
	shootingStarOdds  = 0.005
	twinkleStep       = 0.02
	timeStep          = 0.01
	driftAmplitude    = 0.1
	minShootingLife   = 40
	shootingLifeRange = 60
)

type Star struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Size         float64 `json:"size"`
	Brightness   float64 `json:"brightness"`
	Alpha        float64 `json:"alpha"`
	twinklePhase float64
}

type ShootingStar struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	VX      float64 `json:"vx"`
	VY      float64 `json:"vy"`
	Life    int     `json:"life"`
	MaxLife int     `json:"max_life"`
	Alpha   float64 `json:"alpha"`
}

// Frame is one rendered step of the field.
type Frame struct {
	Width    float64        `json:"width"`
	Height   float64        `json:"height"`
	Stars    []Star         `json:"stars"`
	Shooting []ShootingStar `json:"shooting"`
}

type Field struct {
	mu       sync.Mutex
	width    float64
	height   float64
	time     float64
	rng      *rand.Rand
	stars    []Star
	shooting []ShootingStar
}

// New scatters n stars over a width x height canvas.
func New(width, height float64, n int, seed int64) *Field {
	f := &Field{width: width, height: height, rng: rand.New(rand.NewSource(seed))}
	f.stars = make([]Star, n)
	for i := range f.stars {
		f.stars[i] = Star{
			X:            f.rng.Float64() * width,
			Y:            f.rng.Float64() * height,
			Size:         f.rng.Float64()*2 + 0.5,
			Brightness:   f.rng.Float64()*0.8 + 0.2,
			twinklePhase: f.rng.Float64() * math.Pi * 2,
		}
	}
	return f
}

// Resize changes the canvas and wraps stars that fall outside it.
func (f *Field) Resize(width, height float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.width, f.height = width, height
	for i := range f.stars {
		f.wrap(&f.stars[i])
	}
}

// Step advances the simulation by one frame.
func (f *Field) Step() Frame {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.time += timeStep
	for i := range f.stars {
		s := &f.stars[i]
		s.twinklePhase += twinkleStep
		twinkle := math.Sin(s.twinklePhase)*0.3 + 0.7
		s.Alpha = s.Brightness * twinkle
		s.X += math.Sin(f.time+float64(i)) * driftAmplitude
		s.Y += math.Cos(f.time+float64(i)*0.5) * driftAmplitude
		f.wrap(s)
	}

	if f.rng.Float64() < shootingStarOdds {
		f.shooting = append(f.shooting, ShootingStar{
			X:       f.rng.Float64() * f.width,
			Y:       f.rng.Float64() * f.height * 0.5,
			VX:      (f.rng.Float64() - 0.5) * 8,
			VY:      f.rng.Float64()*4 + 2,
			MaxLife: int(f.rng.Float64()*shootingLifeRange) + minShootingLife,
		})
	}
	alive := f.shooting[:0]
	for _, s := range f.shooting {
		s.X += s.VX
		s.Y += s.VY
		s.Life++
		if s.Life > s.MaxLife {
			continue
		}
		s.Alpha = 1 - float64(s.Life)/float64(s.MaxLife)
		alive = append(alive, s)
	}
	f.shooting = alive

	return f.frameLocked()
}

func (f *Field) wrap(s *Star) {
	if s.X < 0 {
		s.X = f.width
	}
	if s.X > f.width {
		s.X = 0
	}
	if s.Y < 0 {
		s.Y = f.height
	}
	if s.Y > f.height {
		s.Y = 0
	}
}

func (f *Field) frameLocked() Frame {
	fr := Frame{
		Width:    f.width,
		Height:   f.height,
		Stars:    make([]Star, len(f.stars)),
		Shooting: make([]ShootingStar, len(f.shooting)),
	}
	copy(fr.Stars, f.stars)
	copy(fr.Shooting, f.shooting)
	return fr
}

// Run steps the field every interval and hands each frame to fn until ctx
// is done. The ticker is stopped on return.
func (f *Field) Run(ctx context.Context, interval time.Duration, fn func(Frame) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := fn(f.Step()); err != nil {
				return err
			}
		}
	}
}
