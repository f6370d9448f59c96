package environment

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"runicworld/internal/config"
)

type WeatherKind string

const (
	WeatherClear WeatherKind = "clear"
	WeatherRain  WeatherKind = "rain"
	WeatherStorm WeatherKind = "storm"
)

type Phase string

const (
	PhaseDawn  Phase = "dawn"
	PhaseDay   Phase = "day"
	PhaseDusk  Phase = "dusk"
	PhaseNight Phase = "night"
)

// Clock is the in-game calendar time.
type Clock struct {
	Hours   int
	Minutes int
	Days    int
}

type State struct {
	Clock    Clock
	Phase    Phase
	Lighting LightingState
	Weather  WeatherState
}

type LightingState struct {
	Ambient     float64
	SunAngle    float64
	FogDensity  float64
	WeatherTint float64
}

type WeatherState struct {
	Kind          WeatherKind
	Intensity     float64
	WindSpeed     float64
	WindDirection float64
	Precipitation float64
}

// Environment advances the world clock and weather. In-game minutes pass at
// cfg.MinutesPerSecond per real second.
type Environment struct {
	mu           sync.Mutex
	cfg          config.EnvironmentConfig
	rng          *rand.Rand
	state        State
	minuteAccum  float64
	weatherTimer time.Duration
}

func New(cfg config.EnvironmentConfig, seed int64) *Environment {
	if cfg.MinutesPerSecond <= 0 {
		cfg.MinutesPerSecond = 1
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	env := &Environment{
		cfg: cfg,
		rng: rng,
	}
	env.state.Clock = Clock{Hours: cfg.StartHour, Minutes: 0, Days: 1}
	env.state.Phase = determinePhase(cfg.StartHour)
	env.state.Weather = WeatherState{Kind: WeatherClear, WindSpeed: cfg.WindBase}
	env.state.Lighting = computeLighting(env.state.Clock, env.state.Weather, env.state.Phase)
	env.weatherTimer = env.randomWeatherDuration()
	return env
}

// Step advances the clock by the given real-time delta and returns the new
// state.
func (e *Environment) Step(delta time.Duration) State {
	if delta <= 0 {
		delta = 16 * time.Millisecond
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.minuteAccum += delta.Seconds() * e.cfg.MinutesPerSecond
	for e.minuteAccum >= 1 {
		e.minuteAccum -= 1
		e.state.Clock.Minutes++
		if e.state.Clock.Minutes >= 60 {
			e.state.Clock.Minutes = 0
			e.state.Clock.Hours = (e.state.Clock.Hours + 1) % 24
			if e.state.Clock.Hours == 0 {
				e.state.Clock.Days++
			}
		}
	}

	e.weatherTimer -= delta
	if e.weatherTimer <= 0 {
		e.state.Weather = e.rollWeather()
		e.weatherTimer = e.randomWeatherDuration()
	}

	e.state.Phase = determinePhase(e.state.Clock.Hours)
	e.state.Lighting = computeLighting(e.state.Clock, e.state.Weather, e.state.Phase)
	return e.state
}

// DayTime returns the current clock as (hours, minutes, days).
func (e *Environment) DayTime() (int, int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.state.Clock
	return c.Hours, c.Minutes, c.Days
}

func (e *Environment) CurrentState() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Environment) rollWeather() WeatherState {
	roll := e.rng.Float64()
	var kind WeatherKind
	switch {
	case roll < e.cfg.StormChance:
		kind = WeatherStorm
	case roll < e.cfg.StormChance+e.cfg.RainChance:
		kind = WeatherRain
	default:
		kind = WeatherClear
	}

	intensity := 0.0
	precipitation := 0.0
	wind := e.cfg.WindBase + e.rng.Float64()*e.cfg.WindVariance
	if kind == WeatherRain {
		intensity = 0.35 + e.rng.Float64()*0.4
		precipitation = intensity
	} else if kind == WeatherStorm {
		intensity = 0.65 + e.rng.Float64()*0.35
		precipitation = intensity
		wind += e.cfg.WindVariance * 0.7
	}
	direction := e.rng.Float64() * 2 * math.Pi
	return WeatherState{
		Kind:          kind,
		Intensity:     clamp01(intensity),
		WindSpeed:     wind,
		WindDirection: direction,
		Precipitation: clamp01(precipitation),
	}
}

func (e *Environment) randomWeatherDuration() time.Duration {
	min := e.cfg.WeatherMinDuration.Duration()
	max := e.cfg.WeatherMaxDuration.Duration()
	if min <= 0 {
		min = 90 * time.Second
	}
	if max <= min {
		return min
	}
	return min + time.Duration(e.rng.Float64()*float64(max-min))
}

// determinePhase: dawn 5:00-7:59, day 8:00-17:59, dusk 18:00-20:59, night
// otherwise.
func determinePhase(hour int) Phase {
	switch {
	case hour >= 5 && hour < 8:
		return PhaseDawn
	case hour >= 8 && hour < 18:
		return PhaseDay
	case hour >= 18 && hour < 21:
		return PhaseDusk
	default:
		return PhaseNight
	}
}

func computeLighting(clock Clock, weather WeatherState, phase Phase) LightingState {
	progress := (float64(clock.Hours) + float64(clock.Minutes)/60) / 24
	sunAngle := progress * 2 * math.Pi
	sunHeight := math.Cos((progress - 0.5) * 2 * math.Pi)
	if sunHeight < 0 {
		sunHeight = 0
	}
	ambient := 0.12 + 0.88*sunHeight
	if phase == PhaseNight {
		ambient = 0.08 + 0.12*sunHeight
	}
	ambient *= 1 - 0.35*weather.Intensity
	fog := 0.02 + 0.25*weather.Intensity
	tint := 0.0
	switch weather.Kind {
	case WeatherRain:
		tint = 0.15 * weather.Intensity
	case WeatherStorm:
		tint = 0.35 * weather.Intensity
	}
	return LightingState{
		Ambient:     clamp01(ambient),
		SunAngle:    sunAngle,
		FogDensity:  clamp01(fog),
		WeatherTint: clamp01(tint),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
