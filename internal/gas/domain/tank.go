package gas

import "math"

// Tank identifiers at the second LNG terminal.
const (
	Tank1 = 1
	Tank2 = 2
)

// Breakpoint is one row of the tank strapping table: the stored volume of
// each tank at a whole-centimeter fill level. A nil volume means the level
// is outside that tank's calibrated range.
type Breakpoint struct {
	LevelCM int
	Tank1M3 *float64
	Tank2M3 *float64
}

// Volume returns the breakpoint's volume for one tank.
func (b Breakpoint) Volume(tank int) (float64, bool) {
	switch tank {
	case Tank1:
		if b.Tank1M3 == nil {
			return 0, false
		}
		return *b.Tank1M3, true
	case Tank2:
		if b.Tank2M3 == nil {
			return 0, false
		}
		return *b.Tank2M3, true
	default:
		return 0, false
	}
}

// LevelMMToCM converts a sensor level reading to the strapping table's
// centimeter scale.
func LevelMMToCM(levelMM float64) float64 {
	return levelMM / 10
}

// InterpolateVolume resolves a fractional fill level against its bracketing
// strapping rows. Exact whole-centimeter levels read the floor row directly.
// A missing bracketing volume yields ok == false; the caller decides how to
// degrade.
func InterpolateVolume(levelCM float64, floor, ceil Breakpoint, tank int) (float64, bool) {
	floorVol, ok := floor.Volume(tank)
	if !ok {
		return 0, false
	}
	if floor.LevelCM == ceil.LevelCM {
		return floorVol, true
	}
	ceilVol, ok := ceil.Volume(tank)
	if !ok {
		return 0, false
	}
	span := float64(ceil.LevelCM - floor.LevelCM)
	fraction := (levelCM - float64(floor.LevelCM)) / span
	return floorVol + fraction*(ceilVol-floorVol), true
}

// BracketLevels returns the floor and ceiling whole-centimeter levels that
// bracket a fractional level.
func BracketLevels(levelCM float64) (int, int) {
	return int(math.Floor(levelCM)), int(math.Ceil(levelCM))
}
