package recorder

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Models lists every table the recorder migrates
var Models = []interface{}{
	&Flight{},
	&CollisionRecord{},
	&LifecycleRecord{},
	&FrameSample{},
}

// Flight is one run of the simulation
type Flight struct {
	gorm.Model
	FlightID  string `gorm:"size:32;uniqueIndex"`
	Seed      string `gorm:"size:20"` // decimal uint64; sqlite integers are signed
	StartedAt time.Time
	EndedAt   *time.Time
	GameTime  float64
	Settings  datatypes.JSON
}

// CollisionRecord is a ship-asteroid hit
type CollisionRecord struct {
	ID            uint `gorm:"primarykey"`
	FlightRowID   uint `gorm:"index"`
	GameTime      float64
	AsteroidID    uint64
	AsteroidIndex int
	PositionX     float64
	PositionY     float64
	PositionZ     float64
	Size          float64
	Damage        float64
	HealthAfter   float64
}

// LifecycleRecord is a ship state transition
type LifecycleRecord struct {
	ID          uint `gorm:"primarykey"`
	FlightRowID uint `gorm:"index"`
	GameTime    float64
	FromState   string `gorm:"size:16"`
	ToState     string `gorm:"size:16"`
}

// FrameSample is a periodic snapshot of the ship and particle load
type FrameSample struct {
	ID          uint `gorm:"primarykey"`
	FlightRowID uint `gorm:"index"`
	GameTime    float64
	PositionX   float64
	PositionY   float64
	PositionZ   float64
	Speed       float64
	Health      float64
	Particles   int
}
