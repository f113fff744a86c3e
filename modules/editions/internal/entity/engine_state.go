package entity

import "time"

type EngineState struct {
	DBVersion        int32
	EventHashVersion int32
	CreatedAt        time.Time
}
