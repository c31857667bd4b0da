package tracks

import "errors"

var (
	ErrQueryRequired     = errors.New("query is required")
	ErrInvalidEntityType = errors.New("invalid entity type")
	ErrTrackNotFound     = errors.New("track not found")
	ErrNoAudio           = errors.New("no audio available for track")
)
