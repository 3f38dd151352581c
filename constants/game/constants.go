package game_constants

import "time"

const PointsPerCorrectAnswer = 10

// Room sizing
const (
	DefaultRoomCapacity = 2
	MinRoomCapacity     = 2
	MaxRoomCapacity     = 10
	RandomMatchCapacity = 2
)

// Question count bounds; Open Trivia DB serves at most 50 per call.
const (
	DefaultQuestionAmount = 10
	MaxQuestionAmount     = 50
)

// Room codes
const (
	RoomCodeLength       = 6
	RoomCodeCharset      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	RoomCodeMaxAttempts  = 10
	MaxCustomRoomCodeLen = 32
)

// Optimistic concurrency retry budgets
const (
	BulkSubmitRetries = 1
	MutationRetries   = 3
)

// Retention defaults
const (
	DefaultMatchMaxDuration      = 30 * time.Minute
	DefaultWaitingRoomTTL        = time.Hour
	DefaultFinishedRoomRetention = 24 * time.Hour
	DefaultSweepInterval         = time.Minute
)

// Cache TTLs
const (
	RoomSnapshotTTL = 5 * time.Second
	ProfileCacheTTL = 10 * time.Minute
)

const SuggestedUsersLimit = 5

const UnknownPlayerName = "Unknown"
