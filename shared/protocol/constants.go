package protocol

const (
	GameName    = "Abandoned"
	GameVersion = "0.3.0"

	// REST endpoints of the game server.
	PathLogin     = "/api/auth/login"
	PathGameState = "/api/game/state"
	PathIdleStart = "/api/idle/start"
	PathIdleEnd   = "/api/idle/finish"
	PathLevelUp   = "/api/user/levelup"
	PathUpgrade   = "/api/user/upgrade"
	PathEvolve    = "/api/user/evolve"

	// Snapshot cadence hint for feed consumers.
	SnapshotIntervalMs = 250
)
