// Package gamesync classifies the relationship between a client-reported
// room version and the server's current version, and decides whether
// incremental replay or a full resync is required.
package gamesync

import "fmt"

// DefaultMaxGap is the largest gap still served by incremental event
// replay. Past it the client should request a full snapshot.
const DefaultMaxGap = 10

// CheckResult describes one version comparison.
type CheckResult struct {
	Valid        bool   `json:"valid"`
	HasGap       bool   `json:"has_gap"`
	GapSize      int64  `json:"gap_size"`
	RequiresSync bool   `json:"requires_sync"`
	Message      string `json:"message"`
}

// Check compares client and server versions. A client ahead of the server
// is invalid: the server state is ground truth and no gap is reported.
func Check(clientVersion, serverVersion int64) CheckResult {
	switch {
	case clientVersion == serverVersion:
		return CheckResult{Valid: true, Message: "in sync"}
	case clientVersion < serverVersion:
		gap := serverVersion - clientVersion
		return CheckResult{
			Valid:        true,
			HasGap:       true,
			GapSize:      gap,
			RequiresSync: true,
			Message:      fmt.Sprintf("client is %d versions behind", gap),
		}
	default:
		return CheckResult{
			RequiresSync: true,
			Message:      fmt.Sprintf("client version %d is ahead of server version %d", clientVersion, serverVersion),
		}
	}
}

// MissingVersions returns the inclusive range (clientVersion, serverVersion]
// the client has to replay, or nil when it is caught up.
func MissingVersions(clientVersion, serverVersion int64) []int64 {
	if clientVersion >= serverVersion {
		return nil
	}
	out := make([]int64, 0, serverVersion-clientVersion)
	for v := clientVersion + 1; v <= serverVersion; v++ {
		out = append(out, v)
	}
	return out
}

// IsStale reports whether the gap exceeds maxGap, at which point
// incremental replay cost is no longer bounded and the client should fetch
// a snapshot. maxGap <= 0 selects DefaultMaxGap.
func IsStale(clientVersion, serverVersion, maxGap int64) bool {
	if maxGap <= 0 {
		maxGap = DefaultMaxGap
	}
	return serverVersion-clientVersion > maxGap
}

// ShouldRejectUpdate reports whether an incoming mutation must be rejected
// as stale: an update has to advance the version past the current one.
// Together with the transactional version increment this enforces
// single-writer ordering per room without in-memory locks.
func ShouldRejectUpdate(existingVersion, incomingVersion int64) bool {
	return incomingVersion <= existingVersion
}
