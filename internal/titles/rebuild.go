package titles

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"foildb/internal/fileutil"
	"foildb/internal/services"
)

// RebuildReason explains why the snapshot was or was not regenerated.
type RebuildReason string

const (
	ReasonMissingGenerated RebuildReason = "missing_generated_file"
	ReasonForcedRefresh    RebuildReason = "forced_refresh"
	ReasonUpstreamChanged  RebuildReason = "upstream_changed"
	ReasonUpToDate         RebuildReason = "up_to_date"
)

// RebuildDecision captures the regeneration decision plus the source-hash
// comparison that drove it. PreviousHash is empty when no marker was recorded
// yet.
type RebuildDecision struct {
	Rebuild      bool          `json:"rebuild"`
	Reason       RebuildReason `json:"reason"`
	CurrentHash  string        `json:"current_source_hash"`
	PreviousHash string        `json:"previous_source_hash"`
}

// DecideRebuild determines whether the generated snapshot must be
// regenerated: when the generated file is missing, when a refresh is forced,
// or when the upstream feed's content hash differs from the last-recorded
// marker. The upstream feed must exist; its absence is structural.
func DecideRebuild(generatedPath, feedPath, markerPath string, force bool) (RebuildDecision, error) {
	currentHash, _, err := fileutil.FileSHA256(feedPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return RebuildDecision{}, services.Wrap(services.ErrSource, "titles", "rebuild",
				fmt.Sprintf("upstream feed %s missing", feedPath), err)
		}
		return RebuildDecision{}, services.Wrap(services.ErrSource, "titles", "rebuild", feedPath, err)
	}

	previousHash, err := ReadMarker(markerPath)
	if err != nil {
		return RebuildDecision{}, err
	}

	decision := RebuildDecision{CurrentHash: currentHash, PreviousHash: previousHash}

	if _, err := os.Stat(generatedPath); errors.Is(err, fs.ErrNotExist) {
		decision.Rebuild = true
		decision.Reason = ReasonMissingGenerated
		return decision, nil
	} else if err != nil {
		return RebuildDecision{}, services.Wrap(services.ErrSource, "titles", "rebuild", generatedPath, err)
	}

	if force {
		decision.Rebuild = true
		decision.Reason = ReasonForcedRefresh
		return decision, nil
	}

	if previousHash == "" || previousHash != currentHash {
		decision.Rebuild = true
		decision.Reason = ReasonUpstreamChanged
		return decision, nil
	}

	decision.Reason = ReasonUpToDate
	return decision, nil
}

// ReadMarker returns the last-recorded upstream hash, or "" when no marker
// exists yet.
func ReadMarker(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", services.Wrap(services.ErrSource, "titles", "marker", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteMarker persists the upstream hash after a successful regeneration so
// the next run can detect an unchanged feed.
func WriteMarker(path, hash string) error {
	if err := fileutil.WriteFileAtomic(path, []byte(hash+"\n"), 0o644); err != nil {
		return services.Wrap(services.ErrSource, "titles", "marker", path, err)
	}
	return nil
}
