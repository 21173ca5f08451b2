package versions

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// CheckMinimum returns an error when current is older than minimum.
// An empty minimum is always satisfied, as is a current version that is not
// valid semver (development builds).
func CheckMinimum(current, minimum string) error {
	if minimum == "" {
		return nil
	}

	minSemver, err := semver.NewVersion(minimum)
	if err != nil {
		return fmt.Errorf("invalid minimum version %q: %w", minimum, err)
	}

	currentSemver, err := semver.NewVersion(current)
	if err != nil {
		return nil
	}

	if currentSemver.LessThan(minSemver) {
		return fmt.Errorf("requires forward-slots %s or newer, running %s", minSemver, currentSemver)
	}
	return nil
}
