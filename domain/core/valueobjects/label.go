package valueobjects

import (
	"fmt"
	"regexp"
	"strings"

	pkgerrors "crux-backend/pkg/errors"
)

// MaxLabelLength bounds the length of a tag label.
const MaxLabelLength = 50

var (
	labelPattern    = regexp.MustCompile(`^[a-z0-9-]{1,50}$`)
	rawLabelPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,50}$`)
)

// NormalizeLabel lowercases a label and checks it against the stored
// label format.
func NormalizeLabel(raw string) (string, error) {
	label := strings.ToLower(raw)
	if !labelPattern.MatchString(label) {
		return "", pkgerrors.NewValidationError(
			fmt.Sprintf("invalid label %q: use 1-50 lowercase letters, digits or hyphens", raw))
	}
	return label, nil
}

// NormalizeLabels normalizes every label and drops duplicates, keeping the
// first occurrence order.
func NormalizeLabels(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	labels := make([]string, 0, len(raw))
	for _, r := range raw {
		label, err := NormalizeLabel(r)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	return labels, nil
}

// IsValidRawLabel checks input before normalization; case is ignored.
func IsValidRawLabel(raw string) bool {
	return rawLabelPattern.MatchString(raw)
}
