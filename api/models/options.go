package models

import (
	"errors"
	"fmt"
	"strings"
)

const MaxOptionLabelLength = 200

var (
	ErrNotEnoughOptions   = errors.New("a vote needs at least 2 distinct options")
	ErrOptionLabelTooLong = fmt.Errorf("option labels are limited to %d characters", MaxOptionLabelLength)
)

// NormalizeOptionLabels trims labels, drops empty ones, removes
// case-insensitive duplicates keeping the first spelling, and truncates the
// list to maxOptions. At least two distinct labels must survive.
func NormalizeOptionLabels(labels []string, maxOptions int) ([]string, error) {
	cleaned := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		if len(label) > MaxOptionLabelLength {
			return nil, ErrOptionLabelTooLong
		}
		key := strings.ToLower(label)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, label)
		if len(cleaned) == maxOptions {
			break
		}
	}
	if len(cleaned) < 2 {
		return nil, ErrNotEnoughOptions
	}
	return cleaned, nil
}
