package timesheet

import (
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
)

// Hour caps. A single line may carry at most 10 hours, a single day at most
// 10 hours across all lines, and a week at most 60 hours in total.
const (
	MaxHoursPerLine = 10.0
	MaxHoursPerDay  = 10.0
	MaxHoursPerWeek = 60.0
	MaxDayValue     = 24.0
)

// MaxCommentLength bounds the free-text comment on a line.
const MaxCommentLength = 500

var dayNames = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// ValidateLines checks a proposed line set against the hour rules. Rules run
// in a fixed order and the first violation wins. Day values are pointers so
// an absent value is distinguishable from an explicit zero; absence is only
// an error on the submit path (forSubmit).
//
// Pure: no lookups, no side effects.
func ValidateLines(lines []LineDTO, forSubmit bool) *internal.AppError {
	if len(lines) == 0 {
		return internal.NewValidationError("at least one line is required", internal.ErrCodeEmptyLines)
	}

	seen := make(map[int64]bool, len(lines))
	for i, line := range lines {
		if line.ProjectID == 0 {
			return internal.NewValidationError(
				fmt.Sprintf("line %d has no project", i+1), internal.ErrCodeMissingProject)
		}
		if seen[line.ProjectID] {
			return internal.NewValidationError(
				fmt.Sprintf("project %d appears on more than one line", line.ProjectID), internal.ErrCodeDuplicateProject)
		}
		seen[line.ProjectID] = true

		if line.Comment != nil && len(*line.Comment) > MaxCommentLength {
			return internal.NewValidationError(
				fmt.Sprintf("comment on line %d must not exceed %d characters", i+1, MaxCommentLength),
				internal.ErrCodeValidationFailed)
		}

		for d, v := range line.dayValues() {
			if v != nil && (*v < 0 || *v > MaxDayValue) {
				return internal.NewValidationError(
					fmt.Sprintf("%s on line %d must be between 0 and %.0f", strings.ToUpper(dayNames[d]), i+1, MaxDayValue),
					internal.ErrCodeDayOutOfRange)
			}
		}

		if line.Total() > MaxHoursPerLine {
			return internal.NewValidationError(
				fmt.Sprintf("line %d exceeds %.0f hours", i+1, MaxHoursPerLine), internal.ErrCodeLineCapExceeded)
		}
	}

	for d := 0; d < 7; d++ {
		dayTotal := 0.0
		for _, line := range lines {
			if v := line.dayValues()[d]; v != nil {
				dayTotal += *v
			}
		}
		if dayTotal > MaxHoursPerDay {
			return internal.NewValidationError(
				fmt.Sprintf("total hours for %s cannot exceed %.0f", strings.ToUpper(dayNames[d]), MaxHoursPerDay),
				internal.ErrCodeDayCapExceeded)
		}
	}

	weekTotal := 0.0
	for _, line := range lines {
		weekTotal += line.Total()
	}
	if weekTotal > MaxHoursPerWeek {
		return internal.NewValidationError(
			fmt.Sprintf("total hours cannot exceed %.0f per week", MaxHoursPerWeek), internal.ErrCodeWeekCapExceeded)
	}

	if forSubmit {
		for i, line := range lines {
			for d, v := range line.dayValues() {
				if v == nil {
					return internal.NewValidationError(
						fmt.Sprintf("%s on line %d is missing (0 is allowed, blank is not)", strings.ToUpper(dayNames[d]), i+1),
						internal.ErrCodeMissingDayValue)
				}
			}
		}
	}

	return nil
}

// ValidateWeek checks that the requested week start, once normalized, targets
// the current or the previous week.
func ValidateWeek(requested, now time.Time) *internal.AppError {
	if !AllowedWeekStart(requested, now) {
		return internal.NewValidationError(
			"only current week or last week is allowed", internal.ErrCodeWeekNotAllowed)
	}
	return nil
}
