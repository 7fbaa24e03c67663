package server

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spacesedan/civicpulse/internal/models"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// validateSubmission checks the intake contract: every field present, email
// in a conventional shape. Runs strictly before any analysis call.
func validateSubmission(submission models.Submission) []string {
	var problems []string

	required := []struct {
		field string
		value string
	}{
		{"name", submission.Name},
		{"email", submission.Email},
		{"district", submission.District},
		{"state", submission.State},
		{"subject", submission.Subject},
		{"comment", submission.Comment},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			problems = append(problems, fmt.Sprintf("%s is required", r.field))
		}
	}

	if submission.Email != "" && !emailPattern.MatchString(submission.Email) {
		problems = append(problems, "email has an invalid format")
	}

	return problems
}
