package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/studentcouncil/portal/internal/domain"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
var clockRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func ValidateRegister(email, username, displayName, password string) ValidationErrors {
	errs := make(ValidationErrors)

	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}

	username = strings.TrimSpace(username)
	if username == "" {
		errs.Add("username", "Username is required")
	} else if len(username) < 3 {
		errs.Add("username", "Username must be at least 3 characters")
	} else if len(username) > 50 {
		errs.Add("username", "Username is too long")
	} else if !usernameRegex.MatchString(username) {
		errs.Add("username", "Username can only contain letters, numbers, _ and -")
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		errs.Add("display_name", "Display name is required")
	} else if len(displayName) < 2 {
		errs.Add("display_name", "Display name must be at least 2 characters")
	} else if len(displayName) > 100 {
		errs.Add("display_name", "Display name is too long")
	}

	validatePassword(password, errs)

	return errs
}

func ValidateLogin(email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}

	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

// ValidateMeeting checks the creation contract: title, date, start/end
// time, venue and chairperson are required; times are HH:MM 24-hour;
// agenda item durations are 1-120 minutes.
func ValidateMeeting(title, date, startTime, endTime, venue string, chairperson uuid.UUID, agenda []domain.AgendaItem) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(title) == "" {
		errs.Add("title", "Title is required")
	} else if len(title) > 200 {
		errs.Add("title", "Title is too long")
	}

	if strings.TrimSpace(venue) == "" {
		errs.Add("venue", "Venue is required")
	}

	if date == "" {
		errs.Add("date", "Date is required")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		errs.Add("date", "Date must be YYYY-MM-DD")
	}

	validateClock("start_time", startTime, errs)
	validateClock("end_time", endTime, errs)

	if chairperson == uuid.Nil {
		errs.Add("chairperson", "Chairperson is required")
	}

	for i, item := range agenda {
		if strings.TrimSpace(item.Title) == "" {
			errs.Add(fmt.Sprintf("agenda.%d.title", i), "Agenda item title is required")
		}
		if item.Duration < 1 || item.Duration > 120 {
			errs.Add(fmt.Sprintf("agenda.%d.duration", i), "Duration must be between 1 and 120 minutes")
		}
	}

	return errs
}

func ValidateMessage(content string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(content) == "" {
		errs.Add("content", "Message content is required")
	} else if len(content) > 4000 {
		errs.Add("content", "Message is too long")
	}

	return errs
}

func validateClock(field, value string, errs ValidationErrors) {
	if value == "" {
		errs.Add(field, "Time is required")
	} else if !clockRegex.MatchString(value) {
		errs.Add(field, "Time must be HH:MM (24-hour)")
	}
}

func validatePassword(password string, errs ValidationErrors) {
	if len(password) < 8 {
		errs.Add("password", "Password must be at least 8 characters")
		return
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	missing := []string{}
	if !hasUpper {
		missing = append(missing, "one uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "one lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "one number")
	}

	if len(missing) > 0 {
		errs.Add("password", fmt.Sprintf("Password must contain at least %s", strings.Join(missing, ", ")))
	}
}
