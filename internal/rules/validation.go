package rules

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	MsgPositionCharset      = "Characters in the position name can be only alphabetic or spaces."
	MsgPositionTooShort     = "The position name should have at least two letters."
	MsgDeadlineInPast       = "Deadline can't be earlier than current date"
	MsgDeadlineAfterProject = "Deadline can't be after deadline project"
	MsgInvalidDate          = "Enter a valid date."
)

// FieldErrors collects field-level validation messages keyed by field name.
type FieldErrors map[string][]string

// Add appends a message for field.
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Merge copies every message of other into fe.
func (fe FieldErrors) Merge(other FieldErrors) {
	for field, msgs := range other {
		for _, m := range msgs {
			fe.Add(field, m)
		}
	}
}

// Empty reports whether no messages were recorded.
func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

// Err returns fe as an error, or nil when empty.
func (fe FieldErrors) Err() error {
	if fe.Empty() {
		return nil
	}
	return fe
}

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(fe[f], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// ValidatePositionName checks the charset first and the length second.
// Both checks always run so a caller sees every problem at once.
func ValidatePositionName(name string) FieldErrors {
	errs := FieldErrors{}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
			errs.Add("name", MsgPositionCharset)
			break
		}
	}
	if utf8.RuneCountInString(name) < 2 {
		errs.Add("name", MsgPositionTooShort)
	}
	return errs
}

// ValidateTaskDeadline checks that deadline is not in the past and, when the
// task is bound to a project, that its date is not after the project's.
func ValidateTaskDeadline(deadline, now time.Time, projectDeadline *time.Time) FieldErrors {
	errs := FieldErrors{}
	if deadline.Before(now) {
		errs.Add("deadline", MsgDeadlineInPast)
	}
	if projectDeadline != nil && dateOf(deadline).After(dateOf(*projectDeadline)) {
		errs.Add("deadline", MsgDeadlineAfterProject)
	}
	return errs
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04", // HTML datetime-local
	"2006-01-02",       // ISO date
	"2 Jan 2006",       // e.g., 30 Oct 2025
	"02 Jan 2006",
}

// ParseDate accepts the date formats the API documents. Date-only values
// are interpreted as midnight UTC.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so messages line up with request fields
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateStruct runs `validate` struct tags and converts failures into
// FieldErrors with user-facing messages.
func ValidateStruct(s any) FieldErrors {
	errs := FieldErrors{}
	err := validate.Struct(s)
	if err == nil {
		return errs
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.Add("__all__", err.Error())
		return errs
	}
	for _, fe := range verrs {
		errs.Add(fe.Field(), messageFor(fe))
	}
	return errs
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Select a valid choice. %v is not one of the available choices.", fe.Value())
	case "eqfield":
		return "The two password fields didn't match."
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}
