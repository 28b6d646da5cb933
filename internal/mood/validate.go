package mood

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Rejection reason codes.
const (
	CodeInvalidMood   = "InvalidMood"
	CodeInvalidTag    = "InvalidTag"
	CodeMissingUserID = "MissingUserId"
)

type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var validate = func() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("moodtag", func(fl validator.FieldLevel) bool {
		return IsAllowedTag(fl.Field().String())
	})
	return v
}()

// Validate gates what may be persisted. On success it returns the normalized
// entry (date defaulted to now, tags deduplicated); ID and timestamps are left
// for the caller to assign.
func Validate(c Candidate, now time.Time) (Entry, error) {
	c.UserID = strings.TrimSpace(c.UserID)

	if err := validate.Struct(c); err != nil {
		return Entry{}, toValidationError(err)
	}
	if *c.Mood != math.Trunc(*c.Mood) {
		return Entry{}, invalidMood()
	}

	date := now
	if c.Date != nil && !c.Date.IsZero() {
		date = *c.Date
	}

	return Entry{
		UserID: c.UserID,
		Mood:   int(*c.Mood),
		Tags:   dedupeTags(c.Tags),
		Notes:  c.Notes,
		Date:   date,
	}, nil
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	switch {
	case fe.StructField() == "UserID":
		return &ValidationError{Code: CodeMissingUserID, Message: "userId is required"}
	case fe.StructField() == "Mood":
		return invalidMood()
	case strings.HasPrefix(fe.StructField(), "Tags"):
		return &ValidationError{
			Code:    CodeInvalidTag,
			Message: fmt.Sprintf("invalid tag %q: must be one of %s", fe.Value(), strings.Join(Tags, ", ")),
		}
	}
	return err
}

func invalidMood() error {
	return &ValidationError{
		Code:    CodeInvalidMood,
		Message: fmt.Sprintf("mood must be an integer between %d and %d", MinMood, MaxMood),
	}
}
