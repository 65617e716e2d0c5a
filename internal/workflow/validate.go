package workflow

import (
	"errors"
	"fmt"

	"festbook/internal/roster"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// memberRules mirrors roster.Member with the booking gate's rules
type memberRules struct {
	Name  string `validate:"notblank"`
	Email string `validate:"notblank,contains=@"`
	Phone string `validate:"notblank"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// Validate checks a group roster and stops at the first bad member.
// Missing fields are reported before a malformed email.
func Validate(members []roster.Member) *ValidationError {
	for i, m := range members {
		err := validate.Struct(memberRules{Name: m.Name, Email: m.Email, Phone: m.Phone})
		if err == nil {
			continue
		}

		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return &ValidationError{MemberIndex: i + 1, Message: err.Error()}
		}

		for _, fe := range fieldErrs {
			if fe.Tag() == "notblank" {
				return &ValidationError{
					MemberIndex: i + 1,
					Field:       fieldOf(fe.StructField()),
					Message:     fmt.Sprintf("Please fill all fields for team member %d", i+1),
				}
			}
		}
		return &ValidationError{
			MemberIndex: i + 1,
			Field:       roster.FieldEmail,
			Message:     fmt.Sprintf("Please enter a valid email for team member %d", i+1),
		}
	}
	return nil
}

func fieldOf(structField string) roster.Field {
	switch structField {
	case "Email":
		return roster.FieldEmail
	case "Phone":
		return roster.FieldPhone
	}
	return roster.FieldName
}
