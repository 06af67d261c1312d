package lead

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/kmrtax/kmr-leads/internal/config"
	"golang.org/x/text/language"
)

// ErrInvalidLead is returned when a submission breaks a creation rule.
var ErrInvalidLead = errors.New(config.ErrInvalidLead)

var validate = validator.New()

// Input is the intake form submission.
type Input struct {
	Name         string      `validate:"required"`
	Phone        string      `validate:"required"`
	Service      Service     `validate:"required,oneof=tax book payroll itin biz audit amend other"`
	Email        string
	Notes        string
	BestContact  BestContact `validate:"omitempty,oneof=call text email"`
	Consent      bool
	Source       string
	ReferralCode string
	Referrer     string
	Language     string
}

// ReferralInput is the referral form submission. Name and Email describe the referred person.
type ReferralInput struct {
	Referrer string
	Name     string `validate:"required"`
	Email    string `validate:"required"`
	Language string
}

// New builds a lead from the intake form, stamping a fresh id and createdAt.
func New(in Input, now time.Time) (Lead, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)

	if err := validateStruct(in); err != nil {
		return Lead{}, err
	}
	if in.Email != "" {
		if err := checkEmail(in.Email); err != nil {
			return Lead{}, err
		}
	}
	lang, err := ParseLanguage(in.Language)
	if err != nil {
		return Lead{}, fmt.Errorf("%w: %v", ErrInvalidLead, err)
	}

	return Lead{
		ID:           NewID(),
		CreatedAt:    FormatTimestamp(now),
		Type:         TypeLead,
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Service:      in.Service,
		Notes:        in.Notes,
		BestContact:  in.BestContact,
		Consent:      in.Consent,
		Source:       in.Source,
		ReferralCode: in.ReferralCode,
		Language:     lang,
		Referrer:     in.Referrer,
	}, nil
}

// NewReferral builds a referral lead. Referrals always carry consent and
// email as the contact channel, since the referred person is reached by email.
func NewReferral(in ReferralInput, now time.Time) (Lead, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if err := validateStruct(in); err != nil {
		return Lead{}, err
	}
	if err := checkEmail(in.Email); err != nil {
		return Lead{}, err
	}
	lang, err := ParseLanguage(in.Language)
	if err != nil {
		return Lead{}, fmt.Errorf("%w: %v", ErrInvalidLead, err)
	}

	return Lead{
		ID:          NewID(),
		CreatedAt:   FormatTimestamp(now),
		Type:        TypeReferral,
		Name:        in.Name,
		Email:       in.Email,
		BestContact: ContactEmail,
		Consent:     true,
		Source:      string(TypeReferral),
		Language:    lang,
		Referrer:    strings.TrimSpace(in.Referrer),
	}, nil
}

// NewID returns a fresh client-side identifier.
func NewID() string {
	return uuid.NewString()
}

// ParseLanguage accepts any BCP-47 tag whose base language is English or Haitian Creole.
// An empty value defaults to English.
func ParseLanguage(s string) (Language, error) {
	if strings.TrimSpace(s) == "" {
		return LanguageEnglish, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrInvalidLanguage, err)
	}
	base, _ := tag.Base()
	switch l := Language(base.String()); l {
	case LanguageEnglish, LanguageHaitian:
		return l, nil
	}
	return "", errors.New(config.ErrInvalidLanguage)
}

func checkEmail(email string) error {
	if err := checkmail.ValidateFormat(email); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidLead, config.ErrInvalidEmail)
	}
	return nil
}

// validateStruct runs the struct tags and flattens the failures into one error.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidLead, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, field+" must be one of: "+fe.Param())
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidLead, strings.Join(msgs, ", "))
}
