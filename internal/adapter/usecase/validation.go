package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"socialbooster/internal/core/domain"
	"socialbooster/internal/core/port"
)

const (
	maxBudgetDigits = 12
	budgetPlaces    = 2
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON names so messages line up with the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput checks in and returns a *domain.ValidationError or nil.
// required lists the fields that must be present.
func validateInput(in port.CampaignInput, required ...string) error {
	verr := domain.NewValidationError()

	supplied := map[string]bool{
		"name":       in.Name != nil,
		"platform":   in.Platform != nil,
		"budget":     in.Budget != nil,
		"status":     in.Status != nil,
		"start_date": in.StartDate != nil,
		"end_date":   in.EndDate != nil,
	}
	for _, f := range required {
		if !supplied[f] {
			verr.Add(f, "This field is required.")
		}
	}

	if err := validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), fieldMessage(fe, in))
		}
	}

	if in.Name != nil && strings.TrimSpace(*in.Name) == "" && !verr.Has("name") {
		verr.Add("name", "This field may not be blank.")
	}
	if in.Budget != nil {
		if msg := checkBudget(*in.Budget); msg != "" {
			verr.Add("budget", msg)
		}
	}
	return verr.OrNil()
}

func fieldMessage(fe validator.FieldError, in port.CampaignInput) string {
	switch fe.Tag() {
	case "oneof":
		var value string
		switch {
		case fe.Field() == "platform" && in.Platform != nil:
			value = *in.Platform
		case fe.Field() == "status" && in.Status != nil:
			value = *in.Status
		}
		return fmt.Sprintf("%q is not a valid choice.", value)
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	default:
		return fmt.Sprintf("Failed on the '%s' rule.", fe.Tag())
	}
}

// checkBudget enforces NUMERIC(12,2): at most two fractional digits and
// twelve digits overall. Negative budgets are accepted.
func checkBudget(d decimal.Decimal) string {
	if !d.Equal(d.Truncate(budgetPlaces)) {
		return fmt.Sprintf("Ensure that there are no more than %d decimal places.", budgetPlaces)
	}
	whole := d.Abs().Truncate(0).String()
	if len(whole) > maxBudgetDigits-budgetPlaces {
		return fmt.Sprintf("Ensure that there are no more than %d digits in total.", maxBudgetDigits)
	}
	return ""
}

// apply copies every supplied field of in onto c. Validation must have
// passed first.
func apply(c *domain.Campaign, in port.CampaignInput) {
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Platform != nil {
		c.Platform = domain.Platform(*in.Platform)
	}
	if in.Budget != nil {
		c.Budget = in.Budget.Round(budgetPlaces)
	}
	if in.Status != nil {
		c.Status = domain.Status(*in.Status)
	}
	if in.StartDate != nil {
		c.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		c.EndDate = *in.EndDate
	}
}

// validateFilter rejects enum filters outside their sets.
func validateFilter(f port.ListFilter) error {
	verr := domain.NewValidationError()
	if f.Status != "" && !f.Status.Valid() {
		verr.Add("status", fmt.Sprintf("%q is not a valid choice.", string(f.Status)))
	}
	if f.Platform != "" && !f.Platform.Valid() {
		verr.Add("platform", fmt.Sprintf("%q is not a valid choice.", string(f.Platform)))
	}
	return verr.OrNil()
}
