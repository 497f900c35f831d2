package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aarnav1729/premier-support-hub/internal/api/dto"
)

func registerRules(v *validator.Validate, allowedDomain string) error {
	if err := v.RegisterValidation("company_email", companyEmail(allowedDomain)); err != nil {
		return err
	}
	v.RegisterStructValidation(vehicleRequestNames, dto.CreateVRRequest{})
	return nil
}

// companyEmail accepts addresses of the configured mail domain.
func companyEmail(allowedDomain string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		if allowedDomain == "" {
			return true
		}
		email := strings.ToLower(strings.TrimSpace(fl.Field().String()))
		return strings.HasSuffix(email, "@"+allowedDomain)
	}
}

// vehicleRequestNames requires one name per person.
func vehicleRequestNames(sl validator.StructLevel) {
	req, ok := sl.Current().Interface().(dto.CreateVRRequest)
	if !ok || req.NumberOfPeople < 1 {
		return
	}
	if len(req.Names) != req.NumberOfPeople {
		sl.ReportError(req.Names, "names", "Names", "names_match", "number_of_people")
	}
}
