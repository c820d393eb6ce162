package checkout

import (
	"fmt"
	"net/mail"
	"regexp"
	"sort"
	"strings"

	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/entity"
)

// Field names reported in validation errors.
const (
	FieldFullName     = "full_name"
	FieldPhone        = "phone"
	FieldEmail        = "email"
	FieldAddress      = "address"
	FieldConfirmation = "payment_confirmation"
	FieldZone         = "zone"
)

// Kenyan mobile numbers: 07XXXXXXXX, 01XXXXXXXX, or +254/254 followed by 7 or 1 and 8 digits.
var kenyanPhone = regexp.MustCompile(`^(?:\+?254|0)[17]\d{8}$`)

// DeliveryForm is the contact and delivery form captured at checkout.
type DeliveryForm struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Zone     string `json:"zone"`
	Notes    string `json:"notes"`
}

// ValidationErrors maps a field name to a message for the form.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, v[f]))
	}
	return "invalid checkout form: " + strings.Join(parts, "; ")
}

// Normalize trims every field.
func (f DeliveryForm) Normalize() DeliveryForm {
	return DeliveryForm{
		FullName: strings.TrimSpace(f.FullName),
		Phone:    strings.Join(strings.Fields(f.Phone), ""),
		Email:    strings.TrimSpace(f.Email),
		Address:  strings.TrimSpace(f.Address),
		City:     strings.TrimSpace(f.City),
		Zone:     strings.TrimSpace(f.Zone),
		Notes:    strings.TrimSpace(f.Notes),
	}
}

// Validate checks the required fields and the format of the optional ones.
// It returns nil or a non-empty ValidationErrors.
func (f DeliveryForm) Validate() error {
	f = f.Normalize()
	errs := ValidationErrors{}

	if f.FullName == "" {
		errs[FieldFullName] = "Full name is required"
	}
	switch {
	case f.Phone == "":
		errs[FieldPhone] = "Phone number is required"
	case !kenyanPhone.MatchString(f.Phone):
		errs[FieldPhone] = "Enter a valid Kenyan phone number, e.g. 0712345678"
	}
	if f.Address == "" {
		errs[FieldAddress] = "Delivery address is required"
	}
	if f.Email != "" {
		if _, err := mail.ParseAddress(f.Email); err != nil {
			errs[FieldEmail] = "Enter a valid email address"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Customer converts the form into the order's customer record.
func (f DeliveryForm) Customer() entity.Customer {
	f = f.Normalize()
	return entity.Customer{
		FullName: f.FullName,
		Phone:    f.Phone,
		Email:    f.Email,
		Address:  f.Address,
		City:     f.City,
		Notes:    f.Notes,
	}
}
