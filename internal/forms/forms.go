// Package forms checks user input before any request leaves the client.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/merchke/storefront/types"
)

const (
	PaymentMpesa = "mpesa"
	PaymentCard  = "card"
	PaymentCOD   = "cod"
)

// FieldError describes one invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every invalid field of a form.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// UserMessage is the text shown above the form.
func (e *ValidationError) UserMessage() string {
	if len(e.Fields) == 1 {
		return e.Fields[0].Message
	}
	return "Please fill in all required fields"
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

func check(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate form: %w", err)
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.add(fieldPath(fe), describe(fe))
	}
	return out.orNil()
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	sort.SliceStable(e.Fields, func(i, j int) bool { return e.Fields[i].Field < e.Fields[j].Field })
	return e
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	label := capitalize(strings.ReplaceAll(fe.Field(), "_", " "))
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return label + " is invalid"
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Register validates the sign-up form.
func Register(req types.RegisterRequest) error {
	return check(trimRegister(req))
}

func trimRegister(req types.RegisterRequest) types.RegisterRequest {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Phone = strings.TrimSpace(req.Phone)
	return req
}

// Login validates the sign-in form.
func Login(req types.LoginRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	return check(req)
}

// Product validates the admin product form.
func Product(in types.ProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	return check(in)
}

// Category validates the admin category form.
func Category(in types.CategoryInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	return check(in)
}

// Checkout validates an order request. Guests must give an email
// containing "@" and M-Pesa payments need a phone number. Either a saved
// address id or a complete new address is required.
func Checkout(req types.CreateOrderRequest, guest bool) error {
	ve := &ValidationError{}
	if err := check(req); err != nil {
		if !errors.As(err, &ve) {
			return err
		}
	}

	if guest && !strings.Contains(strings.TrimSpace(req.GuestEmail), "@") {
		ve.add("guest_email", "Please provide a valid email address")
	}
	if req.PaymentMethod == PaymentMpesa && strings.TrimSpace(req.MpesaPhone) == "" {
		ve.add("mpesa_phone", "Please enter your M-Pesa phone number")
	}

	if req.ShippingAddressID == nil && req.ShippingAddress == nil {
		ve.add("shipping_address", "Please select a shipping address")
	}
	return ve.orNil()
}
