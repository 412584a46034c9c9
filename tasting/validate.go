// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tasting

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/danielhkuo/blind-dram/auth"
	"github.com/danielhkuo/blind-dram/models"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Service) validateStruct(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return invalid("", "%v", err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return invalid(fe.Field(), "is required")
	case "max":
		return invalid(fe.Field(), "must be at most %s characters", fe.Param())
	case "min":
		return invalid(fe.Field(), "must be at least %s", fe.Param())
	case "unique":
		return invalid(fe.Field(), "orders must be unique")
	default:
		return invalid(fe.Field(), "failed %q check", fe.Tag())
	}
}

// checkPIN rejects PINs bcrypt cannot hash. The struct tag's max counts
// characters; this counts bytes.
func checkPIN(pin string) error {
	if pin == "" {
		return invalid("organizerPin", "must not be empty")
	}
	if len(pin) > auth.MaxPINBytes {
		return invalid("organizerPin", "must be at most %d bytes", auth.MaxPINBytes)
	}
	return nil
}

// normalizeDrams trims identities, rejects duplicate or non-positive orders
// and returns the drams sorted by order.
func normalizeDrams(in []models.DramInput) ([]models.Dram, error) {
	drams := make([]models.Dram, 0, len(in))
	seen := make(map[int]struct{}, len(in))
	for _, d := range in {
		if d.Order < 1 {
			return nil, invalid("drams", "order must be a positive integer, got %d", d.Order)
		}
		if _, dup := seen[d.Order]; dup {
			return nil, invalid("drams", "order %d appears more than once", d.Order)
		}
		seen[d.Order] = struct{}{}
		drams = append(drams, models.Dram{
			Order:     d.Order,
			Name:      strings.TrimSpace(d.Name),
			BroughtBy: strings.TrimSpace(d.BroughtBy),
		})
	}
	sort.Slice(drams, func(i, j int) bool { return drams[i].Order < drams[j].Order })
	return drams, nil
}

func titleOrDefault(title string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return models.DefaultTitle
}
