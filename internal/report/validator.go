package report

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"gasreport/pkg/domain"
)

// infoFields is the slice of the tree checked on the info step.
type infoFields struct {
	Date       string   `label:"date" validate:"required"`
	StartTime  string   `label:"start_time" validate:"required"`
	EndTime    string   `label:"end_time" validate:"required"`
	Technician string   `label:"technician" validate:"required"`
	Types      []string `label:"intervention_types" validate:"min=1,dive,required"`
}

// clientFields is checked on the client/site step.
type clientFields struct {
	ClientID string `label:"client" validate:"required"`
	SiteID   string `label:"site" validate:"required"`
}

// equipmentFields is checked for the single unit or portable detector under
// the wizard cursor.
type equipmentFields struct {
	Make         string `label:"make" validate:"required"`
	Model        string `label:"model" validate:"required"`
	SerialNumber string `label:"serial_number" validate:"required"`
}

// Validator maps a wizard step and the current tree to a verdict. Each step
// only looks at its own required fields.
type Validator struct {
	validate *validator.Validate
}

// NewValidator constructs a validator with field labels taken from the
// `label` struct tag.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("label"); name != "" {
			return name
		}
		return f.Name
	})
	return &Validator{validate: v}
}

// Check evaluates step against tree. cursor addresses the equipment item on
// display and is ignored for the other steps.
func (v *Validator) Check(step domain.Step, tree *Tree, cursor int) domain.Result {
	root := tree.root
	switch step {
	case domain.StepInfo:
		types := make([]string, 0, len(root.Types))
		for _, tag := range root.Types {
			types = append(types, strings.TrimSpace(tag))
		}
		return v.run(step, infoFields{
			Date:       strings.TrimSpace(root.Date),
			StartTime:  strings.TrimSpace(root.StartTime),
			EndTime:    strings.TrimSpace(root.EndTime),
			Technician: strings.TrimSpace(root.Technician),
			Types:      types,
		})
	case domain.StepClient:
		res := v.run(step, clientFields{
			ClientID: strings.TrimSpace(root.ClientID),
			SiteID:   strings.TrimSpace(root.SiteID),
		})
		res.Merge(contactWarnings(root.Contact))
		return res
	case domain.StepUnit:
		u, err := tree.Unit(cursor)
		if err != nil {
			return structural(step, "equipment", err)
		}
		return v.run(step, equipmentFields{
			Make:         strings.TrimSpace(u.Make),
			Model:        strings.TrimSpace(u.Model),
			SerialNumber: strings.TrimSpace(u.SerialNumber),
		})
	case domain.StepPortable:
		p, err := tree.PortableDetector(cursor)
		if err != nil {
			return structural(step, "equipment", err)
		}
		return v.run(step, equipmentFields{
			Make:         strings.TrimSpace(p.Make),
			Model:        strings.TrimSpace(p.Model),
			SerialNumber: strings.TrimSpace(p.SerialNumber),
		})
	case domain.StepConclusion:
		return domain.Result{}
	default:
		return structural(step, "step", fmt.Errorf("unknown step %q", step))
	}
}

// Require is Check turned into an error: a ValidationFailure listing the
// missing fields, or nil.
func (v *Validator) Require(step domain.Step, tree *Tree, cursor int) error {
	res := v.Check(step, tree, cursor)
	if !res.HasBlocking() {
		return nil
	}
	return domain.ValidationFailure{Step: step, Missing: res.MissingFields()}
}

func (v *Validator) run(step domain.Step, fields any) domain.Result {
	err := v.validate.Struct(fields)
	if err == nil {
		return domain.Result{}
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return structural(step, "fields", err)
	}
	var res domain.Result
	seen := make(map[string]struct{}, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if i := strings.IndexByte(field, '['); i >= 0 {
			field = field[:i]
		}
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     string(step) + "." + fe.Tag(),
			Severity: domain.SeverityBlock,
			Field:    field,
			Message:  fmt.Sprintf("%s is required", field),
		})
	}
	return res
}

// structural blocks a step that cannot be checked at all. field is a fixed
// label; the cause goes into the message.
func structural(step domain.Step, field string, err error) domain.Result {
	return domain.Result{Violations: []domain.Violation{{
		Rule:     string(step) + ".structure",
		Severity: domain.SeverityBlock,
		Field:    field,
		Message:  err.Error(),
	}}}
}

// contactWarnings flags a site visit recorded without anyone to reach on
// site. It never blocks navigation.
func contactWarnings(c domain.Contact) domain.Result {
	if strings.TrimSpace(c.Name) != "" || strings.TrimSpace(c.Phone) != "" || strings.TrimSpace(c.Email) != "" {
		return domain.Result{}
	}
	return domain.Result{Violations: []domain.Violation{{
		Rule:     string(domain.StepClient) + ".contact",
		Severity: domain.SeverityWarn,
		Field:    "contact",
		Message:  "no site contact recorded",
	}}}
}
