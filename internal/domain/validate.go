package domain

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the catalog rules registered
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			return Category(fl.Field().String()).Valid()
		})
		_ = validate.RegisterValidation("region", func(fl validator.FieldLevel) bool {
			return IsRegion(fl.Field().String())
		})
		// bilingual fields need at least one of the two languages
		validate.RegisterStructValidation(func(sl validator.StructLevel) {
			p := sl.Current().Interface().(Product)
			if p.Name.En == "" && p.Name.Sw == "" {
				sl.ReportError(p.Name, "Name", "Name", "bilingual", "")
			}
		}, Product{})
		validate.RegisterStructValidation(func(sl validator.StructLevel) {
			b := sl.Current().Interface().(BlogPost)
			if b.Title.En == "" && b.Title.Sw == "" {
				sl.ReportError(b.Title, "Title", "Title", "bilingual", "")
			}
		}, BlogPost{})
	})
	return validate
}

// Validate checks struct tags of an entity or payload
func Validate(v interface{}) error {
	return Validator().Struct(v)
}
