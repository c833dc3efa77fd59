package controllers

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/signworks/orderflow-api/models"
	"github.com/signworks/orderflow-api/workflow"
)

// RegisterValidators adds the domain binding tags to gin's validator engine
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	rules := map[string]validator.Func{
		"order_status": func(fl validator.FieldLevel) bool {
			_, err := workflow.ParseStatus(fl.Field().String())
			return err == nil
		},
		"account_type": func(fl validator.FieldLevel) bool {
			_, err := workflow.ParseAccountType(fl.Field().String())
			return err == nil
		},
		"lead_status": func(fl validator.FieldLevel) bool {
			return models.LeadStatus(fl.Field().String()).IsValid()
		},
		"file_kind": func(fl validator.FieldLevel) bool {
			return models.FileKind(fl.Field().String()).IsValid()
		},
	}

	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}
	return nil
}
