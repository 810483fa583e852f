package web

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/scienceol/labinv/pkg/repo/model"
)

var validatorOnce sync.Once

// RegisterValidators adds the binding rules shared by the request types:
// item_type accepts the inventory category names.
func RegisterValidators() {
	validatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("item_type", func(fl validator.FieldLevel) bool {
			_, ok := model.ParseItemType(fl.Field().String())
			return ok
		})
	})
}
