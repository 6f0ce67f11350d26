// Package validators holds the shared request validator and the helpers the
// per-route validator handlers are built from.
package validators

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"lms/middleware"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator
)

const notBlankTag = "notblank"

func init() {
	Validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// report JSON names instead of Go field names
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = Validate.RegisterValidation(notBlankTag, notBlank)
	_ = Validate.RegisterTranslation(notBlankTag, Translator,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, fe validator.FieldError) string {
			return fe.Field() + " cannot be blank"
		},
	)
}

// notBlank rejects whitespace-only strings. Nil pointers pass so optional
// fields can carry the tag.
func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return true
		}
		field = field.Elem()
	}
	if field.Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(field.String()) != ""
}

// FieldErrors maps a validation failure to field -> message. Errors that are
// not validation errors give nil.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := fe.Namespace()
		if i := strings.Index(key, "."); i >= 0 {
			key = key[i+1:]
		}
		fields[key] = fe.Translate(Translator)
	}
	return fields
}

func validationFailed(c *fiber.Ctx, err error, msg string) error {
	if fields := FieldErrors(err); fields != nil {
		return middleware.ValidationErrorResponse(c, fields)
	}
	return middleware.JsonResponse(c, fiber.StatusBadRequest, false, msg, nil)
}

// Body parses the JSON body into a T, validates it and stores the *T in
// c.Locals under local.
func Body[T any](local string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if err := Validate.Struct(reqData); err != nil {
			return validationFailed(c, err, "Invalid request body!")
		}
		c.Locals(local, reqData)
		return c.Next()
	}
}

// Query parses the query string into a T, validates it and stores the *T
// under local.
func Query[T any](local string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		if err := Validate.Struct(reqData); err != nil {
			return validationFailed(c, err, "Invalid query parameters!")
		}
		c.Locals(local, reqData)
		return c.Next()
	}
}

// PageQuery is the plain page/limit query of list endpoints.
type PageQuery struct {
	Page  int `query:"page" validate:"gte=0"`
	Limit int `query:"limit" validate:"gte=0"`
}

// ParseID reads the positive integer route parameter name.
func ParseID(c *fiber.Ctx, name, label string) (uint, error) {
	raw := strings.TrimSpace(c.Params(name))
	if raw == "" {
		return 0, errors.Errorf("%s ID is required!", label)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.Errorf("Invalid %s ID!", label)
	}
	return uint(id), nil
}

// ParamID stores the route parameter name as a uint under local.
func ParamID(name, local, label string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := ParseID(c, name, label)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
		}
		c.Locals(local, id)
		return c.Next()
	}
}
