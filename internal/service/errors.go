package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"onyx/internal/auth"
	"onyx/internal/models"
)

var (
	// ErrUnauthorized is returned when an operation needs an authenticated
	// user and the context carries none.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned by single-record reads. Records owned by
	// other users are reported the same way.
	ErrNotFound = errors.New("not found")
	// ErrCatalogUnavailable hides any upstream catalog failure.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// ValidationError is returned before any persistence when input is
// malformed.
type ValidationError struct {
	Fields []FieldError `json:"errors"`
}

// Error joins the field messages.
func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Msg)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Msg: msg}}}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct's validate tags and converts failures into
// a ValidationError.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field: fe.Field(),
			Msg:   fieldMessage(fe.Field(), fe.Tag(), fe.Param()),
		})
	}
	return out
}

func fieldMessage(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of the following values: %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}

// requireUser returns the caller's user id or ErrUnauthorized.
func requireUser(ctx context.Context) (string, error) {
	userID, ok := auth.UserID(ctx)
	if !ok {
		return "", ErrUnauthorized
	}
	return userID, nil
}

// Notifier receives a change event after every successful mutation.
type Notifier interface {
	Publish(ctx context.Context, userID string, ev models.ChangeEvent)
}

type nopNotifier struct{}

func (nopNotifier) Publish(context.Context, string, models.ChangeEvent) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

type clock func() time.Time

func (c clock) millis() int64 {
	return c().UnixMilli()
}
