package registry

import (
	"fmt"
	"reflect"

	"github.com/c360/envelope/errors"
	"github.com/c360/envelope/message"
)

// zeroValueFactory synthesizes a factory for types registered without one:
// pointer types get a freshly allocated element, value types their zero value.
func zeroValueFactory(goType reflect.Type) (Factory, error) {
	switch {
	case goType.Kind() == reflect.Pointer && goType.Elem().Kind() != reflect.Interface:
		elem := goType.Elem()
		return func() message.Message {
			return reflect.New(elem).Interface().(message.Message)
		}, nil
	case goType.Kind() == reflect.Struct:
		return func() message.Message {
			return reflect.Zero(goType).Interface().(message.Message)
		}, nil
	default:
		return nil, errors.WrapRegistration(
			fmt.Errorf("%w for %v", errors.ErrNoZeroValue, goType),
			"Registry", "Register", "factory discovery")
	}
}

// checkFactory calls factory once and checks that it yields a usable value of goType.
func checkFactory(factory Factory, goType reflect.Type) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.WrapRegistration(
				fmt.Errorf("%w for %v: factory panicked: %v", errors.ErrNoZeroValue, goType, rec),
				"Registry", "Register", "factory check")
		}
	}()

	instance := factory()
	if instance == nil {
		return errors.WrapRegistration(
			fmt.Errorf("%w for %v: factory returned nil", errors.ErrNoZeroValue, goType),
			"Registry", "Register", "factory check")
	}

	if got := reflect.TypeOf(instance); got != goType {
		return errors.WrapRegistration(
			fmt.Errorf("%w for %v: factory returned %v", errors.ErrNoZeroValue, goType, got),
			"Registry", "Register", "factory check")
	}

	v := reflect.ValueOf(instance)
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return errors.WrapRegistration(
			fmt.Errorf("%w for %v: factory returned a nil pointer", errors.ErrNoZeroValue, goType),
			"Registry", "Register", "factory check")
	}
	return nil
}
