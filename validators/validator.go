/*
 * Copyright 2023 Wang Min Xiang
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * 	http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

// Package validators checks decoded request payloads with go-playground validator tags.
//
// A failed validation is a 400 errors.CodeError whose meta maps the json key of each invalid
// field to the text of its `message` tag, falling back to the failed validation tag.
package validators

import (
	"fmt"
	"github.com/aacfactory/errors"
	"github.com/go-playground/validator/v10"
	"reflect"
	"strings"
	"sync"
)

const (
	DefaultTitle = "invalid"
)

type ValidateRegister func(validate *validator.Validate) *validator.Validate

var (
	locker    sync.RWMutex
	_validate *validator.Validate
)

func instance() *validator.Validate {
	locker.RLock()
	v := _validate
	locker.RUnlock()
	if v != nil {
		return v
	}
	locker.Lock()
	defer locker.Unlock()
	if _validate == nil {
		v = validator.New()
		v = validateRegisterNotBlank(v)
		v = validateRegisterDefault(v)
		v = validateRegisterIsUID(v)
		_validate = v
	}
	return _validate
}

func AddValidateRegister(register ValidateRegister) {
	if register == nil {
		return
	}
	v := instance()
	locker.Lock()
	_validate = register(v)
	locker.Unlock()
}

func Validate(value any) (err errors.CodeError) {
	err = ValidateWithErrorTitle(value, DefaultTitle)
	return
}

// ValidateWithErrorTitle validates structs and pointers to structs, other values are always valid.
func ValidateWithErrorTitle(value any, title string) (err errors.CodeError) {
	rt := reflect.TypeOf(value)
	if rt == nil {
		return
	}
	if rt.Kind() == reflect.Ptr {
		if reflect.ValueOf(value).IsNil() {
			return
		}
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return
	}
	validateErr := instance().Struct(value)
	if validateErr == nil {
		return
	}
	validationErrors, ok := validateErr.(validator.ValidationErrors)
	if !ok {
		err = errors.Warning("validators: validate value failed").WithCause(validateErr)
		return
	}
	err = errors.BadRequest(title)
	for _, validationError := range validationErrors {
		sf := validationError.Namespace()
		idx := strings.Index(sf, ".")
		if idx < 0 {
			continue
		}
		key, message := validateFieldMessage(rt, sf[idx+1:])
		if key == "" {
			key = validationError.Field()
		}
		if message == "" {
			message = validationError.Tag()
		}
		err = err.WithMeta(key, message)
	}
	return
}

func validateFieldMessage(_type reflect.Type, exp string) (key string, msg string) {
	for _type.Kind() == reflect.Ptr || _type.Kind() == reflect.Slice || _type.Kind() == reflect.Array || _type.Kind() == reflect.Map {
		_type = _type.Elem()
	}
	if _type.Kind() != reflect.Struct {
		return
	}
	fieldName := exp
	idx := strings.Index(exp, ".")
	if idx > 0 {
		fieldName = exp[0:idx]
	}
	// slice and map elements are reported as Field[i]
	if pos := strings.IndexByte(fieldName, '['); pos > 0 {
		fieldName = fieldName[0:pos]
	}
	field, has := _type.FieldByName(fieldName)
	if !has {
		return
	}
	xk := field.Tag.Get("json")
	if pos := strings.Index(xk, ","); pos >= 0 {
		xk = xk[0:pos]
	}
	if xk == "" || xk == "-" {
		xk = field.Name
	}
	if idx > 0 {
		key, msg = validateFieldMessage(field.Type, exp[idx+1:])
		if key == "" {
			return
		}
		key = xk + "." + key
		return
	}
	key = xk
	msg = field.Tag.Get("message")
	return
}

func validateRegisterNotBlank(validate *validator.Validate) *validator.Validate {
	err := validate.RegisterValidation("not_blank", func(fl validator.FieldLevel) (ok bool) {
		if fl.Field().Type().Kind() != reflect.String {
			return
		}
		ok = strings.TrimSpace(fl.Field().String()) != ""
		return
	})
	if err != nil {
		panic(fmt.Errorf("validators: validate register not_blank failed, %v", err))
	}
	return validate
}

// validateRegisterDefault fills blank string fields with the tag parameter, so it needs an addressable value.
func validateRegisterDefault(validate *validator.Validate) *validator.Validate {
	err := validate.RegisterValidation("default", func(fl validator.FieldLevel) (ok bool) {
		if fl.Field().Type().Kind() != reflect.String {
			return
		}
		v := strings.TrimSpace(fl.Field().String())
		if v == "" && fl.Field().CanSet() {
			fl.Field().SetString(strings.TrimSpace(fl.Param()))
		}
		ok = true
		return
	})
	if err != nil {
		panic(fmt.Errorf("validators: validate register default failed, %v", err))
	}
	return validate
}
