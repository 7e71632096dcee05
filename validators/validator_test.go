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

package validators_test

import (
	"fmt"
	"github.com/aacfactory/outcomes/validators"
	"github.com/go-playground/validator/v10"
	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"testing"
)

type Address struct {
	City string `json:"city" validate:"not_blank" message:"city is required"`
}

type CreateUser struct {
	Name    string   `json:"name" validate:"required" message:"name is required"`
	Age     int      `json:"age" validate:"gte=0,lte=150"`
	Role    string   `json:"role" validate:"default=member"`
	Ref     string   `json:"ref,omitempty" validate:"omitempty,uid" message:"invalid ref"`
	Address *Address `json:"address" validate:"required"`
}

func TestValidate(t *testing.T) {
	v := &CreateUser{Name: "foo", Age: 20, Ref: xid.New().String(), Address: &Address{City: "x"}}
	require.Nil(t, validators.Validate(v))
	assert.Equal(t, "member", v.Role)

	err := validators.Validate(&CreateUser{Age: 200, Ref: "nope", Address: &Address{City: " "}})
	require.NotNil(t, err)
	assert.Equal(t, http.StatusBadRequest, err.Code())
	assert.Equal(t, validators.DefaultTitle, err.Message())
	detail := fmt.Sprintf("%+v", err)
	assert.Contains(t, detail, "name is required")
	assert.Contains(t, detail, "invalid ref")
	assert.Contains(t, detail, "city is required")
}

func TestValidateNonStruct(t *testing.T) {
	assert.Nil(t, validators.Validate(nil))
	assert.Nil(t, validators.Validate(1))
	assert.Nil(t, validators.Validate([]string{"a"}))
	var user *CreateUser
	assert.Nil(t, validators.Validate(user))
}

func TestAddValidateRegister(t *testing.T) {
	validators.AddValidateRegister(func(validate *validator.Validate) *validator.Validate {
		_ = validate.RegisterValidation("even", func(fl validator.FieldLevel) bool {
			return fl.Field().Int()%2 == 0
		})
		return validate
	})
	type Page struct {
		Size int `json:"size" validate:"even" message:"size must be even"`
	}
	assert.Nil(t, validators.Validate(Page{Size: 2}))
	err := validators.ValidateWithErrorTitle(Page{Size: 3}, "bad page")
	require.NotNil(t, err)
	assert.Equal(t, "bad page", err.Message())
}
