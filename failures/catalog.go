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

package failures

import (
	stderrors "errors"
	"fmt"
	"github.com/aacfactory/errors"
	"reflect"
	"sync"
	"sync/atomic"
)

// NewCatalog starts the runtime description of an enumerated failure type.
// Variants are described with a call chain at startup and the catalog is validated by Build.
//
//	var catalog = failures.NewCatalog[AppError]("AppError")
//
//	func init() {
//		catalog.Variant(NotFound).Message("resource not found").Status(http.StatusNotFound)
//		catalog.Variant(Internal)
//		catalog.MustBuild()
//	}
func NewCatalog[K comparable](name string) *Catalog[K] {
	return &Catalog[K]{
		name:      name,
		extraType: reflect.TypeOf(""),
		variants:  make(map[K]*Variant[K]),
		order:     make([]K, 0, 1),
		problems:  make([]error, 0, 1),
	}
}

// catalogs holds the last built catalog of each key type, so a zero Of[K] can still
// answer the type level defaults.
var catalogs sync.Map

func registered[K comparable]() *Catalog[K] {
	v, has := catalogs.Load(reflect.TypeOf((*K)(nil)).Elem())
	if !has {
		return nil
	}
	return v.(*Catalog[K])
}

type Catalog[K comparable] struct {
	locker         sync.Mutex
	built          atomic.Bool
	name           string
	defaultMessage *string
	extraType      reflect.Type
	extraZero      any
	variants       map[K]*Variant[K]
	order          []K
	problems       []error
}

// ExtraType declares the extra message type by an example value, usually its zero value.
func (c *Catalog[K]) ExtraType(zero any) *Catalog[K] {
	c.mutable()
	c.locker.Lock()
	defer c.locker.Unlock()
	if zero == nil {
		c.problems = append(c.problems, errors.Warning("failures: extra type can not be nil").WithMeta("catalog", c.name))
		return c
	}
	c.extraType = reflect.TypeOf(zero)
	c.extraZero = reflect.Zero(c.extraType).Interface()
	return c
}

// DefaultMessage sets the type level response message used by envelopes that always carry
// the message field.
func (c *Catalog[K]) DefaultMessage(message string) *Catalog[K] {
	c.mutable()
	c.locker.Lock()
	c.defaultMessage = &message
	c.locker.Unlock()
	return c
}

func (c *Catalog[K]) Variant(k K) *Variant[K] {
	c.mutable()
	c.locker.Lock()
	defer c.locker.Unlock()
	if v, has := c.variants[k]; has {
		c.problems = append(c.problems, errors.Warning("failures: variant is duplicated").WithMeta("catalog", c.name).WithMeta("variant", fmt.Sprint(k)))
		return v
	}
	v := &Variant[K]{
		catalog: c,
		key:     k,
	}
	c.variants[k] = v
	c.order = append(c.order, k)
	return v
}

func (c *Catalog[K]) Build() (err error) {
	c.locker.Lock()
	defer c.locker.Unlock()
	if c.built.Load() {
		return
	}
	if len(c.problems) > 0 {
		err = errors.Warning("failures: build catalog failed").WithMeta("catalog", c.name).WithCause(stderrors.Join(c.problems...))
		return
	}
	if c.extraZero == nil {
		c.extraZero = reflect.Zero(c.extraType).Interface()
	}
	for _, k := range c.order {
		v := c.variants[k]
		if v.hasStatus && !validStatus(v.status) {
			err = errors.Warning("failures: build catalog failed").
				WithMeta("catalog", c.name).WithMeta("variant", fmt.Sprint(k)).
				WithCause(fmt.Errorf("status %d is out of 100..599", v.status))
			return
		}
		if v.hasExtra {
			if v.extra == nil || !reflect.TypeOf(v.extra).AssignableTo(c.extraType) {
				err = errors.Warning("failures: build catalog failed").
					WithMeta("catalog", c.name).WithMeta("variant", fmt.Sprint(k)).
					WithCause(fmt.Errorf("extra message %v is not %s", v.extra, c.extraType))
				return
			}
		}
	}
	c.built.Store(true)
	catalogs.Store(reflect.TypeOf((*K)(nil)).Elem(), c)
	return
}

func (c *Catalog[K]) MustBuild() *Catalog[K] {
	if err := c.Build(); err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	return c
}

func (c *Catalog[K]) LogMessage(k K) string {
	return fmt.Sprint(k)
}

func (c *Catalog[K]) HTTPStatus(k K) int {
	v := c.lookup(k)
	if v == nil {
		return DefaultStatus
	}
	if v.statusFn != nil {
		status := v.statusFn(k)
		if !validStatus(status) {
			panic(fmt.Sprintf("%+v", errors.Warning("failures: status is out of 100..599").
				WithMeta("catalog", c.name).WithMeta("variant", fmt.Sprint(k)).WithMeta("status", fmt.Sprint(status))))
		}
		return status
	}
	if v.hasStatus {
		return v.status
	}
	return DefaultStatus
}

func (c *Catalog[K]) ResponseMessage(k K) string {
	v := c.lookup(k)
	if v == nil || v.message == nil {
		return c.LogMessage(k)
	}
	return *v.message
}

func (c *Catalog[K]) ExtraMessage(k K) any {
	v := c.lookup(k)
	if v == nil {
		return c.extraZero
	}
	if v.extraFn != nil {
		extra := v.extraFn(k)
		if extra == nil || !reflect.TypeOf(extra).AssignableTo(c.extraType) {
			panic(fmt.Sprintf("%+v", errors.Warning("failures: extra message has wrong type").
				WithMeta("catalog", c.name).WithMeta("variant", fmt.Sprint(k)).WithMeta("type", c.extraType.String())))
		}
		return extra
	}
	if v.hasExtra {
		return v.extra
	}
	return c.extraZero
}

func (c *Catalog[K]) DefaultResponseMessage() (message string, has bool) {
	c.sealed()
	if c.defaultMessage == nil {
		return
	}
	message, has = *c.defaultMessage, true
	return
}

func (c *Catalog[K]) DefaultExtraMessage() (extra any, has bool) {
	c.sealed()
	extra, has = c.extraZero, true
	return
}

// Failure returns a value carrying k that satisfies every facet of the contract.
func (c *Catalog[K]) Failure(k K) Of[K] {
	c.sealed()
	return Of[K]{
		catalog: c,
		Key:     k,
	}
}

func (c *Catalog[K]) lookup(k K) *Variant[K] {
	c.sealed()
	return c.variants[k]
}

func (c *Catalog[K]) sealed() {
	if !c.built.Load() {
		panic(fmt.Sprintf("%+v", errors.Warning("failures: catalog is used before build").WithMeta("catalog", c.name)))
	}
}

func (c *Catalog[K]) mutable() {
	if c.built.Load() {
		panic(fmt.Sprintf("%+v", errors.Warning("failures: catalog is already built").WithMeta("catalog", c.name)))
	}
}

type Variant[K comparable] struct {
	catalog   *Catalog[K]
	key       K
	message   *string
	status    int
	hasStatus bool
	statusFn  func(k K) int
	extra     any
	hasExtra  bool
	extraFn   func(k K) any
}

func (v *Variant[K]) Message(message string) *Variant[K] {
	v.catalog.mutable()
	v.message = &message
	return v
}

func (v *Variant[K]) Status(status int) *Variant[K] {
	v.catalog.mutable()
	v.status = status
	v.hasStatus = true
	v.statusFn = nil
	return v
}

// StatusFunc computes the status when the failure is rendered.
func (v *Variant[K]) StatusFunc(fn func(k K) int) *Variant[K] {
	v.catalog.mutable()
	v.statusFn = fn
	v.hasStatus = false
	return v
}

func (v *Variant[K]) Extra(extra any) *Variant[K] {
	v.catalog.mutable()
	v.extra = extra
	v.hasExtra = true
	v.extraFn = nil
	return v
}

func (v *Variant[K]) ExtraFunc(fn func(k K) any) *Variant[K] {
	v.catalog.mutable()
	v.extraFn = fn
	v.hasExtra = false
	return v
}

// Variant continues the call chain with another variant of the same catalog.
func (v *Variant[K]) Variant(k K) *Variant[K] {
	return v.catalog.Variant(k)
}

// Of is a catalog backed failure. A value built outside Catalog.Failure resolves through
// the last built catalog of K.
type Of[K comparable] struct {
	catalog *Catalog[K]
	Key     K
}

func (f Of[K]) resolve() *Catalog[K] {
	if f.catalog != nil {
		return f.catalog
	}
	return registered[K]()
}

func (f Of[K]) LogMessage() string {
	return fmt.Sprint(f.Key)
}

func (f Of[K]) HTTPStatus() int {
	c := f.resolve()
	if c == nil {
		return DefaultStatus
	}
	return c.HTTPStatus(f.Key)
}

func (f Of[K]) ResponseMessage() string {
	c := f.resolve()
	if c == nil {
		return f.LogMessage()
	}
	return c.ResponseMessage(f.Key)
}

func (f Of[K]) ExtraMessage() any {
	c := f.resolve()
	if c == nil {
		return ""
	}
	return c.ExtraMessage(f.Key)
}

// DefaultResponseMessage is answered by the catalog of K, it is called on the zero value.
func (f Of[K]) DefaultResponseMessage() (message string, has bool) {
	c := f.resolve()
	if c == nil {
		return
	}
	return c.DefaultResponseMessage()
}

func (f Of[K]) DefaultExtraMessage() (extra any, has bool) {
	c := f.resolve()
	if c == nil {
		return
	}
	return c.DefaultExtraMessage()
}

func (f Of[K]) Error() string {
	return f.LogMessage()
}

func validStatus(status int) bool {
	return status >= 100 && status <= 599
}
