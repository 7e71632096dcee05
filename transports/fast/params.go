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

package fast

import (
	"bytes"
	"github.com/aacfactory/outcomes/transports"
	"github.com/valyala/fasthttp"
)

// NewParams wraps query args as transports.Params, args are not copied.
func NewParams(args *fasthttp.Args) *Params {
	return &Params{
		args: args,
	}
}

type Params struct {
	args *fasthttp.Args
}

func (params *Params) Get(name []byte) []byte {
	return params.args.PeekBytes(name)
}

func (params *Params) Set(name []byte, value []byte) {
	params.args.SetBytesKV(name, value)
}

func (params *Params) Add(name []byte, value []byte) {
	params.args.AddBytesKV(name, value)
}

func (params *Params) Values(name []byte) [][]byte {
	return params.args.PeekMultiBytes(name)
}

func (params *Params) Remove(name []byte) {
	params.args.DelBytes(name)
}

// Len is the number of distinct names.
func (params *Params) Len() (n int) {
	names := make(map[string]struct{}, params.args.Len())
	params.args.VisitAll(func(key []byte, _ []byte) {
		names[string(key)] = struct{}{}
	})
	n = len(names)
	return
}

// Encode sorts a copy of the args, so the order of the wrapped args is kept.
func (params *Params) Encode() (p []byte) {
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	params.args.CopyTo(args)
	args.Sort(bytes.Compare)
	p = append(p, args.QueryString()...)
	return
}

// Decode fills the struct pointed by dst, see transports.DecodeParams.
func (params *Params) Decode(dst any) error {
	return transports.DecodeParams(params, dst)
}
