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

package configs

import (
	"fmt"
	"github.com/aacfactory/errors"
	"sync"
)

var (
	locker   sync.Mutex
	pending  *Snapshot
	loaded   bool
	once     sync.Once
	snapshot *Snapshot
)

// Set installs the process wide configuration. It succeeds once, and only before the first Load.
func Set(config Config) (err error) {
	resolved, resolveErr := Resolve(config)
	if resolveErr != nil {
		err = errors.Warning("configs: set failed").WithCause(resolveErr)
		return
	}
	locker.Lock()
	defer locker.Unlock()
	if loaded {
		err = errors.Warning("configs: set failed, configuration was already loaded")
		return
	}
	if pending != nil {
		err = errors.Warning("configs: set failed, configuration was already set")
		return
	}
	pending = resolved
	return
}

func MustSet(config Config) {
	if err := Set(config); err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
}

// Load returns the process wide snapshot, resolving the default configuration when none was set.
func Load() *Snapshot {
	once.Do(func() {
		locker.Lock()
		loaded = true
		resolved := pending
		locker.Unlock()
		if resolved == nil {
			var err error
			resolved, err = Resolve(Config{})
			if err != nil {
				panic(fmt.Sprintf("%+v", err))
			}
		}
		snapshot = resolved
	})
	return snapshot
}
