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
	"github.com/aacfactory/configures"
	"github.com/aacfactory/errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	activeSystemEnvKey = "OUTCOMES-ACTIVE"
)

// DefaultRetrieverOption reads ./configs/outcomes.yaml merged with ./configs/outcomes-{active}.yaml.
func DefaultRetrieverOption() (option configures.RetrieverOption) {
	path, pathErr := filepath.Abs("./configs")
	if pathErr != nil {
		panic(fmt.Errorf("%+v", errors.Warning("configs: create default config retriever failed, cant not get absolute representation of './configs'").WithCause(pathErr)))
	}
	return RetrieverOption(path, "")
}

func RetrieverOption(path string, active string) (option configures.RetrieverOption) {
	active = strings.TrimSpace(active)
	if active == "" {
		active, _ = os.LookupEnv(activeSystemEnvKey)
		active = strings.TrimSpace(active)
	}
	store := configures.NewFileStore(path, "outcomes", '-')
	option = configures.RetrieverOption{
		Active: active,
		Format: "YAML",
		Store:  store,
	}
	return
}

func Retrieve(option configures.RetrieverOption) (config Config, err error) {
	retriever, retrieverErr := configures.NewRetriever(option)
	if retrieverErr != nil {
		err = errors.Warning("configs: retrieve failed for invalid retriever").WithCause(retrieverErr)
		return
	}
	configure, configureErr := retriever.Get()
	if configureErr != nil {
		err = errors.Warning("configs: retrieve failed, get config via retriever failed").WithCause(configureErr)
		return
	}
	if asErr := configure.As(&config); asErr != nil {
		err = errors.Warning("configs: retrieve failed, decode config failed").WithCause(asErr)
		return
	}
	return
}
