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

package sources

import (
	"bufio"
	"bytes"
	"fmt"
	"github.com/aacfactory/errors"
	"io"
	"strconv"
	"strings"
)

// Annotation is one `@name params` line of a doc comment.
// Line is the zero based line of the annotation in the parsed text.
type Annotation struct {
	Name   string
	Params []string
	Line   int
}

// Param joins params with a space, block params are returned as written.
func (annotation Annotation) Param() (param string) {
	param = strings.Join(annotation.Params, " ")
	return
}

type Annotations []Annotation

func (annotations Annotations) Get(name string) (annotation Annotation, has bool) {
	for _, target := range annotations {
		if target.Name == name {
			annotation = target
			has = true
			return
		}
	}
	return
}

func (annotations Annotations) Count(name string) (n int) {
	for _, target := range annotations {
		if target.Name == name {
			n++
		}
	}
	return
}

// Duplicated returns the second occurrence of the first annotation declared twice.
func (annotations Annotations) Duplicated() (annotation Annotation, has bool) {
	names := make(map[string]struct{}, len(annotations))
	for _, target := range annotations {
		if _, exist := names[target.Name]; exist {
			annotation = target
			has = true
			return
		}
		names[target.Name] = struct{}{}
	}
	return
}

func (annotations Annotations) Len() int {
	return len(annotations)
}

// ParseAnnotations reads annotations out of comment text.
// Duplicates are kept so that callers can report them with a position.
// Block params are wrapped by `>>>` and `<<<`, use `'>>>'` and `'<<<'` to write them literally.
func ParseAnnotations(s string) (annotations Annotations, err error) {
	annotations = make(Annotations, 0, 1)
	if s == "" || !strings.Contains(s, "@") {
		return
	}
	reader := bufio.NewReader(bytes.NewReader([]byte(s)))
	lineNo := -1
	for {
		line, _, readErr := reader.ReadLine()
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			err = errors.Warning("sources: parse annotations failed").WithCause(readErr).WithMeta("source", s)
			return
		}
		lineNo++
		line = bytes.TrimSpace(line)
		if len(line) < 2 || line[0] != '@' {
			continue
		}
		content := line[1:]
		name := ""
		paramsIdx := bytes.IndexAny(content, " \t")
		if paramsIdx < 0 {
			name = string(content)
			annotations = append(annotations, Annotation{
				Name:   name,
				Params: nil,
				Line:   lineNo,
			})
			continue
		}
		name = string(content[0:paramsIdx])
		content = bytes.TrimSpace(content[paramsIdx:])
		annotation := Annotation{
			Name:   name,
			Params: make([]string, 0, 1),
			Line:   lineNo,
		}
		if !bytes.HasPrefix(content, []byte(">>>")) {
			for _, param := range strings.Fields(string(content)) {
				annotation.Params = append(annotation.Params, param)
			}
			annotations = append(annotations, annotation)
			continue
		}
		// block
		block := bytes.NewBuffer(make([]byte, 0, 64))
		content = bytes.TrimSpace(content[3:])
		if endIdx := bytes.Index(content, []byte("<<<")); endIdx > -1 {
			block.Write(bytes.TrimSpace(content[0:endIdx]))
			annotation.Params = append(annotation.Params, unescapeBlock(block.String()))
			annotations = append(annotations, annotation)
			continue
		}
		block.Write(content)
		closed := false
		for !closed {
			line, _, readErr = reader.ReadLine()
			if readErr != nil {
				err = errors.Warning("sources: parse annotations failed").
					WithCause(fmt.Errorf("@%s is incompleted", name)).
					WithMeta("source", s).WithMeta("line", strconv.Itoa(annotation.Line))
				return
			}
			lineNo++
			content = bytes.TrimSpace(line)
			if len(content) > 0 && content[0] == '@' {
				err = errors.Warning("sources: parse annotations failed").
					WithCause(fmt.Errorf("@%s is incompleted", name)).
					WithMeta("source", s).WithMeta("line", strconv.Itoa(annotation.Line))
				return
			}
			if endIdx := bytes.Index(content, []byte("<<<")); endIdx > -1 {
				content = bytes.TrimSpace(content[0:endIdx])
				closed = true
			}
			if block.Len() > 0 || len(content) > 0 {
				block.WriteByte('\n')
			}
			block.Write(content)
		}
		annotation.Params = append(annotation.Params, unescapeBlock(strings.TrimSpace(block.String())))
		annotations = append(annotations, annotation)
	}
	return
}

func unescapeBlock(s string) string {
	s = strings.ReplaceAll(s, "'>>>'", ">>>")
	s = strings.ReplaceAll(s, "'<<<'", "<<<")
	return s
}
