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

package responses

import (
	"context"
	"github.com/aacfactory/outcomes/configs"
	"github.com/aacfactory/outcomes/failures"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"net/http"
)

const (
	PreparedEventName = "outcome.prepared"
)

var (
	AttrStatus    = attribute.Key("http.response.status_code")
	AttrBodySize  = attribute.Key("http.response.body.size")
	AttrSucceeded = attribute.Key("outcome.succeeded")
	AttrIncident  = attribute.Key("outcome.incident")
	AttrExtra     = attribute.Key("outcome.extra")
)

func trace(ctx context.Context, snapshot *configs.Snapshot, failure failures.Failure, p *Prepared) {
	if ctx == nil {
		return
	}
	span := oteltrace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	attrs := []attribute.KeyValue{
		AttrStatus.Int(p.Status),
		AttrBodySize.Int(len(p.Body)),
		AttrSucceeded.Bool(failure == nil),
	}
	if failure != nil {
		if snapshot.ExtraEnabled() {
			attrs = append(attrs, AttrExtra.String(string(headerValue(failures.ExtraMessage(failure)))))
		}
		if p.Incident != "" {
			attrs = append(attrs, AttrIncident.String(p.Incident))
		}
	}
	span.AddEvent(PreparedEventName, oteltrace.WithAttributes(attrs...))
	if p.Status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, failures.ResponseMessage(failure))
	}
}
