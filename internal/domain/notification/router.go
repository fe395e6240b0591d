// ABOUTME: Routes decoded Snapcast JSON-RPC notifications to subscriptions
// ABOUTME: Extracts metadata and stream status, skipping absent fields silently
package notification

import (
	"bytes"
	"encoding/json"
)

// Notification methods emitted by the Snapcast server for stream lifecycle.
const (
	MethodStreamUpdate     = "Stream.OnUpdate"
	MethodStreamProperties = "Stream.OnProperties"
)

type envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// Router is a selective listener: it recognizes two methods and ignores the
// rest. It holds a reference to the client's subscription set.
type Router struct {
	subs *Subscriptions
}

func NewRouter(subs *Subscriptions) *Router {
	return &Router{subs: subs}
}

// Route dispatches a single decoded document. Unknown methods, non-object
// documents and missing nested fields are not errors.
func (r *Router) Route(doc json.RawMessage) {
	var env envelope
	if err := json.Unmarshal(doc, &env); err != nil {
		return
	}

	switch env.Method {
	case MethodStreamUpdate:
		r.streamUpdate(decodeParams(env.Params))
	case MethodStreamProperties:
		r.streamProperties(decodeParams(env.Params))
	}
}

// streamUpdate handles params.stream.{properties.metadata,status}. Data is
// emitted before status when both are present.
func (r *Router) streamUpdate(params map[string]any) {
	stream, ok := lookup(params, "stream").(map[string]any)
	if !ok {
		return
	}
	if md, ok := lookup(stream, "properties", "metadata").(map[string]any); ok {
		r.subs.EmitData(Metadata(md))
	}
	if status, ok := lookup(stream, "status").(string); ok && status != "" {
		r.subs.EmitStatus(status)
	}
}

// streamProperties handles params.properties.metadata.
func (r *Router) streamProperties(params map[string]any) {
	if md, ok := lookup(params, "properties", "metadata").(map[string]any); ok {
		r.subs.EmitData(Metadata(md))
	}
}

func decodeParams(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var params map[string]any
	if err := dec.Decode(&params); err != nil {
		return nil
	}
	return params
}

// lookup walks nested objects and returns nil as soon as a key is missing
// or an intermediate value is not an object.
func lookup(m map[string]any, keys ...string) any {
	var cur any = m
	for _, k := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[k]
	}
	return cur
}
