/*
Copyright © 2019 Itay Shakury @itaysk

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package neat de-clutters portal payloads for the details views.
package neat

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"
)

// Details renders a namespace (or any record) payload as YAML for the
// details view. Payload key order is kept.
func Details(raw string) (string, error) {
	cleaned, err := Clean(raw)
	if err != nil {
		return "", err
	}
	return ToYAML(cleaned)
}

// Clean drops bookkeeping keys (leading "_") and empty objects and arrays
// from a JSON document.
func Clean(in string) (string, error) {
	if strings.TrimSpace(in) == "" {
		return "", fmt.Errorf("error in neat, input json is empty")
	}
	if !gjson.Valid(in) {
		return in, fmt.Errorf("error in neat, input is not a valid json: %s", preview(in))
	}
	draft, err := neatPrivate(in)
	if err != nil {
		return draft, fmt.Errorf("error in neatPrivate : %v", err)
	}
	draft, err = neatEmpty(draft)
	if err != nil {
		return draft, fmt.Errorf("error in neatEmpty : %v", err)
	}
	return draft, nil
}

// ToYAML converts a JSON document to YAML without reordering keys.
func ToYAML(in string) (string, error) {
	if !gjson.Valid(in) {
		return "", fmt.Errorf("error in neat, input is not a valid json: %s", preview(in))
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toNode(gjson.Parse(in))); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.String(), nil
}

func toNode(v gjson.Result) *yaml.Node {
	switch {
	case v.IsObject():
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		v.ForEach(func(k, val gjson.Result) bool {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k.String()},
				toNode(val))
			return true
		})
		return n
	case v.IsArray():
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		v.ForEach(func(_, val gjson.Result) bool {
			n.Content = append(n.Content, toNode(val))
			return true
		})
		return n
	}
	switch v.Type {
	case gjson.String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Str}
	case gjson.Number:
		tag := "!!int"
		if strings.ContainsAny(v.Raw, ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.Raw}
	case gjson.True, gjson.False:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v.String()}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

// neatPrivate removes every object key starting with "_" at any depth.
func neatPrivate(in string) (string, error) {
	var paths []string
	findPaths(gjson.Parse(in), "", &paths, func(key string, _ gjson.Result) bool {
		return strings.HasPrefix(key, "_")
	})
	var err error
	// Deepest and last siblings first so earlier paths stay valid.
	for i := len(paths) - 1; i >= 0; i-- {
		if in, err = sjson.Delete(in, paths[i]); err != nil {
			return in, err
		}
	}
	return in, nil
}

// neatEmpty removes all zero length elements in the json
func neatEmpty(in string) (string, error) {
	var err error
	var empties []string
	findPaths(gjson.Parse(in), "", &empties, func(_ string, v gjson.Result) bool {
		return isResultEmpty(v)
	})
	for i := len(empties) - 1; i >= 0; i-- {
		// deleting a path may leave its parents empty, so re-check upwards
		parts := splitPath(empties[i])
		for j := len(parts); j > 0; j-- {
			curPath := strings.Join(parts[:j], ".")
			if isResultEmpty(gjson.Get(in, curPath)) {
				if in, err = sjson.Delete(in, curPath); err != nil {
					return in, err
				}
			}
		}
	}
	return in, nil
}

// findPaths collects the paths of elements matching hit, in document order.
// A matching element is not descended into.
func findPaths(cur gjson.Result, path string, res *[]string, hit func(key string, v gjson.Result) bool) {
	if !(cur.IsArray() || cur.IsObject()) {
		return
	}
	index := -1
	cur.ForEach(func(k, v gjson.Result) bool {
		var seg, key string
		if cur.IsArray() {
			index++
			seg = fmt.Sprint(index)
		} else {
			key = k.String()
			seg = escapeKey(key)
		}
		newPath := seg
		if path != "" {
			newPath = path + "." + seg
		}
		if hit(key, v) {
			*res = append(*res, newPath)
			return true
		}
		findPaths(v, newPath, res, hit)
		return true
	})
}

func isResultEmpty(j gjson.Result) bool {
	if !j.Exists() {
		return false
	}
	// empty string != lack of string. keep empty strings as it's meaningful data
	switch {
	case j.IsArray():
		return len(j.Array()) == 0
	case j.IsObject():
		return len(j.Map()) == 0
	}
	return false
}

// escapeKey quotes gjson/sjson path syntax inside an object key.
func escapeKey(k string) string {
	r := strings.NewReplacer(`\`, `\\`, ".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`)
	return r.Replace(k)
}

// splitPath splits on dots that are not escaped.
func splitPath(p string) []string {
	var parts []string
	var cur strings.Builder
	for i := 0; i < len(p); i++ {
		switch {
		case p[i] == '\\' && i+1 < len(p):
			cur.WriteByte(p[i])
			cur.WriteByte(p[i+1])
			i++
		case p[i] == '.':
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(p[i])
		}
	}
	return append(parts, cur.String())
}

func preview(in string) string {
	if len(in) > 20 {
		return in[:20]
	}
	return in
}
