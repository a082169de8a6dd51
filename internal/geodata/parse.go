package geodata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb/geojson"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// Parse decodes a GeoJSON FeatureCollection or single Feature.
//
// Columns are the union of property keys in the order they first appear in
// the document; records lacking a column hold nil for it.
func Parse(name string, data []byte) (*FeatureCollection, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(trimmed) == 0 {
		return nil, loadErr(name, ReasonMalformed, errors.New("empty payload"))
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(trimmed, &head); err != nil {
		return nil, loadErr(name, ReasonMalformed, err)
	}

	var (
		features []*geojson.Feature
		order    [][]string
		err      error
	)
	switch head.Type {
	case "FeatureCollection":
		var fc *geojson.FeatureCollection
		fc, err = geojson.UnmarshalFeatureCollection(trimmed)
		if err != nil {
			return nil, loadErr(name, ReasonMalformed, err)
		}
		features = fc.Features
		order, err = collectionKeyOrder(trimmed)
	case "Feature":
		var f *geojson.Feature
		f, err = geojson.UnmarshalFeature(trimmed)
		if err != nil {
			return nil, loadErr(name, ReasonMalformed, err)
		}
		features = []*geojson.Feature{f}
		order, err = featureKeyOrder(trimmed)
	case "":
		return nil, loadErr(name, ReasonMalformed, errors.New("missing GeoJSON type"))
	default:
		return nil, loadErr(name, ReasonUnsupported, fmt.Errorf("GeoJSON type %q", head.Type))
	}
	if err != nil {
		return nil, loadErr(name, ReasonMalformed, err)
	}
	if len(features) == 0 {
		return nil, loadErr(name, ReasonEmpty, errors.New("no features"))
	}

	out := &FeatureCollection{
		name:   name,
		digest: digest(data),
		index:  make(map[string]int),
	}
	for _, keys := range order {
		for _, k := range keys {
			if _, seen := out.index[k]; !seen {
				out.index[k] = len(out.columns)
				out.columns = append(out.columns, k)
			}
		}
	}
	if len(out.columns) == 0 {
		return nil, loadErr(name, ReasonNoColumns, errors.New("features carry no properties"))
	}

	out.records = make([]Record, len(features))
	for i, f := range features {
		values := make([]any, len(out.columns))
		for j, col := range out.columns {
			values[j] = f.Properties[col]
		}
		out.records[i] = Record{ID: f.ID, Geometry: f.Geometry, Values: values}

		if f.Geometry == nil {
			continue
		}
		b := f.Geometry.Bound()
		if !out.hasBox {
			out.bound, out.hasBox = b, true
		} else {
			out.bound = out.bound.Union(b)
		}
	}
	return out, nil
}

// collectionKeyOrder returns the property keys of every feature in document
// order. orb decodes properties into a map, which loses that order.
func collectionKeyOrder(data []byte) ([][]string, error) {
	var doc struct {
		Features []struct {
			Properties json.RawMessage `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	order := make([][]string, 0, len(doc.Features))
	for _, f := range doc.Features {
		keys, err := objectKeys(f.Properties)
		if err != nil {
			return nil, err
		}
		order = append(order, keys)
	}
	return order, nil
}

func featureKeyOrder(data []byte) ([][]string, error) {
	var doc struct {
		Properties json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	keys, err := objectKeys(doc.Properties)
	if err != nil {
		return nil, err
	}
	return [][]string{keys}, nil
}

// objectKeys lists the top-level keys of a JSON object. null or absent
// input yields no keys.
func objectKeys(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("properties is not an object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}
