package geojson

import "encoding/json"

var geometryTypes = map[string]bool{
	"Point":              true,
	"LineString":         true,
	"Polygon":            true,
	"MultiPoint":         true,
	"MultiLineString":    true,
	"MultiPolygon":       true,
	"GeometryCollection": true,
}

// Validate performs a shallow structural check of a GeoJSON document:
// a FeatureCollection, a Feature or a bare geometry.
func Validate(data []byte) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return false
	}

	switch typeOf(obj) {
	case TypeFeatureCollection:
		var features []json.RawMessage
		if err := json.Unmarshal(obj["features"], &features); err != nil || features == nil {
			return false
		}
		for _, f := range features {
			if !validFeature(f) {
				return false
			}
		}
		return true
	case TypeFeature:
		return validFeature(data)
	case "":
		return false
	default:
		if !geometryTypes[typeOf(obj)] {
			return false
		}
		_, hasCoords := obj["coordinates"]
		_, hasGeoms := obj["geometries"]
		return hasCoords || hasGeoms
	}
}

func validFeature(data []byte) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return false
	}
	if typeOf(obj) != TypeFeature {
		return false
	}
	return isObject(obj["geometry"]) && isObject(obj["properties"])
}

func typeOf(obj map[string]json.RawMessage) string {
	var t string
	if err := json.Unmarshal(obj["type"], &t); err != nil {
		return ""
	}
	return t
}

func isObject(raw json.RawMessage) bool {
	var m map[string]json.RawMessage
	return json.Unmarshal(raw, &m) == nil && m != nil
}
