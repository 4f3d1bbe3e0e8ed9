// Package normalizing maps raw source-specific records onto the canonical
// Professional schema.
package normalizing

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/professional-finder/internal/types"
)

// coreFields are raw keys consumed into canonical scalar columns; everything
// else is preserved under extended attributes.
var coreFields = map[string]struct{}{
	"fullName":   {},
	"name":       {},
	"firstName":  {},
	"lastName":   {},
	"first_name": {},
	"last_name":  {},
	"jobTitle":   {},
	"job_title":  {},
	"title":      {},
	"position":   {},
	"company":    {},
	"city":       {},
}

// Normalize builds a canonical record from one raw source record. It is a
// pure mapping with no I/O: missing scalars become empty strings rather than
// errors, and every call mints a fresh unique_id and created_at, so identity
// for dedup purposes stays content-based.
func Normalize(raw map[string]any, source types.Source, cityHint string) *types.Professional {
	first, last := extractName(raw)

	return &types.Professional{
		UniqueID:   uuid.NewString(),
		FirstName:  first,
		LastName:   last,
		JobTitle:   firstString(raw, "jobTitle", "job_title", "title", "position"),
		Company:    extractCompany(raw),
		City:       extractCity(raw, cityHint),
		Source:     source,
		CreatedAt:  time.Now().UTC(),
		Attributes: extractAttributes(raw),
	}
}

// extractName resolves a first/last name pair from the shapes the sources
// emit: a single display-name field or split name fields.
func extractName(raw map[string]any) (string, string) {
	if full := firstString(raw, "fullName", "name"); full != "" {
		parts := strings.Fields(full)
		switch len(parts) {
		case 0:
			return "", ""
		case 1:
			return parts[0], ""
		default:
			return parts[0], strings.Join(parts[1:], " ")
		}
	}

	first := firstString(raw, "firstName", "first_name")
	last := firstString(raw, "lastName", "last_name")
	return strings.TrimSpace(first), strings.TrimSpace(last)
}

// extractCompany accepts either a plain company name or a nested company
// object carrying a name field.
func extractCompany(raw map[string]any) string {
	switch v := raw["company"].(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		if name, ok := v["name"].(string); ok {
			return strings.TrimSpace(name)
		}
	}
	return firstString(raw, "companyName", "company_name")
}

// extractCity prefers the record's own city and falls back to the search
// city. Cities are stored lower-cased so lookups are uniform.
func extractCity(raw map[string]any, cityHint string) string {
	city := firstString(raw, "city")
	if city == "" {
		city = strings.TrimSpace(cityHint)
	}
	return strings.ToLower(city)
}

// extractAttributes preserves unmapped optional fields under the extended
// attribute container. Values that fit none of the supported kinds are
// dropped rather than stored as opaque blobs.
func extractAttributes(raw map[string]any) types.AttributeSet {
	attrs := make(types.AttributeSet)
	for key, value := range raw {
		if _, consumed := coreFields[key]; consumed {
			continue
		}
		if attr, ok := convertValue(key, value); ok {
			attrs[key] = attr
		}
	}
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}

func convertValue(key string, value any) (types.AttrValue, bool) {
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return types.AttrValue{}, false
		}
		return types.StringAttr(v), true
	case bool:
		return types.StringAttr(strconv.FormatBool(v)), true
	case float64:
		return types.StringAttr(strconv.FormatFloat(v, 'f', -1, 64)), true
	case []any:
		return convertList(v)
	case map[string]any:
		// Location objects carry a display string worth keeping directly.
		if key == "location" {
			if text, ok := v["linkedinText"].(string); ok && text != "" {
				return types.StringAttr(text), true
			}
		}
		if entry := scalarEntry(v); len(entry) > 0 {
			return types.EntriesAttr([]map[string]string{entry}), true
		}
		return types.AttrValue{}, false
	default:
		return types.AttrValue{}, false
	}
}

// convertList maps a JSON array to a string list or an entry list. Elements
// that are objects carrying only a name (skills, languages) collapse to their
// names; heterogeneous arrays are dropped.
func convertList(items []any) (types.AttrValue, bool) {
	if len(items) == 0 {
		return types.AttrValue{}, false
	}

	switch items[0].(type) {
	case string:
		list := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok && s != "" {
				list = append(list, s)
			}
		}
		if len(list) == 0 {
			return types.AttrValue{}, false
		}
		return types.ListAttr(list), true
	case map[string]any:
		names := make([]string, 0, len(items))
		entries := make([]map[string]string, 0, len(items))
		for _, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			entry := scalarEntry(obj)
			if len(entry) == 0 {
				continue
			}
			entries = append(entries, entry)
			if len(entry) == 1 {
				if name, ok := entry["name"]; ok {
					names = append(names, name)
				}
			}
		}
		if len(entries) == 0 {
			return types.AttrValue{}, false
		}
		// A list of bare {name} objects is really a string list.
		if len(names) == len(entries) {
			return types.ListAttr(names), true
		}
		return types.EntriesAttr(entries), true
	default:
		return types.AttrValue{}, false
	}
}

// scalarEntry flattens an object's scalar fields to strings, dropping nested
// structures.
func scalarEntry(obj map[string]any) map[string]string {
	entry := make(map[string]string)
	for key, value := range obj {
		switch v := value.(type) {
		case string:
			if v != "" {
				entry[key] = v
			}
		case bool:
			entry[key] = strconv.FormatBool(v)
		case float64:
			entry[key] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return entry
}

// firstString returns the first non-empty string among the named raw keys.
func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := raw[key].(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
