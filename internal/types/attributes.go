package types

// AttrKind enumerates the value kinds an extended attribute may carry.
// Sources expose variably-shaped optional fields (profile URL, skills,
// experience history); modeling them as a small closed set of kinds keeps
// new source fields representable without an untyped bag.
type AttrKind string

// Supported attribute value kinds.
const (
	AttrString     AttrKind = "string"
	AttrStringList AttrKind = "string_list"
	AttrEntryList  AttrKind = "entry_list"
)

// AttrValue is a tagged union holding one extended attribute value.
// Exactly one of Str, List, or Entries is populated, per Kind.
type AttrValue struct {
	Kind    AttrKind            `json:"kind"`
	Str     string              `json:"str,omitempty"`
	List    []string            `json:"list,omitempty"`
	Entries []map[string]string `json:"entries,omitempty"`
}

// AttributeSet maps source field names to extended attribute values.
// Absence of a field is semantically "unknown", not an error.
type AttributeSet map[string]AttrValue

// StringAttr builds a string-kind attribute value.
func StringAttr(s string) AttrValue {
	return AttrValue{Kind: AttrString, Str: s}
}

// ListAttr builds a string-list-kind attribute value.
func ListAttr(items []string) AttrValue {
	return AttrValue{Kind: AttrStringList, List: items}
}

// EntriesAttr builds an entry-list-kind attribute value, used for structured
// sub-records such as experience or education history.
func EntriesAttr(entries []map[string]string) AttrValue {
	return AttrValue{Kind: AttrEntryList, Entries: entries}
}

// String returns the attribute named key when it is string-kind, or "".
func (a AttributeSet) String(key string) string {
	if v, ok := a[key]; ok && v.Kind == AttrString {
		return v.Str
	}
	return ""
}
