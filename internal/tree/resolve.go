package tree

// ReportPathsKey names the substructure holding generated report files.
const ReportPathsKey = "report_paths"

// FindField searches the tree for a key named name.
//
// A key owned directly by the root wins over any deeper match and its value
// is returned as is. Otherwise every child container is searched depth-first
// in key order (arrays in index order) and the first non-null match is
// returned. Null means not found.
//
// The tree is assumed finite and acyclic, as the service only ever sends
// tree-shaped JSON. Values built by Decode cannot contain cycles.
func FindField(v Value, name string) Value {
	switch v.kind {
	case KindObject:
		if i, ok := v.index[name]; ok {
			return v.members[i].Value
		}
		for _, m := range v.members {
			if found := descend(m.Value, name); !found.IsNull() {
				return found
			}
		}
	case KindArray:
		for _, it := range v.items {
			if found := descend(it, name); !found.IsNull() {
				return found
			}
		}
	}
	return Value{}
}

func descend(child Value, name string) Value {
	if child.kind != KindObject && child.kind != KindArray {
		return Value{}
	}
	return FindField(child, name)
}

// FindReportLocations returns the report_paths substructure (format → path)
// found with the same traversal as FindField, or null.
func FindReportLocations(v Value) Value {
	return FindField(v, ReportPathsKey)
}

// FindAny tries each name in turn and returns the first non-null match.
func FindAny(v Value, names ...string) Value {
	for _, n := range names {
		if found := FindField(v, n); !found.IsNull() {
			return found
		}
	}
	return Value{}
}

// Aliases maps a concept (for example "shear_capacity") to the field names
// the service has used for it, most preferred first.
type Aliases map[string][]string

// Lookup resolves a concept through its aliases. An unknown concept is
// looked up under its own name.
func (a Aliases) Lookup(v Value, concept string) Value {
	names, ok := a[concept]
	if !ok || len(names) == 0 {
		return FindField(v, concept)
	}
	return FindAny(v, names...)
}

// Merge returns a copy of a with the entries of b replacing same-named concepts.
func (a Aliases) Merge(b Aliases) Aliases {
	out := make(Aliases, len(a)+len(b))
	for k, v := range a {
		out[k] = append([]string(nil), v...)
	}
	for k, v := range b {
		out[k] = append([]string(nil), v...)
	}
	return out
}
