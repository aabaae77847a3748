package scope

import "sort"

// Merged is the package-level view over the files of one package. When
// two files declare the same name the file that sorts first wins.
type Merged struct {
	members map[string]*Symbol
	order   []*Symbol
	methods map[string]map[string]*Symbol
}

var _ Members = (*Merged)(nil)

// Merge combines the globals and methods of files. Files are taken in
// path order so the result does not depend on the caller's order.
func Merge(files []*FileInfo) *Merged {
	sorted := make([]*FileInfo, 0, len(files))
	for _, f := range files {
		if f != nil {
			sorted = append(sorted, f)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	m := &Merged{members: map[string]*Symbol{}, methods: map[string]map[string]*Symbol{}}
	for _, f := range sorted {
		for _, sym := range f.Globals {
			if _, dup := m.members[sym.Name]; dup {
				continue
			}
			m.members[sym.Name] = sym
			m.order = append(m.order, sym)
		}
		for recv, ms := range f.Methods {
			if m.methods[recv] == nil {
				m.methods[recv] = map[string]*Symbol{}
			}
			for name, sym := range ms {
				if _, dup := m.methods[recv][name]; !dup {
					m.methods[recv][name] = sym
				}
			}
		}
	}
	return m
}

func (m *Merged) Member(name string) *Symbol { return m.members[name] }

func (m *Merged) Members() []*Symbol { return m.order }

func (m *Merged) Method(recv, name string) *Symbol { return m.methods[recv][name] }

// MethodSet returns the methods declared on recv, sorted by name.
func (m *Merged) MethodSet(recv string) []*Symbol {
	ms := m.methods[recv]
	out := make([]*Symbol, 0, len(ms))
	for _, sym := range ms {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Exported returns the exported members in declaration order.
func (m *Merged) Exported() []*Symbol {
	var out []*Symbol
	for _, sym := range m.order {
		if sym.Exported() {
			out = append(out, sym)
		}
	}
	return out
}
