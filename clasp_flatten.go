package clasp

import (
	"slices"
	"strings"
)

// finalize compiles the node: it validates names, inlines every group
// into this node's record arrays, builds the sorted lookup tables, and
// collects the required set. Children are compiled first, since
// flattening copies their finished tables.
func (s *Schema) finalize() {
	if s.finalized {
		return
	}
	s.finalized = true

	for i := range s.subs {
		s.subs[i].child.finalize()
	}
	for i := range s.groups {
		s.groups[i].child.finalize()
	}

	// Stick flags and subcommands into the lookup tables under each of
	// their names.
	for idx := range s.flags {
		f := &s.flags[idx]
		field := f.longName()
		for nameIdx := range f.names {
			nv := &f.names[nameIdx]
			if nv.vis == Delete {
				continue
			}
			nv.name = normalize(nv.name, field)
			checkReservedWord(nv.name, field)

			s.sortedFlags = append(s.sortedFlags, entry{
				key:      nv.name,
				idx:      idx,
				isLetter: nameIdx == 0 && f.hasLetter,
				isAlias:  nameIdx > btoi(f.hasLetter),
				vis:      nv.vis,
			})
		}
	}

	for idx := range s.subs {
		c := &s.subs[idx]
		for nameIdx := range c.names {
			nv := &c.names[nameIdx]
			if nv.vis == Delete {
				continue
			}
			nv.name = normalize(nv.name, c.tag.name)
			checkReservedWord(nv.name, c.tag.name)

			s.sortedSubs = append(s.sortedSubs, entry{
				key: nv.name,
				idx: idx,
				vis: nv.vis,
			})
		}
	}

	// Inline each group. Appending below grows s.groups, but only the
	// original records are flattened here; appended ones were already
	// flattened inside their own parent.
	totalGroups := len(s.groups)
	for idx := 0; idx < totalGroups; idx++ {
		g := s.groups[idx]
		child := g.child

		flagOffset := len(s.flags)
		subOffset := len(s.subs)
		groupOffset := len(s.groups)

		// Copy the child's records, merging the group's visibility into
		// every copied name.
		for _, f := range child.flags {
			f.names = mergeNames(f.names, g.tag.vis)
			s.flags = append(s.flags, f)
		}
		for _, c := range child.subs {
			c.names = mergeNames(c.names, g.tag.vis)
			s.subs = append(s.subs, c)
		}
		for _, gg := range child.groups {
			gg.names = mergeNames(gg.names, g.tag.vis)
			s.groups = append(s.groups, gg)
		}

		for nameIdx := range s.groups[idx].names {
			nv := &s.groups[idx].names[nameIdx]
			if nv.vis == Delete {
				continue
			}

			isFlatten := !g.hasLetter && nv.name == ""
			isLetter := !isFlatten && nameIdx == 0 && g.hasLetter
			if !isFlatten {
				nv.name = normalize(nv.name, g.tag.name)
				checkReservedWord(nv.name, g.tag.name)

				s.sortedFlags = append(s.sortedFlags, entry{
					key:      nv.name,
					idx:      idx,
					isGroup:  true,
					isLetter: isLetter,
					isAlias:  nameIdx > btoi(g.hasLetter),
				})
			}

			copyVis := nv.vis
			if !isFlatten {
				copyVis = mergeVis(copyVis, Hidden)
			}

			for _, e := range child.sortedFlags {
				if isFlatten && e.magic != magicNone {
					continue
				}
				if e.magic == magicNone {
					if e.isGroup {
						e.idx += groupOffset
					} else {
						e.idx += flagOffset
					}
				} else {
					// Magic copies re-render help for this group.
					e.idx = idx
				}

				e.isLetter = e.isLetter || isLetter
				e.vis = mergeVis(e.vis, copyVis)
				e.isCopy = !isFlatten

				if nv.name != "" {
					key := e.key
					if isLetter {
						e.key = nv.name + key
						s.sortedFlags = append(s.sortedFlags, e)
					}
					e.key = nv.name + "." + key
				}
				s.sortedFlags = append(s.sortedFlags, e)
			}

			for _, e := range child.sortedSubs {
				if nv.name != "" {
					e.key = nv.name + "." + e.key
				}
				e.idx += subOffset
				e.vis = mergeVis(e.vis, copyVis)
				e.isCopy = !isFlatten
				s.sortedSubs = append(s.sortedSubs, e)
			}
		}
	}

	// Pull out all of the required flags, copies included.
	s.required = make(map[*FlagSpec]string)
	for i := range s.flags {
		f := &s.flags[i]
		if f.getCount() != Required {
			continue
		}
		s.required[f.tag] = f.longName()
	}

	// The magic help flags exist on every node.
	s.sortedFlags = append(s.sortedFlags,
		entry{key: "help", idx: -1, vis: Public, magic: magicHelp},
		entry{key: "h", idx: -1, isLetter: true, vis: Public, magic: magicHelp},
		entry{key: "help-hidden", idx: -1, vis: Hidden, magic: magicHelpHidden},
	)

	byKey := func(a, b entry) int { return strings.Compare(a.key, b.key) }
	slices.SortFunc(s.sortedFlags, byKey)
	slices.SortFunc(s.sortedSubs, byKey)

	for i := 1; i < len(s.sortedFlags); i++ {
		e := &s.sortedFlags[i]
		if e.key != s.sortedFlags[i-1].key {
			continue
		}
		if e.isLetter {
			configFatalf("detected duplicate flag: -%s", e.key)
		}
		configFatalf("detected duplicate flag: --%s", e.key)
	}
	for i := 1; i < len(s.sortedSubs); i++ {
		if s.sortedSubs[i].key == s.sortedSubs[i-1].key {
			configFatalf("detected duplicate subcommand: %s", s.sortedSubs[i].key)
		}
	}

	s.checkPositionals()
}

// checkPositionals rejects orderings the parser's cursor cannot satisfy.
func (s *Schema) checkPositionals() {
	sawOptional := false
	for i := range s.args {
		p := &s.args[i]
		name := p.name
		if name == "" {
			name = argN(i)
		}
		switch p.getCount() {
		case Repeated:
			if i != len(s.args)-1 {
				configFatalf("repeated positional %q must come last", name)
			}
		case Optional:
			sawOptional = true
		case Required:
			if sawOptional {
				configFatalf("required positional %q follows an optional one", name)
			}
		}
	}
}

// findFlag and findSub bisect the sorted tables.
func (s *Schema) findFlag(key string) *entry {
	i, ok := slices.BinarySearchFunc(s.sortedFlags, key,
		func(e entry, k string) int { return strings.Compare(e.key, k) })
	if !ok {
		return nil
	}
	return &s.sortedFlags[i]
}

func (s *Schema) findSub(key string) *entry {
	i, ok := slices.BinarySearchFunc(s.sortedSubs, key,
		func(e entry, k string) int { return strings.Compare(e.key, k) })
	if !ok {
		return nil
	}
	return &s.sortedSubs[i]
}

func mergeNames(names []nameVis, vis Visibility) []nameVis {
	out := make([]nameVis, len(names))
	for i, nv := range names {
		out[i] = nameVis{name: nv.name, vis: mergeVis(nv.vis, vis)}
	}
	return out
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
