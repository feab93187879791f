package dns

import (
	"net/netip"
	"sort"
	"strings"
)

// Record is one custom host table entry: a (domain, IP) pair.
type Record struct {
	Domain string
	IP     string
}

// String renders the record in the store's wire format, "<ip> <domain>".
func (r Record) String() string {
	return r.IP + " " + r.Domain
}

// RecordSet is a set of host records. It is deliberately not keyed by
// domain alone: a single hostname may map to multiple addresses, one per
// IP family.
type RecordSet map[Record]struct{}

// NewRecordSet builds a set from the given records.
func NewRecordSet(records ...Record) RecordSet {
	s := make(RecordSet, len(records))
	for _, r := range records {
		s.Add(r)
	}
	return s
}

func (s RecordSet) Add(r Record) {
	s[r] = struct{}{}
}

func (s RecordSet) Has(r Record) bool {
	_, ok := s[r]
	return ok
}

func (s RecordSet) Len() int {
	return len(s)
}

// Equal reports whether both sets contain exactly the same records.
func (s RecordSet) Equal(other RecordSet) bool {
	if len(s) != len(other) {
		return false
	}
	for r := range s {
		if !other.Has(r) {
			return false
		}
	}
	return true
}

// Sorted returns the records ordered by domain, then IP.
func (s RecordSet) Sorted() []Record {
	records := make([]Record, 0, len(s))
	for r := range s {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Domain != records[j].Domain {
			return records[i].Domain < records[j].Domain
		}
		return records[i].IP < records[j].IP
	})
	return records
}

// Diff returns the records present in desired but not in s (added), and
// those present in s but not in desired (removed), both sorted.
func (s RecordSet) Diff(desired RecordSet) (added, removed []Record) {
	for _, r := range desired.Sorted() {
		if !s.Has(r) {
			added = append(added, r)
		}
	}
	for _, r := range s.Sorted() {
		if !desired.Has(r) {
			removed = append(removed, r)
		}
	}
	return added, removed
}

// FormatHosts renders the set as the store's hosts lines, sorted.
func FormatHosts(s RecordSet) []string {
	records := s.Sorted()
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, r.String())
	}
	return lines
}

// ParseHostLine parses a single "<ip> <domain>" hosts line.
func ParseHostLine(line string) (Record, bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Record{}, false
	}
	if _, err := netip.ParseAddr(fields[0]); err != nil {
		return Record{}, false
	}
	return Record{IP: fields[0], Domain: fields[1]}, true
}

// FirstLabel returns the first label of a DNS name.
// e.g. "host1.tailnet.ts.net" → "host1"
func FirstLabel(dnsName string) string {
	dnsName = strings.TrimSuffix(dnsName, ".")
	if idx := strings.Index(dnsName, "."); idx >= 0 {
		return dnsName[:idx]
	}
	return dnsName
}
