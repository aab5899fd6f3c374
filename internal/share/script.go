package share

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Entry is one participant of a revenue split.
type Entry struct {
	ID    string `json:"id"`
	Role  string `json:"role"`
	Share int    `json:"share"`
}

// RawEntry is a participant as a script lists it. Share is "25%" for an
// absolute percentage, or a plain integer weight (string or number).
type RawEntry struct {
	ID    string
	Role  string
	Share interface{}
}

// Script is the parsed revenue-split script of a task URL.
type Script struct {
	Participants []RawEntry
	Keywords     []string
	// Fields holds the remaining top-level string values.
	Fields map[string]string
}

// ParseScript reads a decoded script document. Unknown shapes are skipped.
func ParseScript(raw map[string]interface{}) *Script {
	s := &Script{Fields: map[string]string{}}
	for k, v := range raw {
		switch k {
		case "participants":
			list, ok := v.([]interface{})
			if !ok {
				continue
			}
			for _, item := range list {
				p, ok := item.(map[string]interface{})
				if !ok {
					continue
				}
				e := RawEntry{Share: p["share"]}
				e.ID, _ = p["id"].(string)
				e.Role, _ = p["role"].(string)
				s.Participants = append(s.Participants, e)
			}
		case "keywords":
			list, ok := v.([]interface{})
			if !ok {
				continue
			}
			for _, item := range list {
				if kw, ok := item.(string); ok {
					s.Keywords = append(s.Keywords, kw)
				}
			}
		default:
			if str, ok := v.(string); ok {
				s.Fields[k] = str
			}
		}
	}
	return s
}

var (
	absoluteShare = regexp.MustCompile(`^\d+%$`)
	relativeShare = regexp.MustCompile(`^\d+$`)
)

// classify returns the share value and whether it is absolute. ok is false
// for malformed or non-positive shares.
func classify(v interface{}) (value int, absolute bool, ok bool) {
	switch s := v.(type) {
	case string:
		s = strings.TrimSpace(s)
		switch {
		case absoluteShare.MatchString(s):
			n, err := strconv.Atoi(strings.TrimSuffix(s, "%"))
			return n, true, err == nil && n > 0
		case relativeShare.MatchString(s):
			n, err := strconv.Atoi(s)
			return n, false, err == nil && n > 0
		}
	case float64:
		if s > 0 && s == math.Trunc(s) && s <= math.MaxInt32 {
			return int(s), false, true
		}
	case int:
		return s, false, s > 0
	case int64:
		return int(s), false, s > 0 && s <= math.MaxInt32
	}
	return 0, false, false
}

// Split normalises script participants into percentages. Absolute shares are
// kept as they are; relative weights divide whatever the absolutes leave.
func Split(entries []RawEntry) []Entry {
	var absolute, relative []Entry
	var a, r int
	for _, e := range entries {
		v, abs, ok := classify(e.Share)
		if !ok {
			continue
		}
		entry := Entry{ID: e.ID, Role: e.Role, Share: v}
		if abs {
			absolute = append(absolute, entry)
			a += v
		} else {
			relative = append(relative, entry)
			r += v
		}
	}
	if a >= 100 || r == 0 {
		return absolute
	}
	res := absolute
	for _, e := range relative {
		var pct float64
		if a == 0 {
			pct = float64(e.Share) / float64(r) * 100
		} else {
			pct = float64(e.Share) * float64(100-a) / float64(r)
		}
		e.Share = int(math.Round(pct))
		if e.Share > 0 {
			res = append(res, e)
		}
	}
	return res
}
