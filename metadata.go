package logofy

import (
	"bytes"
	"sort"
	"sync"

	"github.com/bep/imagemeta"
)

// Provenance holds the ownership fields extracted from a logo's embedded
// EXIF/IPTC/XMP metadata. Most favicons carry nothing; populated entries are
// worth a look during brand-asset review.
type Provenance struct {
	Copyright string
	Creator   string
}

// provenanceTags maps (source, tag-name) → true for the fields we extract.
var provenanceTags = map[imagemeta.Source]map[string]bool{
	imagemeta.EXIF: {
		"Copyright": true,
		"Artist":    true,
	},
	imagemeta.IPTC: {
		"CopyrightNotice": true,
		"Byline":          true,
	},
	imagemeta.XMP: {
		"Rights":  true,
		"Creator": true,
	},
}

// ExtractProvenance parses copyright and creator fields from raw image
// bytes. Returns nil when the data carries none of them or cannot be parsed.
// Graceful degradation: never returns an error.
func ExtractProvenance(data []byte) *Provenance {
	if len(data) == 0 {
		return nil
	}

	p := &Provenance{}
	found := false

	_, err := imagemeta.Decode(imagemeta.Options{
		R:       bytes.NewReader(data),
		Sources: imagemeta.EXIF | imagemeta.IPTC | imagemeta.XMP,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			if tags, ok := provenanceTags[ti.Source]; ok {
				return tags[ti.Tag]
			}
			return false
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			s := tagValueString(ti.Value)
			if s == "" {
				return nil
			}
			switch ti.Tag {
			case "Copyright", "CopyrightNotice", "Rights":
				if p.Copyright == "" {
					p.Copyright = s
				}
			case "Artist", "Byline", "Creator":
				if p.Creator == "" {
					p.Creator = s
				}
			default:
				return nil
			}
			found = true
			return nil
		},
	})

	if err != nil || !found {
		return nil
	}
	return p
}

// tagValueString extracts a string from a tag value.
// XMP values may be string or []string (from altList/seqList).
func tagValueString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		if len(val) > 0 {
			return val[0]
		}
		return ""
	case []any:
		if len(val) > 0 {
			if s, ok := val[0].(string); ok {
				return s
			}
		}
		return ""
	default:
		return ""
	}
}

// manifestEntry is one row of the download manifest.
type manifestEntry struct {
	Logo       string
	Format     string
	Provenance Provenance
}

// Manifest records what was downloaded and kept during one run. Safe for
// concurrent use by the fetch workers.
type Manifest struct {
	mu      sync.Mutex
	entries []manifestEntry
}

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{}
}

// Add records a kept logo. prov may be nil.
func (m *Manifest) Add(logo, format string, prov *Provenance) {
	e := manifestEntry{Logo: logo, Format: format}
	if prov != nil {
		e.Provenance = *prov
	}
	m.mu.Lock()
	m.entries = append(m.entries, e)
	m.mu.Unlock()
}

// Len reports the number of recorded entries.
func (m *Manifest) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// WriteCSV writes the manifest sorted by logo name.
func (m *Manifest) WriteCSV(path string) error {
	m.mu.Lock()
	entries := make([]manifestEntry, len(m.entries))
	copy(entries, m.entries)
	m.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Logo < entries[j].Logo })

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Logo, e.Format, e.Provenance.Copyright, e.Provenance.Creator})
	}
	return writeCSV(path, []string{"Logo", "Format", "Copyright", "Creator"}, rows)
}
