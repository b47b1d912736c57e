// Package village turns a note vault's tag statistics into a deterministic,
// fully laid-out 2D village: one zone per top tag, one villager per allocated
// note, and procedurally scattered structures around a central plaza.
package village

import (
	"strings"
	"time"
	"unicode"

	"github.com/cory-johannsen/notevillage/internal/village/geom"
)

// TagCount is one entry of a ranked tag frequency list.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Note is the metadata the generator needs about a single vault note.
type Note struct {
	// Path is the vault-relative path of the note file.
	Path string `json:"path"`
	// DisplayName is the note title shown on the villager.
	DisplayName string `json:"displayName"`
	// ContentLength is the note body size in bytes.
	ContentLength int `json:"contentLength"`
	// ModifiedAt is the note's last-modified time.
	ModifiedAt time.Time `json:"modifiedAt"`
}

// TagRanker supplies ranked tag frequencies. Implementations must return
// tags in descending count order, honoring any configured exclusions.
type TagRanker interface {
	TopTags(n int) []TagCount
}

// NoteSource supplies notes grouped by tag. Every requested tag must be
// present as a key in the result, even when its note list is empty.
type NoteSource interface {
	NotesGroupedByTag(tags []string) map[string][]Note
}

// Zone is a rectangular region of the world tied to one vault tag.
// Zones never overlap each other or the plaza; all zones in a generation run
// share one fixed size.
type Zone struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Tag       string    `json:"tag"`
	Color     string    `json:"color"`
	Bounds    geom.Rect `json:"bounds"`
	NoteCount int       `json:"noteCount"`
}

// Villager is one note rendered as a wandering sprite inside its zone.
//
// Invariant: Home lies strictly inside the owning zone's bounds, inset by
// the villager edge padding.
type Villager struct {
	ID            string     `json:"id"`
	NotePath      string     `json:"notePath"`
	DisplayName   string     `json:"displayName"`
	ContentLength int        `json:"contentLength"`
	Home          geom.Point `json:"home"`
	ZoneID        string     `json:"zoneId"`
	// PaletteIndex selects one of eight sprite palettes.
	PaletteIndex int `json:"paletteIndex"`
	// Scale is the uniform sprite scale derived from content length.
	Scale float64 `json:"scale"`
}

// StructureType tags the kind of a world object.
type StructureType string

// Structure kinds, in the order the generator places them.
const (
	StructureFountain  StructureType = "fountain"
	StructureBench     StructureType = "bench"
	StructureSign      StructureType = "sign"
	StructureHouse     StructureType = "house"
	StructureFlowerBed StructureType = "flower_bed"
	StructureBush      StructureType = "bush"
	StructureRock      StructureType = "rock"
	StructureTallGrass StructureType = "tall_grass"
	StructureBarrel    StructureType = "barrel"
	StructureCrate     StructureType = "crate"
	StructureTree      StructureType = "tree"
)

// Structure is a non-interactive or label-only world object.
type Structure struct {
	ID       string        `json:"id"`
	Type     StructureType `json:"type"`
	Position geom.Point    `json:"position"`
	ZoneID   string        `json:"zoneId,omitempty"`
	Label    string        `json:"label,omitempty"`
	// Blocking marks structures that block movement (forest trees).
	Blocking bool `json:"blocking,omitempty"`
	// Variant selects among visual variants of the same type.
	Variant int `json:"variant,omitempty"`
}

// Village is the full generation output. It is an immutable snapshot: the
// generator holds no reference to it after returning, and regeneration
// produces a brand-new value.
type Village struct {
	Seed        string      `json:"seed"`
	Zones       []Zone      `json:"zones"`
	Villagers   []Villager  `json:"villagers"`
	Structures  []Structure `json:"structures"`
	Spawn       geom.Point  `json:"spawn"`
	WorldWidth  float64     `json:"worldWidth"`
	WorldHeight float64     `json:"worldHeight"`
	// Playable is the walkable area inside the forest border.
	Playable geom.Rect `json:"playable"`
	Plaza    geom.Rect `json:"plaza"`
}

// Clone returns a deep copy of the village. Incremental mutators operate on
// clones so the generator's output stays a stable snapshot.
func (v *Village) Clone() *Village {
	out := *v
	out.Zones = append([]Zone(nil), v.Zones...)
	out.Villagers = append([]Villager(nil), v.Villagers...)
	out.Structures = append([]Structure(nil), v.Structures...)
	return &out
}

// ZoneByID returns the zone with the given ID.
//
// Postcondition: Returns (zone, true) if found, or (Zone{}, false) otherwise.
func (v *Village) ZoneByID(id string) (Zone, bool) {
	for _, z := range v.Zones {
		if z.ID == id {
			return z, true
		}
	}
	return Zone{}, false
}

// zonePalette is the fixed earthy color palette cycled by zone index.
var zonePalette = [20]string{
	"#8a9a5b", "#b5651d", "#c2b280", "#6b8e23", "#a0522d",
	"#bdb76b", "#8b7355", "#9acd32", "#cd853f", "#808000",
	"#a9a77a", "#7c6f57", "#b8860b", "#6e7f58", "#8f5e3c",
	"#9b8f5e", "#73683e", "#a67b5b", "#87a96b", "#96714f",
}

// ZoneColor returns the palette entry for the given zone rank.
func ZoneColor(index int) string {
	return zonePalette[index%len(zonePalette)]
}

// VillagerID derives the deterministic villager ID for a note path.
func VillagerID(notePath string) string {
	return "villager-" + slug(notePath)
}

// ZoneID derives the deterministic zone ID for a tag.
func ZoneID(tag string) string {
	return "zone-" + slug(tag)
}

// HumanizeTag turns a raw tag like "project-notes/active" into a display
// name like "Project Notes Active".
func HumanizeTag(tag string) string {
	words := strings.FieldsFunc(tag, func(r rune) bool {
		return r == '-' || r == '_' || r == '/' || r == ' ' || r == '#'
	})
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// ScaleForContentLength maps a note's byte length to a sprite scale in
// [0.8, 1.4]: longer notes stand a little taller.
func ScaleForContentLength(length int) float64 {
	extra := float64(length) / 5000.0
	if extra > 0.6 {
		extra = 0.6
	}
	if extra < 0 {
		extra = 0
	}
	return 0.8 + extra
}

// slug lowercases s and collapses every non-alphanumeric run into a single
// hyphen so the result is safe as an identifier.
func slug(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
