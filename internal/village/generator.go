package village

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/notevillage/internal/village/geom"
	"github.com/cory-johannsen/notevillage/internal/village/rng"
)

// Layout constants shared by every generation run. Zone size and plaza size
// come from Options; everything else is fixed.
const (
	// roadGap separates adjacent zone rectangles; the gap is reserved for roads.
	roadGap = 60.0
	// forestBorderWidth is the depth of the blocking tree band around the world.
	forestBorderWidth = 100.0
	// gridMargin separates the zone grid from the forest border.
	gridMargin = 40.0

	treeSpacing = 48.0
	treeJitter  = 10.0

	// villagerPadding insets villager home positions from their zone's edges.
	villagerPadding = 20.0
	// structureSpacing pads every placement collision test.
	structureSpacing = 8.0

	houseSize        = 64.0
	houseAttempts    = 20
	houseStartRadius = 50.0
	houseRadiusGrow  = 20.0

	decorationAttempts = 12
	edgeInset          = 18.0
	nearHouseRadius    = 50.0

	fountainSize  = 48.0
	benchSize     = 24.0
	benchOffset   = 20.0
	signOffset    = 14.0
	flowerBedSize = 20.0
	treeSize      = 24.0
)

// structureFootprints maps each structure type to the side length of its
// square collision footprint.
var structureFootprints = map[StructureType]float64{
	StructureFountain:  fountainSize,
	StructureBench:     benchSize,
	StructureSign:      benchSize,
	StructureHouse:     houseSize,
	StructureFlowerBed: flowerBedSize,
	StructureBush:      22,
	StructureRock:      18,
	StructureTallGrass: 16,
	StructureBarrel:    18,
	StructureCrate:     20,
	StructureTree:      treeSize,
}

// StructureSize returns the collision footprint side length for a structure
// type. Renderers use the same footprint for hit testing.
func StructureSize(t StructureType) float64 {
	return structureFootprints[t]
}

// decorationSpec is one entry of the per-zone decoration menu.
type decorationSpec struct {
	kind StructureType
	// baseCount is the per-zone count at DecorationDensity 0.1.
	baseCount int
	// nearHouse selects proximity-biased sampling instead of edge-biased.
	nearHouse bool
}

// zoneDecorations is the fixed menu placed in every zone: bushes, rocks, and
// tall grass along zone edges, barrels and crates near houses.
var zoneDecorations = []decorationSpec{
	{kind: StructureBush, baseCount: 6},
	{kind: StructureRock, baseCount: 4},
	{kind: StructureTallGrass, baseCount: 8},
	{kind: StructureBarrel, baseCount: 2, nearHouse: true},
	{kind: StructureCrate, baseCount: 2, nearHouse: true},
}

// flowerBedAnchors are the 8 fixed fractional positions around the plaza
// edges, symmetric across both axes.
var flowerBedAnchors = [8][2]float64{
	{0.25, 0}, {0.75, 0},
	{1, 0.25}, {1, 0.75},
	{0.75, 1}, {0.25, 1},
	{0, 0.75}, {0, 0.25},
}

// Generator deterministically transforms tag and note statistics into a
// laid-out, collision-free village. A Generator is stateless between calls:
// Generate may be invoked repeatedly and holds no reference to its output.
type Generator struct {
	opts   Options
	tags   TagRanker
	notes  NoteSource
	logger *zap.Logger
}

// NewGenerator creates a Generator.
//
// Precondition: tags, notes, and logger must be non-nil. Option validation
// happens per Generate call, not here.
func NewGenerator(opts Options, tags TagRanker, notes NoteSource, logger *zap.Logger) *Generator {
	return &Generator{opts: opts, tags: tags, notes: notes, logger: logger}
}

// Generate produces a complete village snapshot.
//
// The same options and collaborator outputs always yield a bit-identical
// Village. Placement failures are soft: items that find no collision-free
// spot within their attempt budget are omitted, never fatal.
//
// Postcondition: Returns a valid Village, or an error only for invalid
// options (no layout work happens in that case).
func (g *Generator) Generate() (*Village, error) {
	if err := g.opts.Validate(); err != nil {
		return nil, err
	}

	r := rng.NewFromString(g.opts.Seed)

	top := g.tags.TopTags(g.opts.TopTagCount)
	tagNames := make([]string, len(top))
	for i, tc := range top {
		tagNames[i] = tc.Tag
	}
	grouped := g.notes.NotesGroupedByTag(tagNames)

	layout := computeLayout(g.opts, len(top))
	zones := buildZones(top, grouped, layout)

	villagers := allocateVillagers(r, zones, grouped, g.opts.MaxVillagers)

	structures, dropped := g.placeStructures(r, layout, zones, villagers)

	v := &Village{
		Seed:        g.opts.Seed,
		Zones:       zones,
		Villagers:   villagers,
		Structures:  structures,
		Spawn:       layout.plaza.Center(),
		WorldWidth:  layout.worldWidth,
		WorldHeight: layout.worldHeight,
		Playable: geom.Rect{
			X:      forestBorderWidth,
			Y:      forestBorderWidth,
			Width:  layout.worldWidth - 2*forestBorderWidth,
			Height: layout.worldHeight - 2*forestBorderWidth,
		},
		Plaza: layout.plaza,
	}

	g.logger.Info("village generated",
		zap.String("seed", g.opts.Seed),
		zap.Int("zones", len(v.Zones)),
		zap.Int("villagers", len(v.Villagers)),
		zap.Int("structures", len(v.Structures)),
		zap.Int("placements_dropped", dropped),
		zap.Float64("world_width", v.WorldWidth),
		zap.Float64("world_height", v.WorldHeight),
	)
	return v, nil
}

// gridLayout is the resolved geometry of one generation run.
type gridLayout struct {
	cols, rows         int
	plazaCol, plazaRow int
	stride             float64 // zone width + road gap
	originX, originY   float64 // top-left of the first grid cell
	zoneWidth          float64
	plaza              geom.Rect
	worldWidth         float64
	worldHeight        float64
	innerRadius        float64
}

// computeLayout sizes a near-square grid holding numZones + 1 cells, the +1
// reserving the cell nearest the grid center for the plaza.
func computeLayout(opts Options, numZones int) gridLayout {
	cells := numZones + 1
	cols := int(math.Ceil(math.Sqrt(float64(cells))))
	rows := int(math.Ceil(float64(cells) / float64(cols)))

	l := gridLayout{
		cols:        cols,
		rows:        rows,
		plazaCol:    (cols - 1) / 2,
		plazaRow:    (rows - 1) / 2,
		stride:      opts.ZoneWidth + roadGap,
		zoneWidth:   opts.ZoneWidth,
		originX:     forestBorderWidth + gridMargin,
		originY:     forestBorderWidth + gridMargin,
		innerRadius: opts.ZoneInnerRadius,
	}

	gridSpanX := float64(cols)*l.stride - roadGap
	gridSpanY := float64(rows)*l.stride - roadGap
	l.worldWidth = gridSpanX + 2*(forestBorderWidth+gridMargin)
	l.worldHeight = gridSpanY + 2*(forestBorderWidth+gridMargin)

	plazaCenter := geom.Point{
		X: l.originX + float64(l.plazaCol)*l.stride + opts.ZoneWidth/2,
		Y: l.originY + float64(l.plazaRow)*l.stride + opts.ZoneWidth/2,
	}
	l.plaza = geom.RectAround(plazaCenter, 2*opts.PlazaRadius, 2*opts.PlazaRadius)
	return l
}

// buildZones walks the grid row-major, skipping the reserved plaza cell, and
// assigns each remaining cell a fixed-size zone in tag-rank order.
func buildZones(top []TagCount, grouped map[string][]Note, l gridLayout) []Zone {
	zones := make([]Zone, 0, len(top))
	idx := 0
	for row := 0; row < l.rows && idx < len(top); row++ {
		for col := 0; col < l.cols && idx < len(top); col++ {
			if row == l.plazaRow && col == l.plazaCol {
				continue
			}
			tc := top[idx]
			zones = append(zones, Zone{
				ID:    ZoneID(tc.Tag),
				Name:  HumanizeTag(tc.Tag),
				Tag:   tc.Tag,
				Color: ZoneColor(idx),
				Bounds: geom.Rect{
					X:      l.originX + float64(col)*l.stride,
					Y:      l.originY + float64(row)*l.stride,
					Width:  l.zoneWidth,
					Height: l.zoneWidth,
				},
				NoteCount: len(grouped[tc.Tag]),
			})
			idx++
		}
	}
	return zones
}

// allocateVillagers distributes the villager cap across zones proportionally
// to note count, then hands out leftover slots round-robin to zones that
// still have unallocated notes. Per zone, the oldest-modified notes are
// allocated first so stale notes stay visible.
//
// Postcondition: len(result) <= maxVillagers; no note is allocated twice;
// every villager's home lies inside its zone's padded interior.
func allocateVillagers(r *rng.Source, zones []Zone, grouped map[string][]Note, maxVillagers int) []Villager {
	type zoneNotes struct {
		zone  Zone
		notes []Note
		alloc int
	}

	pools := make([]zoneNotes, len(zones))
	total := 0
	for i, z := range zones {
		notes := append([]Note(nil), grouped[z.Tag]...)
		sort.Slice(notes, func(a, b int) bool {
			if !notes[a].ModifiedAt.Equal(notes[b].ModifiedAt) {
				return notes[a].ModifiedAt.Before(notes[b].ModifiedAt)
			}
			return notes[a].Path < notes[b].Path
		})
		pools[i] = zoneNotes{zone: z, notes: notes}
		total += len(notes)
	}

	villagers := []Villager{}
	if total == 0 {
		return villagers
	}

	allocated := 0
	for i := range pools {
		share := maxVillagers * len(pools[i].notes) / total
		if share > len(pools[i].notes) {
			share = len(pools[i].notes)
		}
		pools[i].alloc = share
		allocated += share
	}

	// Hand out leftover slots one at a time, round-robin, only to zones with
	// spare notes.
	for allocated < maxVillagers {
		granted := false
		for i := range pools {
			if allocated >= maxVillagers {
				break
			}
			if pools[i].alloc < len(pools[i].notes) {
				pools[i].alloc++
				allocated++
				granted = true
			}
		}
		if !granted {
			break
		}
	}

	for _, p := range pools {
		for j := 0; j < p.alloc; j++ {
			note := p.notes[j]
			x, y := r.PointInRect(p.zone.Bounds.X, p.zone.Bounds.Y,
				p.zone.Bounds.Width, p.zone.Bounds.Height, villagerPadding)
			villagers = append(villagers, Villager{
				ID:            VillagerID(note.Path),
				NotePath:      note.Path,
				DisplayName:   note.DisplayName,
				ContentLength: note.ContentLength,
				Home:          geom.Point{X: x, Y: y},
				ZoneID:        p.zone.ID,
				PaletteIndex:  r.IntRange(0, 7),
				Scale:         ScaleForContentLength(note.ContentLength),
			})
		}
	}
	return villagers
}

// structureSeq issues deterministic per-type structure IDs.
type structureSeq map[StructureType]int

func (s structureSeq) next(t StructureType) string {
	s[t]++
	return fmt.Sprintf("%s-%d", t, s[t])
}

// placeStructures emits all world structures in fixed order: fountain,
// benches, signs, houses, decorations, forest border. Later steps collide
// against everything placed earlier. Returns the structures and the number
// of placements dropped for want of a collision-free spot.
func (g *Generator) placeStructures(r *rng.Source, l gridLayout, zones []Zone, villagers []Villager) ([]Structure, int) {
	var structures []Structure
	seq := structureSeq{}
	dropped := 0

	plazaCenter := l.plaza.Center()
	var blocked []geom.Rect

	place := func(t StructureType, pos geom.Point, size float64, s Structure) {
		s.ID = seq.next(t)
		s.Type = t
		s.Position = pos
		structures = append(structures, s)
		blocked = append(blocked, geom.RectAround(pos, size, size))
	}

	// Fountain at the plaza center.
	place(StructureFountain, plazaCenter, fountainSize, Structure{})

	// Four benches at the plaza corners.
	half := l.plaza.Width / 2
	for _, corner := range [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
		pos := geom.Point{
			X: plazaCenter.X + corner[0]*(half-benchOffset),
			Y: plazaCenter.Y + corner[1]*(half-benchOffset),
		}
		place(StructureBench, pos, benchSize, Structure{})
	}

	// One labeled sign per zone, top-center.
	for _, z := range zones {
		pos := geom.Point{X: z.Bounds.X + z.Bounds.Width/2, Y: z.Bounds.Y + signOffset}
		place(StructureSign, pos, benchSize, Structure{ZoneID: z.ID, Label: z.Name})
	}

	zoneByID := make(map[string]Zone, len(zones))
	for _, z := range zones {
		zoneByID[z.ID] = z
	}

	// plazaClearance vetoes footprints inside the structure-free ring around
	// the plaza center.
	plazaClearance := func(candidate geom.Rect) bool {
		c := candidate.Center()
		return math.Hypot(c.X-plazaCenter.X, c.Y-plazaCenter.Y) < l.innerRadius
	}

	// Houses: each villager gets one with probability HousesPerVillager,
	// placed near its home via the expanding-radius search. Failures drop
	// the house, never abort.
	housesByZone := map[string][]geom.Rect{}
	for _, v := range villagers {
		if !r.Bool(g.opts.HousesPerVillager) {
			continue
		}
		zone, ok := zoneByID[v.ZoneID]
		if !ok {
			continue
		}
		pos, ok := spotSearch{
			Origin:       v.Home,
			Bounds:       zone.Bounds,
			Width:        houseSize,
			Height:       houseSize,
			StartRadius:  houseStartRadius,
			RadiusGrowth: houseRadiusGrow,
			Attempts:     houseAttempts,
			Spacing:      structureSpacing,
			Blocked:      blocked,
			Reject:       plazaClearance,
		}.run(r)
		if !ok {
			dropped++
			continue
		}
		place(StructureHouse, pos, houseSize, Structure{
			ZoneID:  zone.ID,
			Variant: r.IntRange(0, 3),
		})
		housesByZone[zone.ID] = append(housesByZone[zone.ID], geom.RectAround(pos, houseSize, houseSize))
	}

	// Symmetric flower beds at fixed fractional positions around the plaza
	// edges. Reject-and-skip: no retries on collision.
	for i, a := range flowerBedAnchors {
		pos := geom.Point{
			X: l.plaza.X + a[0]*l.plaza.Width,
			Y: l.plaza.Y + a[1]*l.plaza.Height,
		}
		candidate := geom.RectAround(pos, flowerBedSize, flowerBedSize)
		if geom.OverlapsAny(candidate, blocked, structureSpacing) {
			dropped++
			continue
		}
		place(StructureFlowerBed, pos, flowerBedSize, Structure{Variant: i % 4})
	}

	// Per-zone decoration menu. Edge types sample along zone edges,
	// near-house types sample around a random house in the zone.
	densityScale := g.opts.DecorationDensity * 10
	for _, z := range zones {
		houses := housesByZone[z.ID]
		for _, spec := range zoneDecorations {
			if spec.nearHouse && len(houses) == 0 {
				continue
			}
			size := StructureSize(spec.kind)
			count := int(float64(spec.baseCount) * densityScale)
			for i := 0; i < count; i++ {
				var sampler func() geom.Point
				if spec.nearHouse {
					sampler = nearHouseSampler(r, houses)
				} else {
					sampler = edgeSampler(r, z.Bounds)
				}
				pos, ok := placeWithSampler(r, sampler, z.Bounds, size, blocked, plazaClearance)
				if !ok {
					dropped++
					continue
				}
				place(spec.kind, pos, size, Structure{
					ZoneID:  z.ID,
					Variant: r.IntRange(0, 2),
				})
			}
		}
	}

	// Forest border: trees tiled at fixed spacing with a small jitter around
	// all four edges, always blocking.
	structures = g.placeForest(r, l, seq, structures)

	return structures, dropped
}

// edgeSampler returns edge-biased samples: a random zone edge, a random
// point along it, inset from the boundary.
func edgeSampler(r *rng.Source, bounds geom.Rect) func() geom.Point {
	return func() geom.Point {
		switch r.IntRange(0, 3) {
		case 0: // top
			return geom.Point{X: r.FloatRange(bounds.X+edgeInset, bounds.X+bounds.Width-edgeInset), Y: bounds.Y + edgeInset}
		case 1: // bottom
			return geom.Point{X: r.FloatRange(bounds.X+edgeInset, bounds.X+bounds.Width-edgeInset), Y: bounds.Y + bounds.Height - edgeInset}
		case 2: // left
			return geom.Point{X: bounds.X + edgeInset, Y: r.FloatRange(bounds.Y+edgeInset, bounds.Y+bounds.Height-edgeInset)}
		default: // right
			return geom.Point{X: bounds.X + bounds.Width - edgeInset, Y: r.FloatRange(bounds.Y+edgeInset, bounds.Y+bounds.Height-edgeInset)}
		}
	}
}

// nearHouseSampler returns proximity-biased samples within a small radius of
// a random house footprint.
func nearHouseSampler(r *rng.Source, houses []geom.Rect) func() geom.Point {
	return func() geom.Point {
		house, _ := rng.Pick(r, houses)
		c := house.Center()
		x, y := r.PointInCircle(c.X, c.Y, nearHouseRadius)
		return geom.Point{X: x, Y: y}
	}
}

// placeWithSampler runs the bounded-attempts collision search with an
// arbitrary position sampler, clamping candidates into bounds.
func placeWithSampler(r *rng.Source, sample func() geom.Point, bounds geom.Rect, size float64, blocked []geom.Rect, reject func(geom.Rect) bool) (geom.Point, bool) {
	for attempt := 0; attempt < decorationAttempts; attempt++ {
		pos := geom.ClampToRect(sample(), bounds, size/2)
		candidate := geom.RectAround(pos, size, size)
		if geom.OverlapsAny(candidate, blocked, structureSpacing) {
			continue
		}
		if reject != nil && reject(candidate) {
			continue
		}
		return pos, true
	}
	return geom.Point{}, false
}

// placeForest tiles blocking trees through the full perimeter band: top and
// bottom bands across the whole width, left and right bands between them.
func (g *Generator) placeForest(r *rng.Source, l gridLayout, seq structureSeq, structures []Structure) []Structure {
	bandRows := int(math.Floor(forestBorderWidth / treeSpacing))
	if bandRows < 1 {
		bandRows = 1
	}

	tree := func(x, y float64) Structure {
		return Structure{
			ID:   seq.next(StructureTree),
			Type: StructureTree,
			Position: geom.Point{
				X: x + r.FloatRange(-treeJitter, treeJitter),
				Y: y + r.FloatRange(-treeJitter, treeJitter),
			},
			Blocking: true,
			Variant:  r.IntRange(0, 2),
		}
	}

	for row := 0; row < bandRows; row++ {
		offset := treeSpacing/2 + float64(row)*treeSpacing
		for x := treeSpacing / 2; x < l.worldWidth; x += treeSpacing {
			structures = append(structures, tree(x, offset))
			structures = append(structures, tree(x, l.worldHeight-offset))
		}
		for y := forestBorderWidth; y < l.worldHeight-forestBorderWidth; y += treeSpacing {
			structures = append(structures, tree(offset, y))
			structures = append(structures, tree(l.worldWidth-offset, y))
		}
	}
	return structures
}
