// Package carousel renders the complete per-section cleaning program:
// it walks a section's pad list, rotates and translates the shared
// cleaning passes onto each pad's slot, and emits the G-code text with
// preamble, laser power, and postscript around it.
package carousel

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"carousel-go-migration/pkg/config"
	"carousel-go-migration/pkg/errors"
)

// SlotTable maps pad ids ("2-7") to the yaw angle in degrees that
// rotates the pad template onto that slot. Angles are normalized into
// [-180, 180) at construction.
type SlotTable map[string]float64

// NewSlotTable builds a table from raw angles, normalizing each into
// [-180, 180). Two pads landing on the same normalized yaw is a
// CONFIG_VALUE error: the machine cannot hold two pads at one angle.
// Within a slot group the raw angle must strictly decrease as the
// slot index grows, matching the clockwise slot layout around the rim.
func NewSlotTable(angles map[string]float64) (SlotTable, error) {
	if err := checkSlotOrder(angles); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(angles))
	for id := range angles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	table := make(SlotTable, len(angles))
	seen := make(map[float64]string, len(angles))
	for _, id := range ids {
		yaw := NormalizeAngle(angles[id])
		if prev, ok := seen[yaw]; ok {
			return nil, errors.New(errors.ErrConfigValue,
				fmt.Sprintf("pads '%s' and '%s' share yaw angle %.2f", prev, id, yaw)).
				SetOption(id)
		}
		seen[yaw] = id
		table[id] = yaw
	}
	return table, nil
}

// padIndex splits a "group-slot" pad id into its numeric parts. Ids
// that do not follow the numeric scheme report ok=false and are
// exempt from ordering checks.
func padIndex(id string) (group, slot int, ok bool) {
	dash := strings.IndexByte(id, '-')
	if dash <= 0 {
		return 0, 0, false
	}
	g, errG := strconv.Atoi(id[:dash])
	s, errS := strconv.Atoi(id[dash+1:])
	if errG != nil || errS != nil {
		return 0, 0, false
	}
	return g, s, true
}

// checkSlotOrder verifies that raw yaw angles strictly decrease with
// the slot index inside each group.
func checkSlotOrder(angles map[string]float64) error {
	groups := make(map[int][]string)
	for id := range angles {
		g, _, ok := padIndex(id)
		if !ok {
			continue
		}
		groups[g] = append(groups[g], id)
	}

	for _, ids := range groups {
		sort.Slice(ids, func(i, j int) bool {
			_, si, _ := padIndex(ids[i])
			_, sj, _ := padIndex(ids[j])
			return si < sj
		})
		for i := 1; i < len(ids); i++ {
			prev, curr := ids[i-1], ids[i]
			if angles[curr] >= angles[prev] {
				return errors.New(errors.ErrConfigValue,
					fmt.Sprintf("pad '%s' yaw %.2f does not decrease after '%s' (%.2f)",
						curr, angles[curr], prev, angles[prev])).
					SetOption(curr)
			}
		}
	}
	return nil
}

// SlotTableFromSection reads a table from a config section where every
// option is a pad id and its value is the yaw angle in degrees.
func SlotTableFromSection(sec *config.Section) (SlotTable, error) {
	angles := make(map[string]float64, len(sec.OptionNames()))
	for _, id := range sec.OptionNames() {
		yaw, err := sec.GetFloat(id)
		if err != nil {
			return nil, err
		}
		angles[id] = yaw
	}
	return NewSlotTable(angles)
}

// NormalizeAngle wraps an angle in degrees into [-180, 180).
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < -180 {
		a += 360
	} else if a >= 180 {
		a -= 360
	}
	return a
}

// Yaw looks up a pad's yaw angle.
func (t SlotTable) Yaw(pad string) (float64, bool) {
	yaw, ok := t[pad]
	return yaw, ok
}

// Pads returns the table's pad ids in sorted order.
func (t SlotTable) Pads() []string {
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// defaultYaw is the production carousel layout: three groups of 16
// pads around the rim plus the "0-0" home slot. Group 3 angles run
// past -180 and are normalized at construction.
var defaultYaw = map[string]float64{
	"0-0": 0.00,
	"1-1": 85.25, "1-2": 78.75, "1-3": 71.25, "1-4": 63.75,
	"1-5": 56.25, "1-6": 48.75, "1-7": 41.25, "1-8": 33.75,
	"1-9": 26.25, "1-10": 18.75, "1-11": 11.25, "1-12": 3.75,
	"1-13": -3.75, "1-14": -11.25, "1-15": -18.75, "1-16": -25.25,
	"2-1": -34.75, "2-2": -41.25, "2-3": -48.75, "2-4": -56.25,
	"2-5": -63.75, "2-6": -71.25, "2-7": -78.75, "2-8": -86.25,
	"2-9": -93.75, "2-10": -101.25, "2-11": -108.75, "2-12": -116.25,
	"2-13": -123.75, "2-14": -131.25, "2-15": -138.75, "2-16": -145.25,
	"3-1": -154.75, "3-2": -161.25, "3-3": -168.75, "3-4": -176.25,
	"3-5": -183.75, "3-6": -191.25, "3-7": -198.75, "3-8": -206.25,
	"3-9": -213.75, "3-10": -221.25, "3-11": -228.75, "3-12": -236.25,
	"3-13": -243.75, "3-14": -251.25, "3-15": -258.75, "3-16": -265.25,
}

// DefaultSlotTable returns the 48-slot production carousel layout.
func DefaultSlotTable() SlotTable {
	table, err := NewSlotTable(defaultYaw)
	if err != nil {
		panic(err)
	}
	return table
}
