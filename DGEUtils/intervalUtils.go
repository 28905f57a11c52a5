package dgeutils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/biogo/store/interval"
)

//IntInterval Integer-specific intervals
type IntInterval struct {
	Start, End int
	UID        uintptr
}

//Overlap rule for two Interval
func (i IntInterval) Overlap(b interval.IntRange) bool {
	// Search for intersection
	return i.End >= b.Start && i.Start <= b.End
}

//ID Return the ID of Interval
func (i IntInterval) ID() uintptr {
	return i.UID
}

//Range Return the range of Interval
func (i IntInterval) Range() interval.IntRange {
	return interval.IntRange{Start: i.Start, End: i.End}
}

//String Return the string representation of Interval
func (i IntInterval) String() string {
	return fmt.Sprintf("(%d, %d) id: %d", i.Start, i.End, i.ID())
}

//Region genomic region (chromosome, start, end)
type Region struct {
	Chr        string
	Start, End int
}

//SplitToRegion Convert string split to region
func (region *Region) SplitToRegion(split []string) error {
	var err1, err2 error

	if len(split) < 3 {
		return fmt.Errorf("region %v should be <chromosome> <start> <stop>", split)
	}

	region.Start, err1 = strconv.Atoi(strings.TrimSpace(split[1]))
	region.End, err2 = strconv.Atoi(strings.TrimSpace(split[2]))

	if err1 != nil || err2 != nil {
		return fmt.Errorf("region %v: start and stop must be integers", split)
	}

	if region.End < region.Start {
		return fmt.Errorf("region %v: stop is before start", split)
	}

	region.Chr = NormalizeChr(split[0])

	return nil
}

/*NormalizeChr drop the "chr" prefix so that UCSC (chr1) and Ensembl (1)
chromosome names match */
func NormalizeChr(chr string) string {
	chr = strings.TrimSpace(chr)

	if len(chr) > 3 && strings.EqualFold(chr[:3], "chr") {
		return chr[3:]
	}

	return chr
}

/*LoadRegions load a bed file (chromosome, start, stop, ...). track, browser and
# lines are skipped */
func LoadRegions(fname string) ([]Region, error) {
	scanner, closer, err := ReturnReader(fname)

	if err != nil {
		return nil, err
	}

	defer CloseFile(closer)

	var regions []Region
	var region Region
	var lineNb int

	for scanner.Scan() {
		lineNb++
		line := scanner.Text()

		if strings.TrimSpace(line) == "" || line[0] == '#' ||
			strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}

		if err = region.SplitToRegion(strings.Fields(line)); err != nil {
			return nil, &FormatError{File: fname, Line: lineNb, Text: line, Reason: err.Error()}
		}

		regions = append(regions, region)
	}

	if err = scanner.Err(); err != nil {
		return nil, &IOError{Op: "read", Path: fname, Err: err}
	}

	return regions, nil
}

/*RegionIndex chromosome -> interval tree of regions */
type RegionIndex struct {
	chrintervaldict map[string]*interval.IntTree
	regions         []Region
}

/*NewRegionIndex create the interval trees of the regions */
func NewRegionIndex(regions []Region) (*RegionIndex, error) {
	index := &RegionIndex{
		chrintervaldict: make(map[string]*interval.IntTree),
		regions:         regions,
	}

	for pos, region := range regions {
		tree, isInside := index.chrintervaldict[region.Chr]

		if !isInside {
			tree = &interval.IntTree{}
			index.chrintervaldict[region.Chr] = tree
		}

		inter := IntInterval{Start: region.Start, End: region.End, UID: uintptr(pos)}

		if err := tree.Insert(inter, false); err != nil {
			return nil, fmt.Errorf("cannot index region %s:%d-%d: %w",
				region.Chr, region.Start, region.End, err)
		}
	}

	return index, nil
}

/*Overlaps true if chr:start-end intersects at least one indexed region */
func (r *RegionIndex) Overlaps(chr string, start, end int) bool {
	tree, isInside := r.chrintervaldict[NormalizeChr(chr)]

	if !isInside {
		return false
	}

	return len(tree.Get(IntInterval{Start: start, End: end})) > 0
}

/*Len number of indexed regions */
func (r *RegionIndex) Len() int {
	return len(r.regions)
}
