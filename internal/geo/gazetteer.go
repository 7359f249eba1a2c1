package geo

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"bankledger/internal/logger"
)

// Gazetteer is the offline place-name index: country code -> uppercased name
// variant -> canonical city name. Built once at startup, read-only afterwards,
// safe for concurrent use.
type Gazetteer struct {
	names map[string]map[string]string
	// sorted variant lists per country, for deterministic fuzzy scans
	sorted map[string][]string
}

// Column positions in the tab-delimited dataset (geonames layout).
const (
	colName        = 1
	colASCIIName   = 2
	colAlternates  = 3
	colCountryCode = 8
	minColumns     = 9
)

// maxVariantLen filters out overly long alternate names; those are noise
// (full postal phrases, slogans) and never appear in merchant strings.
const maxVariantLen = 40

// scanBufferSize must fit the longest dataset line; alternate-name lists run
// to tens of kilobytes for major cities.
const scanBufferSize = 1 << 20

// LoadGazetteer reads the place-name dataset from path. A load failure is
// fatal for the process: the resolver cannot run without it.
func LoadGazetteer(path string) (*Gazetteer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gazetteer: %w", err)
	}
	defer f.Close()
	return ReadGazetteer(f)
}

// ReadGazetteer builds a Gazetteer from tab-delimited records. Malformed rows
// are skipped individually and never abort the load.
func ReadGazetteer(r io.Reader) (*Gazetteer, error) {
	g := &Gazetteer{
		names:  make(map[string]map[string]string),
		sorted: make(map[string][]string),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), scanBufferSize)

	var rows, skipped int
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < minColumns {
			skipped++
			continue
		}

		country := strings.ToUpper(strings.TrimSpace(fields[colCountryCode]))
		name := strings.TrimSpace(fields[colName])
		if country == "" || name == "" {
			skipped++
			continue
		}

		canonical := strings.ToUpper(name)
		g.add(country, canonical, canonical)
		if ascii := strings.TrimSpace(fields[colASCIIName]); ascii != "" {
			g.add(country, strings.ToUpper(ascii), canonical)
		}
		for _, alt := range strings.Split(fields[colAlternates], ",") {
			alt = strings.TrimSpace(alt)
			if alt == "" || len(alt) > maxVariantLen {
				continue
			}
			g.add(country, strings.ToUpper(alt), canonical)
		}
		rows++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read gazetteer: %w", err)
	}

	for country, variants := range g.names {
		list := make([]string, 0, len(variants))
		for v := range variants {
			list = append(list, v)
		}
		sort.Strings(list)
		g.sorted[country] = list
	}

	logger.Default().Info("gazetteer_loaded",
		"rows", rows, "skipped", skipped, "countries", len(g.names))
	return g, nil
}

func (g *Gazetteer) add(country, variant, canonical string) {
	byName, ok := g.names[country]
	if !ok {
		byName = make(map[string]string)
		g.names[country] = byName
	}
	// First writer wins so the primary name's canonical form sticks.
	if _, exists := byName[variant]; !exists {
		byName[variant] = canonical
	}
}

// CityInCountry looks up an uppercased candidate exactly. It fails closed:
// a country absent from the dataset yields no match even for plausible names.
func (g *Gazetteer) CityInCountry(candidate, country string) (string, bool) {
	byName, ok := g.names[country]
	if !ok {
		return "", false
	}
	canonical, ok := byName[candidate]
	return canonical, ok
}

// HasCountry reports whether the dataset carries any places for the country.
func (g *Gazetteer) HasCountry(country string) bool {
	_, ok := g.names[country]
	return ok
}

func (g *Gazetteer) variants(country string) []string {
	return g.sorted[country]
}
