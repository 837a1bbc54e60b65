// Package report summarizes records by region.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/ssargent/geostore/pkg/codec"
)

// RegionBoundary holds the extreme records of one region
type RegionBoundary struct {
	Region       string        `json:"region"`
	Records      int           `json:"records"`
	Easternmost  *codec.Record `json:"easternmost"`
	Westernmost  *codec.Record `json:"westernmost"`
	Northernmost *codec.Record `json:"northernmost"`
	Southernmost *codec.Record `json:"southernmost"`
}

// Boundaries groups records by region and finds, for each region, the
// records with the largest and smallest longitude and latitude. Ties keep
// the record seen first. The result is sorted by region name.
func Boundaries(records []*codec.Record) []RegionBoundary {
	byRegion := make(map[string]*RegionBoundary)

	for _, r := range records {
		if r == nil {
			continue
		}
		b, ok := byRegion[r.Region]
		if !ok {
			byRegion[r.Region] = &RegionBoundary{
				Region:       r.Region,
				Records:      1,
				Easternmost:  r,
				Westernmost:  r,
				Northernmost: r,
				Southernmost: r,
			}
			continue
		}

		b.Records++
		if r.Longitude > b.Easternmost.Longitude {
			b.Easternmost = r
		}
		if r.Longitude < b.Westernmost.Longitude {
			b.Westernmost = r
		}
		if r.Latitude > b.Northernmost.Latitude {
			b.Northernmost = r
		}
		if r.Latitude < b.Southernmost.Latitude {
			b.Southernmost = r
		}
	}

	out := make([]RegionBoundary, 0, len(byRegion))
	for _, b := range byRegion {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Region < out[j].Region })
	return out
}

// WriteTable writes boundaries as a pipe separated table, one region per row
func WriteTable(w io.Writer, boundaries []RegionBoundary) error {
	header := "Region | Easternmost | Westernmost | Northernmost | Southernmost"
	if _, err := fmt.Fprintf(w, "%s\n%s\n", header, dashes(len(header))); err != nil {
		return err
	}

	for _, b := range boundaries {
		_, err := fmt.Fprintf(w, "%s | %s | %s | %s | %s\n",
			b.Region,
			cell(b.Easternmost),
			cell(b.Westernmost),
			cell(b.Northernmost),
			cell(b.Southernmost))
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes boundaries as an indented JSON array
func WriteJSON(w io.Writer, boundaries []RegionBoundary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(boundaries)
}

func cell(r *codec.Record) string {
	return fmt.Sprintf("%s (%s)", r.Key, r.PlaceLabel)
}

func dashes(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '-'
	}
	return string(b)
}
