/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/ssargent/wbin/pkg/codec"
	"github.com/ssargent/wbin/pkg/store"
)

func printHeader(w io.Writer, h codec.Header) {
	fmt.Fprintf(w, "Format: %s\n", string(h.Magic[:]))
	fmt.Fprintf(w, "Version: %d\n", h.Version)
	fmt.Fprintf(w, "Created: %s\n", h.Created().UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "Location: %s (%.4f, %.4f)\n", h.Location, h.Latitude, h.Longitude)
	fmt.Fprintf(w, "Records: %d\n", h.RecordCount)
}

// printEntries drains it to w as a table or as JSON lines and returns how
// many entries were written. A limit of zero prints everything.
func printEntries(w io.Writer, it store.EntryIterator, format string, limit int) (int, error) {
	defer it.Close()

	var (
		tw  *tabwriter.Writer
		enc *json.Encoder
	)
	switch format {
	case "json":
		enc = json.NewEncoder(w)
	case "table", "":
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tTIME\tCITY\tTEMP\tHUMIDITY\tPRESSURE\tWIND\tMAIN\tDESCRIPTION")
	default:
		return 0, fmt.Errorf("unknown output format %q (use table or json)", format)
	}

	n := 0
	for it.Next() {
		if limit > 0 && n == limit {
			break
		}
		e := it.Entry()
		if enc != nil {
			if err := enc.Encode(e); err != nil {
				return n, err
			}
		} else {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%d\t%d\t%.1f\t%s\t%s\n",
				it.Index(), e.Time().UTC().Format("2006-01-02 15:04:05"), e.CityName, e.Temp,
				e.Humidity, e.Pressure, e.WindSpeed, e.WeatherMain, e.WeatherDescription)
		}
		n++
	}
	if err := it.Err(); err != nil {
		return n, err
	}
	if tw != nil {
		if err := tw.Flush(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func printSingle(w io.Writer, index uint32, e *codec.DataEntry, format string) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(e)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "\nRecord:\t%d\n", index)
	fmt.Fprintf(tw, "Time:\t%s (%s)\n", e.Time().UTC().Format("2006-01-02 15:04:05"), e.DtISO)
	fmt.Fprintf(tw, "City:\t%s (%.4f, %.4f)\n", e.CityName, e.Lat, e.Lon)
	fmt.Fprintf(tw, "Temperature:\t%.2f (feels like %.2f, min %.2f, max %.2f)\n", e.Temp, e.FeelsLike, e.TempMin, e.TempMax)
	fmt.Fprintf(tw, "Dew point:\t%.2f\n", e.DewPoint)
	fmt.Fprintf(tw, "Pressure:\t%d (sea %d, ground %d)\n", e.Pressure, e.SeaLevel, e.GroundLevel)
	fmt.Fprintf(tw, "Humidity:\t%d\n", e.Humidity)
	fmt.Fprintf(tw, "Visibility:\t%d\n", e.Visibility)
	fmt.Fprintf(tw, "Wind:\t%.1f at %d, gust %.1f\n", e.WindSpeed, e.WindDeg, e.WindGust)
	fmt.Fprintf(tw, "Rain:\t%.2f (1h) %.2f (3h)\n", e.Rain1h, e.Rain3h)
	fmt.Fprintf(tw, "Snow:\t%.2f (1h) %.2f (3h)\n", e.Snow1h, e.Snow3h)
	fmt.Fprintf(tw, "Clouds:\t%d\n", e.Clouds)
	fmt.Fprintf(tw, "Weather:\t%d %s: %s [%s]\n", e.WeatherID, e.WeatherMain, e.WeatherDescription, e.WeatherIcon)
	return tw.Flush()
}
