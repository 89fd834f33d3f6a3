package gtfs

import (
	"archive/zip"
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

// Schedule is the subset of a GTFS static feed the rules operate on. Records
// are read-only once parsed.
type Schedule struct {
	Agencies  []Agency
	Stops     []Stop
	Routes    []Route
	Trips     []Trip
	StopTimes []StopTime
}

func init() {
	// Allow us to ignore those naughty records that have missing columns
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.FieldsPerRecord = -1
		r.LazyQuotes = true
		return r
	})
}

func ParseZip(path string) (*Schedule, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	schedule := &Schedule{}
	if err := schedule.ParseFile(file); err != nil {
		return nil, err
	}

	return schedule, nil
}

// ParseFile reads a zipped GTFS feed. Files the rules do not use are skipped.
func (gtfs *Schedule) ParseFile(reader io.Reader) error {
	fileMap := map[string]interface{}{
		"agency.txt":     &gtfs.Agencies,
		"stops.txt":      &gtfs.Stops,
		"routes.txt":     &gtfs.Routes,
		"trips.txt":      &gtfs.Trips,
		"stop_times.txt": &gtfs.StopTimes,
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	archive, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return err
	}

	for _, zipFile := range archive.File {
		fileName := filepath.Base(zipFile.Name)

		destination, exists := fileMap[fileName]
		if !exists {
			log.Debug().Str("file", fileName).Msg("Skipping gtfs file")
			continue
		}

		log.Info().Str("file", fileName).Msg("Loading file")

		if err := unmarshalFile(zipFile, destination); err != nil {
			log.Error().Str("file", fileName).Err(err).Msg("Failed to parse csv file")
			return err
		}
	}

	log.Info().
		Int("routes", len(gtfs.Routes)).
		Int("trips", len(gtfs.Trips)).
		Int("stops", len(gtfs.Stops)).
		Msg("Parsed gtfs schedule")

	return nil
}

func unmarshalFile(zipFile *zip.File, destination interface{}) error {
	file, err := zipFile.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	return gocsv.Unmarshal(skipByteOrderMark(file), destination)
}

func skipByteOrderMark(reader io.Reader) io.Reader {
	buffered := bufio.NewReader(reader)

	if prefix, err := buffered.Peek(3); err == nil && bytes.Equal(prefix, []byte{0xEF, 0xBB, 0xBF}) {
		buffered.Discard(3)
	}

	return buffered
}
