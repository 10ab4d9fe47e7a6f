// Package ingest loads ARGO profile data into the store: live fixes from a
// GDAC FTP index, and a generated sample fleet for offline demos.
package ingest

import (
	"bufio"
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/YashwanthKamireddi/Float-Deck/internal/geo"
	"github.com/YashwanthKamireddi/Float-Deck/internal/metrics"
	"github.com/YashwanthKamireddi/Float-Deck/internal/store"
)

const (
	DefaultGDACHost = "ftp.ifremer.fr:21"
	indexPath       = "/ifremer/argo/ar_index_global_prof.txt"
	indexDateLayout = "20060102150405"
)

// IndexRecord is one line of the GDAC profile index: a surface fix for one
// profile file. Index rows carry no per-depth measurements.
type IndexRecord struct {
	FloatID string
	Date    time.Time
	Lat     float64
	Lon     float64
	HasFix  bool
}

type GDACClient struct {
	host string
	path string
}

func NewGDACClient(host string) *GDACClient {
	if host == "" {
		host = DefaultGDACHost
	}
	return &GDACClient{host: host, path: indexPath}
}

// FetchIndex downloads and parses the global profile index, keeping at most
// limit records (0 = unlimited).
func (c *GDACClient) FetchIndex(limit int) ([]IndexRecord, error) {
	conn, err := ftp.Dial(c.host, ftp.DialWithTimeout(30*time.Second))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.host, err)
	}
	defer conn.Quit()

	if err := conn.Login("anonymous", "anonymous"); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	resp, err := conn.Retr(c.path)
	if err != nil {
		return nil, fmt.Errorf("retrieve %s: %w", c.path, err)
	}
	defer resp.Close()

	return parseIndex(resp, limit)
}

// parseIndex reads the CSV body of the GDAC index. Comment lines and the
// header are skipped; rows with unparsable dates are dropped, rows with
// unparsable or out-of-range coordinates keep the fix absent rather than
// coercing it to 0.
func parseIndex(r io.Reader, limit int) ([]IndexRecord, error) {
	var records []IndexRecord
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "file,") {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) < 4 {
			continue
		}

		floatID := floatIDFromPath(fields[0])
		if floatID == "" {
			continue
		}

		date, err := time.Parse(indexDateLayout, fields[1])
		if err != nil {
			continue
		}

		rec := IndexRecord{FloatID: floatID, Date: date.UTC()}
		lat, latErr := strconv.ParseFloat(fields[2], 64)
		lon, lonErr := strconv.ParseFloat(fields[3], 64)
		if latErr == nil && lonErr == nil && geo.ValidCoords(lat, lon) {
			rec.Lat = lat
			rec.Lon = lon
			rec.HasFix = true
		}

		records = append(records, rec)
		if limit > 0 && len(records) >= limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	return records, nil
}

// floatIDFromPath extracts the float ID from an index file path such as
// "aoml/13857/profiles/R13857_001.nc".
func floatIDFromPath(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

type Ingestor struct {
	store *store.Store
	gdac  *GDACClient
}

func NewIngestor(st *store.Store, gdac *GDACClient) *Ingestor {
	return &Ingestor{store: st, gdac: gdac}
}

// Run fetches the index and writes the records as surface fixes. Returns the
// number of rows written.
func (i *Ingestor) Run(limit int) (int, error) {
	records, err := i.gdac.FetchIndex(limit)
	if err != nil {
		return 0, fmt.Errorf("fetch index: %w", err)
	}

	rows := make([]store.ProfileRow, 0, len(records))
	for _, rec := range records {
		row := store.ProfileRow{
			FloatID:     rec.FloatID,
			ProfileDate: rec.Date,
			Pressure:    sql.NullFloat64{Float64: 0, Valid: true},
		}
		if rec.HasFix {
			row.Latitude = sql.NullFloat64{Float64: rec.Lat, Valid: true}
			row.Longitude = sql.NullFloat64{Float64: rec.Lon, Valid: true}
		}
		rows = append(rows, row)
	}

	if err := i.store.InsertProfileRows(rows); err != nil {
		return 0, fmt.Errorf("insert rows: %w", err)
	}
	metrics.ProfilesIngested.WithLabelValues("gdac").Add(float64(len(rows)))
	return len(rows), nil
}
