package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/tealeg/xlsx/v2"

	"krjobs-scraper/internal/dedup"
	"krjobs-scraper/internal/models"
)

// LocalStorage persists postings to a single flat file under dir:
// job_postings.csv (one table) or job_postings.xlsx (one sheet per site).
type LocalStorage struct {
	dir    string
	format string

	identities mapset.Set[string] //nil until loaded, kept in sync by Save
}

func NewLocal(dir, format string) (*LocalStorage, error) {
	format = strings.ToLower(format)
	if format != "csv" && format != "xlsx" {
		return nil, &StorageError{Op: "init", Err: fmt.Errorf("unsupported format %q", format)}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &StorageError{Op: "init", Err: err}
	}
	return &LocalStorage{dir: dir, format: format}, nil
}

// FilePath is the main data file location.
func (s *LocalStorage) FilePath() string {
	return filepath.Join(s.dir, "job_postings."+s.format)
}

func (s *LocalStorage) LoadExistingIdentities(ctx context.Context) (mapset.Set[string], error) {
	if s.identities != nil {
		return s.identities, nil
	}

	set := mapset.NewSet[string]()
	rows, err := s.readAllRows()
	if err != nil {
		return nil, &StorageError{Op: "load identities", Err: err}
	}
	for _, row := range rows {
		if len(row) > 0 && row[0] != "" {
			set.Add(row[0])
		}
	}

	s.identities = set
	log.Printf("📋 Loaded %d existing URLs from %s", set.Cardinality(), s.FilePath())
	return set, nil
}

func (s *LocalStorage) FilterNew(ctx context.Context, postings []*models.JobPosting) ([]*models.JobPosting, error) {
	return dedup.NewFilter(s).FilterNew(ctx, postings)
}

func (s *LocalStorage) Save(ctx context.Context, postings []*models.JobPosting, appendMode bool) (int, error) {
	if len(postings) == 0 {
		log.Println("ℹ️ No postings to save")
		return 0, nil
	}

	//dedup the batch itself, keep-last on URL
	merged := make(map[string][]string)
	var order []string
	for _, p := range postings {
		if _, seen := merged[p.URL]; !seen {
			order = append(order, p.URL)
		}
		merged[p.URL] = p.Record()
	}

	var err error
	if s.format == "csv" {
		err = s.saveCSV(merged, order, appendMode)
	} else {
		err = s.saveXLSX(postings, appendMode)
	}
	if err != nil {
		//the file may be partially written
		s.identities = nil
		return 0, &StorageError{Op: "save", Err: err}
	}

	if s.identities != nil {
		s.identities = s.identities.Union(dedup.Identities(postings))
	}

	log.Printf("💾 Saved %d postings to %s", len(order), s.FilePath())
	return len(order), nil
}

func (s *LocalStorage) saveCSV(merged map[string][]string, order []string, appendMode bool) error {
	rows := [][]string{}
	if appendMode {
		existing, err := s.readAllRows()
		if err != nil {
			return err
		}
		for _, row := range existing {
			if len(row) == 0 {
				continue
			}
			if _, replaced := merged[row[0]]; replaced {
				continue //new record wins on the identity key
			}
			rows = append(rows, row)
		}
	}
	for _, url := range order {
		rows = append(rows, merged[url])
	}
	return s.writeCSV(rows)
}

func (s *LocalStorage) saveXLSX(postings []*models.JobPosting, appendMode bool) error {
	sheets := map[string][][]string{}
	var sheetOrder []string
	if appendMode {
		existing, order, err := s.readSheets()
		if err != nil {
			return err
		}
		sheets = existing
		sheetOrder = order
	}

	//one sheet per source, merged keep-last on URL
	for _, p := range postings {
		rows, ok := sheets[p.Source]
		if !ok {
			sheetOrder = append(sheetOrder, p.Source)
		}
		replaced := false
		for i, row := range rows {
			if len(row) > 0 && row[0] == p.URL {
				rows[i] = p.Record()
				replaced = true
				break
			}
		}
		if !replaced {
			rows = append(rows, p.Record())
		}
		sheets[p.Source] = rows
	}

	file := xlsx.NewFile()
	for _, name := range sheetOrder {
		sheet, err := file.AddSheet(name)
		if err != nil {
			return fmt.Errorf("add sheet %q: %w", name, err)
		}
		writeRow(sheet, models.ColumnOrder())
		for _, row := range sheets[name] {
			writeRow(sheet, row)
		}
	}
	return file.Save(s.FilePath())
}

func writeRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

// LoadAll parses every stored row back into postings. Unparseable rows
// are logged and skipped.
func (s *LocalStorage) LoadAll(ctx context.Context) ([]*models.JobPosting, error) {
	rows, err := s.readAllRows()
	if err != nil {
		return nil, &StorageError{Op: "load", Err: err}
	}

	var postings []*models.JobPosting
	for _, row := range rows {
		p, err := models.FromRecord(row)
		if err != nil {
			log.Printf("⚠️ Skipping unparseable row: %v", err)
			continue
		}
		postings = append(postings, p)
	}
	return postings, nil
}

func (s *LocalStorage) Stats(ctx context.Context) (*Stats, error) {
	rows, err := s.readAllRows()
	if err != nil {
		return nil, &StorageError{Op: "stats", Err: err}
	}

	stats := &Stats{BySource: map[string]int{}, Location: s.FilePath()}
	sourceCol := len(models.ColumnOrder()) - 1
	for _, row := range rows {
		stats.Total++
		if len(row) > sourceCol {
			stats.BySource[row[sourceCol]]++
		}
	}
	return stats, nil
}

// Backup copies the data file next to itself with a timestamp suffix.
func (s *LocalStorage) Backup() (string, error) {
	src, err := os.Open(s.FilePath())
	if err != nil {
		return "", &StorageError{Op: "backup", Err: err}
	}
	defer src.Close()

	name := fmt.Sprintf("jobs_backup_%s.%s", time.Now().Format("20060102_150405"), s.format)
	path := filepath.Join(s.dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", &StorageError{Op: "backup", Err: err}
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", &StorageError{Op: "backup", Err: err}
	}
	log.Printf("💾 Backup created: %s", path)
	return path, nil
}

// readAllRows returns every data row (headers stripped) across the table
// or, for xlsx, across all sheets.
func (s *LocalStorage) readAllRows() ([][]string, error) {
	if s.format == "csv" {
		return s.readCSV()
	}
	sheets, order, err := s.readSheets()
	if err != nil {
		return nil, err
	}
	var rows [][]string
	for _, name := range order {
		rows = append(rows, sheets[name]...)
	}
	return rows, nil
}

func (s *LocalStorage) readCSV() ([][]string, error) {
	f, err := os.Open(s.FilePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	//strip BOM written for Excel compatibility
	if len(all[0]) > 0 {
		all[0][0] = strings.TrimPrefix(all[0][0], "\uFEFF")
	}
	return all[1:], nil //drop header
}

func (s *LocalStorage) writeCSV(rows [][]string) error {
	f, err := os.Create(s.FilePath())
	if err != nil {
		return err
	}
	defer f.Close()

	//UTF-8 BOM so Excel renders Korean text correctly
	if _, err := f.WriteString("\uFEFF"); err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(models.ColumnOrder()); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// readSheets returns sheet name -> data rows plus the sheet order.
func (s *LocalStorage) readSheets() (map[string][][]string, []string, error) {
	file, err := xlsx.OpenFile(s.FilePath())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][][]string{}, nil, nil
		}
		return nil, nil, err
	}

	sheets := map[string][][]string{}
	var order []string
	for _, sheet := range file.Sheets {
		var rows [][]string
		for i, row := range sheet.Rows {
			if i == 0 {
				continue //header
			}
			cells := make([]string, len(row.Cells))
			for j, cell := range row.Cells {
				cells[j] = cell.String()
			}
			rows = append(rows, cells)
		}
		sheets[sheet.Name] = rows
		order = append(order, sheet.Name)
	}
	return sheets, order, nil
}
