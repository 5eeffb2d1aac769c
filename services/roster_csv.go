package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"league-night-system/models"
	"league-night-system/utils"
)

// ImportRecord is one valid row of a roster sheet.
type ImportRecord struct {
	Name   string        `json:"name"`
	Gender models.Gender `json:"gender"`
	Skill  int           `json:"skill"`
}

// ImportRejection explains why a row was dropped.
type ImportRejection struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ParseRosterCSV reads name,gender,skill rows. A header row is skipped when
// its first cell is "name". Invalid rows are collected, not fatal; a sheet
// with no valid rows is a validation failure.
func ParseRosterCSV(r io.Reader) ([]ImportRecord, []ImportRejection, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading CSV: %v", ErrValidation, err)
	}

	var records []ImportRecord
	var rejected []ImportRejection
	for i, row := range rows {
		line := i + 1
		if i == 0 && len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "name") {
			continue
		}
		if isBlankRow(row) {
			continue
		}

		rec, err := parseRosterRow(row)
		if err != nil {
			rejected = append(rejected, ImportRejection{Line: line, Reason: err.Error()})
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, rejected, fmt.Errorf("%w: no valid roster rows", ErrValidation)
	}
	return records, rejected, nil
}

func parseRosterRow(row []string) (ImportRecord, error) {
	if len(row) < 3 {
		return ImportRecord{}, fmt.Errorf("expected name,gender,skill, got %d columns", len(row))
	}

	gender, err := models.ParseGender(row[1])
	if err != nil {
		return ImportRecord{}, err
	}
	skill, err := strconv.Atoi(strings.TrimSpace(row[2]))
	if err != nil {
		return ImportRecord{}, fmt.Errorf("skill %q is not an integer", row[2])
	}

	p := models.Player{Name: utils.NormalizeName(row[0]), Gender: gender, Skill: skill}
	if err := p.Validate(); err != nil {
		return ImportRecord{}, err
	}
	return ImportRecord{Name: p.Name, Gender: p.Gender, Skill: p.Skill}, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// WriteRosterCSV writes the roster in the same layout ParseRosterCSV reads.
func WriteRosterCSV(w io.Writer, players []models.Player) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"name", "gender", "skill"}); err != nil {
		return err
	}
	for _, p := range players {
		if err := writer.Write([]string{p.Name, string(p.Gender), strconv.Itoa(p.Skill)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
