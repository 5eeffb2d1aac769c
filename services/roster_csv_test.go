package services

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"league-night-system/models"
)

func TestParseRosterCSV(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantRecords  int
		wantRejected []int
		wantErr      error
	}{
		{
			name:        "Header and valid rows",
			input:       "name,gender,skill\nAna Lopez,Gal,7\nben ortiz,guy,3\n",
			wantRecords: 2,
		},
		{
			name:        "No header",
			input:       "Ana,Gal,7\n",
			wantRecords: 1,
		},
		{
			name:         "Invalid rows dropped and reported",
			input:        "name,gender,skill\nAna,Gal,7\nBen,Other,5\nCy,Guy,eleven\nDee,Gal,0\nEd,Guy\n",
			wantRecords:  1,
			wantRejected: []int{3, 4, 5, 6},
		},
		{
			name:        "Blank lines skipped",
			input:       "Ana,Gal,7\n,,\nBen,Guy,5\n",
			wantRecords: 2,
		},
		{
			name:         "No valid rows",
			input:        "name,gender,skill\nBen,Other,5\n",
			wantRejected: []int{2},
			wantErr:      ErrValidation,
		},
		{
			name:    "Empty file",
			input:   "",
			wantErr: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, rejected, err := ParseRosterCSV(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseRosterCSV() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("ParseRosterCSV() unexpected error = %v", err)
			}
			if len(records) != tt.wantRecords {
				t.Errorf("got %d records, want %d", len(records), tt.wantRecords)
			}
			if len(rejected) != len(tt.wantRejected) {
				t.Fatalf("got %d rejections (%+v), want %d", len(rejected), rejected, len(tt.wantRejected))
			}
			for i, line := range tt.wantRejected {
				if rejected[i].Line != line {
					t.Errorf("rejection %d line = %d, want %d", i, rejected[i].Line, line)
				}
			}
		})
	}
}

func TestParseRosterCSV_NormalizesNames(t *testing.T) {
	records, _, err := ParseRosterCSV(strings.NewReader("  ben   ORTIZ ,GUY, 3\n"))
	if err != nil {
		t.Fatalf("ParseRosterCSV() error = %v", err)
	}
	if records[0].Name != "Ben Ortiz" || records[0].Gender != models.GenderGuy || records[0].Skill != 3 {
		t.Errorf("record = %+v", records[0])
	}
}

func TestWriteRosterCSV_ReadsBack(t *testing.T) {
	players := []models.Player{
		{Name: "Ana Lopez", Gender: models.GenderGal, Skill: 7},
		{Name: "Ben Ortiz", Gender: models.GenderGuy, Skill: 3},
	}
	var buf bytes.Buffer
	if err := WriteRosterCSV(&buf, players); err != nil {
		t.Fatalf("WriteRosterCSV() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "name,gender,skill\n") {
		t.Errorf("missing header: %q", buf.String())
	}

	records, rejected, err := ParseRosterCSV(&buf)
	if err != nil || len(rejected) != 0 || len(records) != 2 {
		t.Fatalf("ParseRosterCSV() = %v, %v, %v", records, rejected, err)
	}
}
