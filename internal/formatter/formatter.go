// package formatter provides functions to export session tune logs to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/seisiun/tunelog/internal/models"
	"github.com/seisiun/tunelog/internal/shared"
)

// ExportToCSV converts a SessionExport to CSV format with columns: Set, Position, Tune, Type, Setting, TuneID
func ExportToCSV(export *models.SessionExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Set", "Position", "Tune", "Type", "Setting", "TuneID"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, set := range export.Doc {
		for j, pill := range set {
			record := []string{
				strconv.Itoa(i + 1),
				strconv.Itoa(j + 1),
				pill.TuneName,
				pill.TuneType,
				pill.Setting,
				pill.TuneID,
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a SessionExport to Markdown format, one numbered
// set per line in the conventional slash-separated set-list notation.
func ExportToMarkdown(export *models.SessionExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", export.Name))

	if export.OccurredOn != "" {
		buf.WriteString(fmt.Sprintf("**Date**: %s\n", export.OccurredOn))
	}
	buf.WriteString(fmt.Sprintf("**Sets**: %d\n", export.Sets))
	buf.WriteString(fmt.Sprintf("**Tunes**: %d\n\n", export.Tunes))

	buf.WriteString("## Sets\n\n")
	for i, set := range export.Doc {
		names := make([]string, len(set))
		for j, pill := range set {
			names[j] = pill.TuneName
			if pill.TuneType != "" {
				names[j] = fmt.Sprintf("%s (%s)", pill.TuneName, pill.TuneType)
			}
		}
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, strings.Join(names, " / ")))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a SessionExport to plain text, one set per line with
// comma-separated tune names. The body matches the plain-text clipboard
// format, so exported lines can be pasted straight back into an editor.
func ExportToText(export *models.SessionExport) ([]byte, error) {
	var buf bytes.Buffer

	for _, set := range export.Doc {
		names := make([]string, len(set))
		for j, pill := range set {
			names[j] = pill.TuneName
		}
		buf.WriteString(strings.Join(names, ", "))
		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}

// ToMetadataJSON generates a JSON representation of session metadata (without the tune log)
func ToMetadataJSON(export *models.SessionExport) ([]byte, error) {
	return shared.MarshalJSON(export, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TunesFile    string
	MetadataFile string
}

// WriteCSVExport exports a session to CSV format with accompanying metadata JSON file.
//
// Defaults to the session name as the base filename & creates {base}_tunes.csv and {base}_metadata.json
func WriteCSVExport(export *models.SessionExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = export.Name
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tunesFile := baseFilepath + "_tunes.csv"
	if err := os.WriteFile(tunesFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		TunesFile:    tunesFile,
		MetadataFile: metadataFile,
	}, nil
}

// WriteMarkdownExport exports a session to Markdown in a dedicated directory.
//
// Directory name defaults to the session name. Creates {dir}/README.md.
func WriteMarkdownExport(export *models.SessionExport, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = export.Name
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return mdFile, nil
}

// WriteTextExport exports a session to plain text format.
//
// Defaults to {name}_sets.txt as the filename.
func WriteTextExport(export *models.SessionExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_sets.txt", export.Name)
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
