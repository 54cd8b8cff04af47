package output

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/law-makers/marketscan/pkg/models"
)

// TimestampLayout is how capturedAt is rendered in tabular output
const TimestampLayout = "2006-01-02 15:04:05"

// CSVHeader is the column order of the CSV export
var CSVHeader = []string{"name", "price", "url", "capturedAt"}

// WriteCSV writes the dataset with a header row, one row per record
func WriteCSV(w io.Writer, ds *models.Dataset) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range ds.Records() {
		row := []string{r.Name, r.Price, r.URL, r.CapturedAt.Format(TimestampLayout)}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// SaveCSV writes the dataset to a CSV file. Returns an error on failure.
func SaveCSV(ds *models.Dataset, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	if err := WriteCSV(file, ds); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
