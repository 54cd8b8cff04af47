package output

import (
	"encoding/json"
	"os"

	"github.com/law-makers/marketscan/pkg/models"
)

// SaveJSON writes an indented JSON export of the dataset to filepath
func SaveJSON(ds *models.Dataset, filepath string) error {
	content, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, content, 0644)
}
