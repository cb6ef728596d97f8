// Package trackers implements Trackers, which cache data generated
// during experiments and save it to disk when an experiment finishes
package trackers

import (
	"encoding/gob"
	"fmt"
	"os"

	ts "github.com/samuelfneumann/gofurniture/timestep"
)

// Tracker caches experiment data each timestep and saves it to disk
// when the experiment ends
type Tracker interface {
	Track(t ts.TimeStep)
	Save()
}

// LoadData loads the data saved by a Tracker at the given file
func LoadData(filename string) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadData: could not open file %v: %w",
			filename, err)
	}
	defer file.Close()

	var data []float64
	dec := gob.NewDecoder(file)
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("loadData: could not decode data: %w", err)
	}

	return data, nil
}

// saveData encodes a slice of float64 to the given file
func saveData(filename string, data []float64) {
	file, err := os.Create(filename)
	if err != nil {
		panic(fmt.Sprintf("save: could not create file %v: %v", filename,
			err))
	}
	defer file.Close()

	enc := gob.NewEncoder(file)
	if err := enc.Encode(data); err != nil {
		panic(fmt.Sprintf("save: could not encode data: %v", err))
	}
}
