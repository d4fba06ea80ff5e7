package model

import (
	"encoding/json"
	"io"

	probregErrors "github.com/ezoic/probreg/pkg/errors"
)

// Snapshot is the serialized form of a model configuration: the parameter
// mapping plus a fit-completed flag. Fit state internals are serialized by
// whatever format the concrete model defines, not by this core.
type Snapshot struct {
	Name          string             `json:"name"`
	FormatVersion string             `json:"format_version"`
	Params        map[string]float64 `json:"params"`
	Fitted        bool               `json:"fitted"`
}

// snapshotFormatVersion is bumped on incompatible Snapshot changes.
const snapshotFormatVersion = "1.0"

// Save writes the fit model's configuration snapshot as indented JSON.
func (fm *FitModel[F]) Save(w io.Writer) (err error) {
	defer probregErrors.Recover(&err, "FitModel.Save")

	snapshot := Snapshot{
		Name:          fm.estimator.Name(),
		FormatVersion: snapshotFormatVersion,
		Params:        fm.estimator.Params().Values(),
		Fitted:        true,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if encodeErr := encoder.Encode(&snapshot); encodeErr != nil {
		return probregErrors.Wrap(encodeErr, "encoding model snapshot")
	}
	return nil
}

// LoadSnapshot reads a configuration snapshot previously written by Save.
func LoadSnapshot(r io.Reader) (*Snapshot, error) {
	var snapshot Snapshot
	if err := json.NewDecoder(r).Decode(&snapshot); err != nil {
		return nil, probregErrors.Wrap(err, "decoding model snapshot")
	}
	return &snapshot, nil
}

// Restore applies a snapshot's parameters to the estimator's model. It
// fails if the snapshot was taken from a different model.
func (e *Estimator[F]) Restore(snapshot *Snapshot) error {
	if snapshot.Name != e.Name() {
		return probregErrors.Newf("model name mismatch: snapshot %q, model %q", snapshot.Name, e.Name())
	}
	return e.Params().SetValues(snapshot.Params)
}
