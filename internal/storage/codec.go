package storage

import (
	"encoding/json"
	"errors"

	"athanor/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeMolecule(m model.Molecule) ([]byte, error) {
	return json.Marshal(m)
}

func DecodeMolecule(data []byte) (model.Molecule, error) {
	var molecule model.Molecule
	if err := json.Unmarshal(data, &molecule); err != nil {
		return model.Molecule{}, err
	}
	if err := checkVersion(molecule.VersionedRecord); err != nil {
		return model.Molecule{}, err
	}
	return molecule, nil
}

func EncodeRun(r model.RunRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func EncodeObjectiveSummary(s model.ObjectiveSummary) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeObjectiveSummary(data []byte) (model.ObjectiveSummary, error) {
	var summary model.ObjectiveSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return model.ObjectiveSummary{}, err
	}
	if err := checkVersion(summary.VersionedRecord); err != nil {
		return model.ObjectiveSummary{}, err
	}
	return summary, nil
}

func EncodeFitnessHistory(history []model.GenerationStat) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeFitnessHistory(data []byte) ([]model.GenerationStat, error) {
	var history []model.GenerationStat
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func EncodeGenerationDiagnostics(diagnostics []model.GenerationDiagnostics) ([]byte, error) {
	return json.Marshal(diagnostics)
}

func DecodeGenerationDiagnostics(data []byte) ([]model.GenerationDiagnostics, error) {
	var diagnostics []model.GenerationDiagnostics
	if err := json.Unmarshal(data, &diagnostics); err != nil {
		return nil, err
	}
	return diagnostics, nil
}

func EncodeSpeciesHistory(history []model.SpeciesGeneration) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeSpeciesHistory(data []byte) ([]model.SpeciesGeneration, error) {
	var history []model.SpeciesGeneration
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func EncodeTopMolecules(top []model.TopMoleculeRecord) ([]byte, error) {
	return json.Marshal(top)
}

func DecodeTopMolecules(data []byte) ([]model.TopMoleculeRecord, error) {
	var top []model.TopMoleculeRecord
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}
	return top, nil
}

func EncodeLineage(records []model.LineageRecord) ([]byte, error) {
	return json.Marshal(records)
}

func DecodeLineage(data []byte) ([]model.LineageRecord, error) {
	var records []model.LineageRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
