package drctl

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Plan declares the snapshots and drills a deployment expects to exist.
type Plan struct {
	APIURL    string        `yaml:"api_url"`
	APIKey    string        `yaml:"api_key"`
	Snapshots []SnapshotDef `yaml:"snapshots"`
	Drills    []DrillDef    `yaml:"drills"`
}

type SnapshotDef struct {
	Key                string         `yaml:"key"`
	Type               string         `yaml:"type"`
	Source             string         `yaml:"source"`
	Environment        string         `yaml:"environment"`
	Region             string         `yaml:"region"`
	RetentionDays      int            `yaml:"retention_days"`
	StorageLocationKey string         `yaml:"storage_location_key"`
	StorageClass       string         `yaml:"storage_class"`
	StorageURI         string         `yaml:"storage_uri"`
	Notes              string         `yaml:"notes"`
	DatasetScope       map[string]any `yaml:"dataset_scope"`
	Metadata           map[string]any `yaml:"metadata"`
}

type DrillDef struct {
	Key         string         `yaml:"key"`
	Name        string         `yaml:"name"`
	Scenario    string         `yaml:"scenario"`
	Environment string         `yaml:"environment"`
	Region      string         `yaml:"region"`
	RTOMinutes  int            `yaml:"rto_minutes"`
	RPOMinutes  float64        `yaml:"rpo_minutes"`
	Summary     string         `yaml:"summary"`
	EvidenceURI string         `yaml:"evidence_uri"`
	Metadata    map[string]any `yaml:"metadata"`
}

// LoadPlan reads and checks a YAML plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if err := plan.validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (p *Plan) validate() error {
	seen := map[string]bool{}
	for i, s := range p.Snapshots {
		if s.Key == "" || s.Source == "" || s.Environment == "" {
			return fmt.Errorf("snapshots[%d]: key, source and environment are required", i)
		}
		if seen["s:"+s.Key] {
			return fmt.Errorf("snapshots[%d]: duplicate key %q", i, s.Key)
		}
		seen["s:"+s.Key] = true
	}
	for i, d := range p.Drills {
		if d.Key == "" || d.Name == "" || d.Environment == "" {
			return fmt.Errorf("drills[%d]: key, name and environment are required", i)
		}
		if seen["d:"+d.Key] {
			return fmt.Errorf("drills[%d]: duplicate key %q", i, d.Key)
		}
		seen["d:"+d.Key] = true
	}
	return nil
}

func (s SnapshotDef) body() map[string]any {
	body := map[string]any{
		"snapshotKey": s.Key,
		"source":      s.Source,
		"environment": s.Environment,
	}
	setString(body, "backupType", s.Type)
	setString(body, "region", s.Region)
	setString(body, "storageLocationKey", s.StorageLocationKey)
	setString(body, "storageClass", s.StorageClass)
	setString(body, "storageUri", s.StorageURI)
	setString(body, "notes", s.Notes)
	if s.RetentionDays > 0 {
		body["retentionDays"] = s.RetentionDays
	}
	if len(s.DatasetScope) > 0 {
		body["datasetScope"] = s.DatasetScope
	}
	if len(s.Metadata) > 0 {
		body["metadata"] = s.Metadata
	}
	return body
}

func (d DrillDef) body() map[string]any {
	body := map[string]any{
		"drillKey":    d.Key,
		"name":        d.Name,
		"environment": d.Environment,
	}
	setString(body, "scenario", d.Scenario)
	setString(body, "region", d.Region)
	setString(body, "summary", d.Summary)
	setString(body, "evidenceUri", d.EvidenceURI)
	if d.RTOMinutes > 0 {
		body["rtoMinutes"] = d.RTOMinutes
	}
	if d.RPOMinutes > 0 {
		body["rpoMinutes"] = d.RPOMinutes
	}
	if len(d.Metadata) > 0 {
		body["metadata"] = d.Metadata
	}
	return body
}

func setString(body map[string]any, key, value string) {
	if value != "" {
		body[key] = value
	}
}
