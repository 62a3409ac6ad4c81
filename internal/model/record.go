package model

// Kind discriminates the tracked entity types.
type Kind string

const (
	KindBackupSnapshot Kind = "backup_snapshot"
	KindRecoveryDrill  Kind = "recovery_drill"
)

// Record is a tagged union over the tracked entities. Exactly one of
// Snapshot or Drill is set, selected by Kind.
type Record struct {
	Kind     Kind
	Snapshot *BackupSnapshot
	Drill    *RecoveryDrill
}

func SnapshotRecord(s *BackupSnapshot) Record {
	return Record{Kind: KindBackupSnapshot, Snapshot: s}
}

func DrillRecord(d *RecoveryDrill) Record {
	return Record{Kind: KindRecoveryDrill, Drill: d}
}

// Key returns the natural key of the wrapped entity.
func (r Record) Key() string {
	switch r.Kind {
	case KindBackupSnapshot:
		if r.Snapshot != nil {
			return r.Snapshot.Key
		}
	case KindRecoveryDrill:
		if r.Drill != nil {
			return r.Drill.Key
		}
	}
	return ""
}

// Status returns the lifecycle status of the wrapped entity.
func (r Record) Status() string {
	switch r.Kind {
	case KindBackupSnapshot:
		if r.Snapshot != nil {
			return r.Snapshot.Status
		}
	case KindRecoveryDrill:
		if r.Drill != nil {
			return r.Drill.Status
		}
	}
	return ""
}

// Environment returns the environment of the wrapped entity.
func (r Record) Environment() string {
	switch r.Kind {
	case KindBackupSnapshot:
		if r.Snapshot != nil {
			return r.Snapshot.Environment
		}
	case KindRecoveryDrill:
		if r.Drill != nil {
			return r.Drill.Environment
		}
	}
	return ""
}

// Public serializes the wrapped entity with its kind-specific mapping.
func (r Record) Public() any {
	switch r.Kind {
	case KindBackupSnapshot:
		if r.Snapshot != nil {
			return PublicSnapshot(r.Snapshot)
		}
	case KindRecoveryDrill:
		if r.Drill != nil {
			return PublicDrill(r.Drill)
		}
	}
	return nil
}
