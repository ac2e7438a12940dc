package store

import (
	"time"

	"github.com/sourceplane/pressplan/internal/model"
)

// PlanRecord is a stored plan with the request it was built from
type PlanRecord struct {
	ID                   string `gorm:"type:varchar(36);primaryKey"`
	ParentID             string `gorm:"type:varchar(36);index"`
	Name                 string `gorm:"type:varchar(255)"`
	Mode                 string `gorm:"type:varchar(16)"`
	ShiftDurationMinutes int
	ReplannedAt          *int
	TaskCount            int
	PartialParts         int
	Spec                 string       `gorm:"type:text"`
	Parts                string       `gorm:"type:text"`
	Summary              string       `gorm:"type:text"`
	Request              string       `gorm:"type:text"`
	Tasks                []TaskRecord `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
	CreatedAt            time.Time    `gorm:"index"`
}

// TableName keeps the table name stable across backends.
func (PlanRecord) TableName() string { return "plans" }

// TaskRecord is one task row of a stored plan
type TaskRecord struct {
	ID            uint   `gorm:"primaryKey"`
	PlanID        string `gorm:"type:varchar(36);index"`
	Seq           int
	PartName      string `gorm:"type:varchar(255);index"`
	OperationName string `gorm:"type:varchar(255)"`
	MachineName   string `gorm:"type:varchar(255);index"`
	Quantity      int
	StartTime     int
	EndTime       int
	Kind          string `gorm:"type:varchar(32)"`
}

// TableName keeps the table name stable across backends.
func (TaskRecord) TableName() string { return "plan_tasks" }

func (t TaskRecord) toTask() model.Task {
	return model.Task{
		PartName:      t.PartName,
		OperationName: t.OperationName,
		MachineName:   t.MachineName,
		Quantity:      t.Quantity,
		StartTime:     t.StartTime,
		EndTime:       t.EndTime,
		Kind:          model.TaskKind(t.Kind),
	}
}

func taskRecord(planID string, seq int, t model.Task) TaskRecord {
	return TaskRecord{
		PlanID:        planID,
		Seq:           seq,
		PartName:      t.PartName,
		OperationName: t.OperationName,
		MachineName:   t.MachineName,
		Quantity:      t.Quantity,
		StartTime:     t.StartTime,
		EndTime:       t.EndTime,
		Kind:          string(t.Kind),
	}
}
