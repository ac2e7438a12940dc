package model

// MachineUtilization is the busy/idle split of one machine over the shift
type MachineUtilization struct {
	MachineName    string  `yaml:"machineName" json:"machineName"`
	Capacity       int     `yaml:"capacity" json:"capacity"`
	TotalTime      int     `yaml:"totalTime" json:"totalTime"`
	BusyTime       int     `yaml:"busyTime" json:"busyTime"`
	IdleTime       int     `yaml:"idleTime" json:"idleTime"`
	UtilizationPct float64 `yaml:"utilizationPercentage" json:"utilizationPercentage"`
}

// PartProduction compares the planned quantity of a part with its target
type PartProduction struct {
	PartName         string      `yaml:"partName" json:"partName"`
	QuantityProduced int         `yaml:"quantityProduced" json:"quantityProduced"`
	CompletedUnits   int         `yaml:"completedUnits" json:"completedUnits"`
	TargetQuantity   int         `yaml:"targetQuantity" json:"targetQuantity"`
	Operations       []Operation `yaml:"operations,omitempty" json:"operations,omitempty"`
}

// Severity rates an oversized machine assignment
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// Discrepancy flags a production task placed on a press larger than required
type Discrepancy struct {
	PartName              string   `yaml:"partName" json:"partName"`
	OperationName         string   `yaml:"operationName" json:"operationName"`
	IdealMachineName      string   `yaml:"idealMachineName" json:"idealMachineName"`
	IdealMachineCapacity  int      `yaml:"idealMachineCapacity" json:"idealMachineCapacity"`
	ActualMachineName     string   `yaml:"actualMachineName" json:"actualMachineName"`
	ActualMachineCapacity int      `yaml:"actualMachineCapacity" json:"actualMachineCapacity"`
	StartTime             int      `yaml:"startTime" json:"startTime"`
	Reason                string   `yaml:"reason,omitempty" json:"reason,omitempty"`
	Severity              Severity `yaml:"severity" json:"severity"`
}

// Report bundles the analyses computed from one plan
type Report struct {
	APIVersion         string               `yaml:"apiVersion" json:"apiVersion"`
	Kind               string               `yaml:"kind" json:"kind"`
	PlanID             string               `yaml:"planId,omitempty" json:"planId,omitempty"`
	MachineUtilization []MachineUtilization `yaml:"machineUtilization" json:"machineUtilization"`
	PartProduction     []PartProduction     `yaml:"partProduction" json:"partProduction"`
	Discrepancies      []Discrepancy        `yaml:"discrepancies" json:"discrepancies"`
}
