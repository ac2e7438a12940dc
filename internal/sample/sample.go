// Package sample holds the reference shop floor: eleven body-in-white parts
// and the thirteen presses of the stamping line.
package sample

import "github.com/sourceplane/pressplan/internal/model"

func op(step, press string, setup int, t50 float64) model.Operation {
	t, err := model.ParseTonnage(press)
	if err != nil {
		panic(err)
	}
	return model.Operation{StepName: step, LowestPress: t, DieSettingTime: setup, TimeFor50Pcs: t50}
}

// Parts returns the reference parts with their default target quantities.
func Parts() []model.Part {
	return []model.Part{
		{
			ID: "p1", Name: "Engine Mount Bracket", Description: "340N", Priority: 1, TargetQuantity: 200,
			Operations: []model.Operation{
				op("1 Drawing", "Press-75T", 10, 15),
				op("2 Drawing", "Press-50T", 5, 10),
				op("Trimming", "Press-50T", 5, 8),
				op("Punching", "Press-50T", 5, 7),
				op("Bending", "Press-30T", 5, 5),
			},
		},
		{
			ID: "p2", Name: "Side Panel Reinforcement", Description: "70N", Priority: 2, TargetQuantity: 150,
			Operations: []model.Operation{
				op("Blanking", "Press-75T", 10, 10),
				op("Drawing", "Press-75T", 5, 10),
				op("1 Punching", "Press-50T", 5, 8),
				op("2 Punching", "Press-50T", 5, 7),
			},
		},
		{
			ID: "p3", Name: "Cross Member", Description: "110+180N", Priority: 3, TargetQuantity: 100,
			Operations: []model.Operation{
				op("Blanking", "Press-50T", 8, 10),
				op("Punching", "Press-30T", 7, 10),
				op("Bending", "Press-20T", 5, 10),
			},
		},
		{
			ID: "p4", Name: "Floor Pan Support", Description: "108N", Priority: 4, TargetQuantity: 120,
			Operations: []model.Operation{
				op("Blanking", "Press-75T", 10, 15),
				op("Draw", "Press-50T", 8, 15),
				op("Punching", "Press-30T", 7, 10),
			},
		},
		{
			ID: "p5", Name: "A-Pillar Stiffener", Description: "100N", Priority: 5, TargetQuantity: 80,
			Operations: []model.Operation{
				op("Blanking", "Press-160T", 10, 15),
				op("1 Draw", "Press-30T", 5, 10),
				op("2 Draw", "Press-75T", 5, 10),
				op("Punching", "Press-30T", 5, 5),
			},
		},
		{
			ID: "p6", Name: "Base Plate", Description: "130N Base Plate", Priority: 6, TargetQuantity: 100,
			Operations: []model.Operation{
				op("Blanking", "Press-75T", 10, 15),
				op("Bending", "Press-30T", 5, 10),
			},
		},
		{
			ID: "p7", Name: "Roof Bow", Description: "430N", Priority: 7, TargetQuantity: 60,
			Operations: []model.Operation{
				op("Blanking", "Press-160T", 10, 18),
				op("Drawing", "Press-75T", 8, 12),
				op("Punching", "Press-50T", 7, 10),
			},
		},
		{
			ID: "p8", Name: "B-Pillar Reinforcement", Description: "130N", Priority: 8, TargetQuantity: 80,
			Operations: []model.Operation{
				op("Blanking", "Press-160T", 10, 15),
				op("1 Bending", "Press-50T", 5, 8),
				op("2 Bending", "Press-75T", 5, 8),
				op("3 Bending", "Press-50T", 5, 8),
				op("1 Punching", "Press-50T", 5, 6),
				op("2 Punching", "Press-20T", 5, 5),
			},
		},
		{
			ID: "p9", Name: "Door Impact Beam", Description: "330N", Priority: 9, TargetQuantity: 100,
			Operations: []model.Operation{
				op("Blanking", "Press-75T", 8, 12),
				op("Bending", "Press-50T", 7, 10),
				op("Punching", "Press-30T", 5, 8),
			},
		},
		{
			ID: "p10", Name: "Small Bracket", Description: "90N", Priority: 10, TargetQuantity: 200,
			Operations: []model.Operation{
				op("Blanking", "Press-20T", 10, 15),
				op("Punching", "Press-10T", 10, 15),
			},
		},
		{
			ID: "p11", Name: "Hinge Plate", Description: "2810", Priority: 11, TargetQuantity: 150,
			Operations: []model.Operation{
				op("Blanking", "Press-20T", 8, 13),
				op("Bending", "Press-10T", 7, 12),
			},
		},
	}
}

// Machines returns the thirteen presses, all available.
func Machines() []model.Machine {
	presses := []struct {
		name     string
		capacity int
	}{
		{"Press-10T", 10},
		{"Press-20T", 20},
		{"Press-30T", 30},
		{"Press-30T-2", 30},
		{"Press-50T", 50},
		{"Press-50T-2", 50},
		{"Press-75T", 75},
		{"Press-75T-2", 75},
		{"Press-100T", 100},
		{"Press-150T", 150},
		{"Press-200T", 200},
		{"Press-250T", 250},
		{"Press-300T", 300},
	}

	machines := make([]model.Machine, 0, len(presses))
	for _, p := range presses {
		machines = append(machines, model.Machine{Name: p.name, Capacity: p.capacity, Available: true})
	}
	return machines
}

// Request returns a complete day-shift request for the reference floor.
func Request() *model.ProductionRequest {
	return &model.ProductionRequest{
		APIVersion: model.APIVersion,
		Kind:       model.KindRequest,
		Metadata: model.Metadata{
			Name:        "day-shift",
			Description: "Reference stamping line, nine-hour day shift",
		},
		Shift: model.ShiftSpec{
			DurationMinutes: model.DefaultShiftLength,
			StartTime:       "06:00",
		},
		Machines: Machines(),
		Parts:    Parts(),
	}
}
