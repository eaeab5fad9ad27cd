package todo

// seedData is written by Seed. Timestamps are assigned when seeding.
var seedData = []Draft{
	{ID: "1", Title: "Buy milk", Completed: false},
	{ID: "2", Title: "Write report", Completed: true},
	{ID: "3", Title: "Call mom", Completed: false},
	{ID: "4", Title: "Organize team meeting", Completed: false},
	{ID: "5", Title: "Go to the gym", Completed: true},
}

// SeedIDs returns the ids overwritten by Seed.
func SeedIDs() []string {
	ids := make([]string, len(seedData))
	for i, d := range seedData {
		ids[i] = d.ID
	}
	return ids
}
