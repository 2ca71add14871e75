// ABOUTME: Exercise catalog referenced by program exercises.
// ABOUTME: Ships a built-in catalog covering bodyweight, kettlebell, and cardio moves.
package models

import "sort"

// Exercise describes a movement that programs can reference by ID.
type Exercise struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Equipment []string `json:"equipment,omitempty" yaml:"equipment,omitempty"`
	Muscles   []string `json:"muscles,omitempty" yaml:"muscles,omitempty"`
}

// Catalog resolves exercise IDs.
type Catalog map[string]Exercise

// Lookup returns the exercise with the given ID.
func (c Catalog) Lookup(id string) (Exercise, bool) {
	e, ok := c[id]
	return e, ok
}

// Name returns the display name for id, or a placeholder when unknown.
func (c Catalog) Name(id string) string {
	if e, ok := c[id]; ok {
		return e.Name
	}
	return "Unknown exercise"
}

// Sorted returns the catalog entries ordered by ID.
func (c Catalog) Sorted() []Exercise {
	out := make([]Exercise, 0, len(c))
	for _, e := range c {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NewCatalog builds a Catalog from a list of exercises.
func NewCatalog(exercises ...Exercise) Catalog {
	c := make(Catalog, len(exercises))
	for _, e := range exercises {
		c[e.ID] = e
	}
	return c
}

// DefaultCatalog returns the built-in exercise list.
func DefaultCatalog() Catalog {
	return NewCatalog(
		Exercise{ID: "ex-pushup", Name: "Push-up", Equipment: []string{"bodyweight"}, Muscles: []string{"chest", "triceps"}},
		Exercise{ID: "ex-squat", Name: "Squat", Equipment: []string{"bodyweight"}, Muscles: []string{"quads", "glutes"}},
		Exercise{ID: "ex-lunge", Name: "Lunge", Equipment: []string{"bodyweight"}, Muscles: []string{"quads", "glutes"}},
		Exercise{ID: "ex-plank", Name: "Plank", Equipment: []string{"bodyweight"}, Muscles: []string{"core"}},
		Exercise{ID: "ex-burpee", Name: "Burpee", Equipment: []string{"bodyweight"}, Muscles: []string{"full body"}},
		Exercise{ID: "ex-jumping-jack", Name: "Jumping jack", Equipment: []string{"bodyweight"}, Muscles: []string{"full body"}},
		Exercise{ID: "ex-mountain-climber", Name: "Mountain climber", Equipment: []string{"bodyweight"}, Muscles: []string{"core", "shoulders"}},
		Exercise{ID: "ex-pullup", Name: "Pull-up", Equipment: []string{"pull-up bar"}, Muscles: []string{"back", "biceps"}},
		Exercise{ID: "ex-dip", Name: "Dip", Equipment: []string{"parallel bars"}, Muscles: []string{"triceps", "chest"}},
		Exercise{ID: "ex-kb-swing", Name: "Kettlebell swing", Equipment: []string{"kettlebell"}, Muscles: []string{"posterior chain"}},
		Exercise{ID: "ex-kb-goblet-squat", Name: "Goblet squat", Equipment: []string{"kettlebell"}, Muscles: []string{"quads", "glutes"}},
		Exercise{ID: "ex-db-row", Name: "Dumbbell row", Equipment: []string{"dumbbell"}, Muscles: []string{"back"}},
		Exercise{ID: "ex-db-press", Name: "Dumbbell press", Equipment: []string{"dumbbell"}, Muscles: []string{"shoulders"}},
		Exercise{ID: "ex-jump-rope", Name: "Jump rope", Equipment: []string{"rope"}, Muscles: []string{"calves", "cardio"}},
		Exercise{ID: "ex-run", Name: "Run", Equipment: []string{"none"}, Muscles: []string{"cardio"}},
		Exercise{ID: "ex-run-interval", Name: "Run interval", Equipment: []string{"none"}, Muscles: []string{"cardio"}},
	)
}
