package registry

// Seed provides the default course catalog loaded at startup.
func Seed() []Course {
	return []Course{
		{
			ID:         "CS101",
			Name:       "Introduction to Computer Science",
			Instructor: "Dr. Ada Moreno",
			Capacity:   30,
		},
		{
			ID:         "CS205",
			Name:       "Data Structures and Algorithms",
			Instructor: "Prof. Felix Chen",
			Capacity:   25,
		},
		{
			ID:         "MATH140",
			Name:       "Calculus I",
			Instructor: "Dr. Priya Raman",
			Capacity:   40,
		},
		{
			ID:         "PHYS110",
			Name:       "General Physics",
			Instructor: "Prof. Lena Okafor",
			Capacity:   35,
		},
		{
			ID:         "ENG102",
			Name:       "Academic Writing",
			Instructor: "Dr. Sam Whitfield",
			Capacity:   20,
		},
	}
}
