package curriculum

// Default returns the built-in arithmetic, algebra and geometry curriculum
// used when no curriculum file is configured.
func Default() Definition {
	return Definition{
		ID:   "matematicas-basicas",
		Name: "Matemáticas básicas",
		Modules: []ModuleDefinition{
			{
				ID:          1,
				Title:       "Números y Operaciones",
				Description: "Conceptos básicos.",
				Concepts: []ConceptDefinition{
					{
						ID:   1,
						Name: "Suma",
						Guide: `# Suma

Es la operación matemática básica que representa la combinación de cantidades.

1. Alinea los números por su valor posicional
2. Suma comenzando por la derecha (unidades)
3. Lleva los acarreos si la suma excede 9

Ejemplo: 23 + 15 = 38`,
						Exercises: []Exercise{
							{Problem: "3 + 5 = ?", Answer: 8},
							{Problem: "7 + 2 = ?", Answer: 9},
							{Problem: "4 + 6 = ?", Answer: 10},
							{Problem: "8 + 8 = ?", Answer: 16},
						},
					},
					{
						ID:   2,
						Name: "Resta",
						Guide: `# Resta

Es la operación inversa a la suma que representa la sustracción de cantidades.

1. Alinea los números correctamente
2. Resta comenzando por la derecha
3. Toma prestado si el dígito es menor

Ejemplo: 35 - 12 = 23`,
						Exercises: []Exercise{
							{Problem: "10 - 3 = ?", Answer: 7},
							{Problem: "15 - 8 = ?", Answer: 7},
							{Problem: "9 - 4 = ?", Answer: 5},
							{Problem: "10 - 4 = ?", Answer: 6},
						},
					},
					{
						ID:   3,
						Name: "Multiplicación",
						Guide: `# Multiplicación

Es sumar un número tantas veces como indica el otro, por ejemplo: 2 + 2 + 2 + 2 = 2 x 4 = 8.

1. Identifica cuántas veces se repite la cantidad
2. Suma la cantidad ese número de veces
3. Memoriza las tablas para calcular más rápido

Ejemplo: 3 x 4 = 12`,
						Exercises: []Exercise{
							{Problem: "1 x 1 = ?", Answer: 1},
							{Problem: "2 x 2 = ?", Answer: 4},
							{Problem: "3 x 3 = ?", Answer: 9},
							{Problem: "4 x 4 = ?", Answer: 16},
						},
					},
					{
						ID:   4,
						Name: "División",
						Exercises: []Exercise{
							{Problem: "4 / 4 = ?", Answer: 1},
							{Problem: "5 / 5 = ?", Answer: 1},
							{Problem: "6 / 6 = ?", Answer: 1},
							{Problem: "9 / 9 = ?", Answer: 1},
						},
					},
				},
			},
			{
				ID:          2,
				Title:       "Álgebra",
				Description: "Ecuaciones y expresiones.",
				Concepts: []ConceptDefinition{
					{ID: 5, Name: "Ecuaciones lineales"},
					{ID: 6, Name: "Factorización"},
				},
			},
			{
				ID:          3,
				Title:       "Geometría",
				Description: "Figuras y espacios.",
				Concepts: []ConceptDefinition{
					{ID: 7, Name: "Áreas y perímetros"},
					{ID: 8, Name: "Volúmenes"},
				},
			},
		},
	}
}
