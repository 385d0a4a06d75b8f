package core

// DefaultCategories returns the categories installed on first run.
func DefaultCategories() Categories {
	return Categories{
		{ID: 1, Name: "Protein"},
		{ID: 2, Name: "Vegetables"},
		{ID: 3, Name: "Fruits"},
		{ID: 4, Name: "Grains"},
		{ID: 5, Name: "Dairy"},
		{ID: 6, Name: "Snacks"},
		{ID: 7, Name: "Beverages"},
		{ID: FallbackCategoryID, Name: FallbackCategoryName},
	}
}

// DefaultItemMap returns the item mappings installed on first run.
func DefaultItemMap() ItemMap {
	const (
		protein    = 1
		vegetables = 2
		fruits     = 3
		grains     = 4
		dairy      = 5
	)
	return ItemMap{
		"chicken":  protein,
		"egg":      protein,
		"fish":     protein,
		"beef":     protein,
		"pork":     protein,
		"turkey":   protein,
		"tofu":     protein,
		"broccoli": vegetables,
		"carrot":   vegetables,
		"spinach":  vegetables,
		"tomato":   vegetables,
		"onion":    vegetables,
		"potato":   vegetables,
		"apple":    fruits,
		"banana":   fruits,
		"orange":   fruits,
		"grape":    fruits,
		"rice":     grains,
		"bread":    grains,
		"pasta":    grains,
		"wheat":    grains,
		"milk":     dairy,
		"cheese":   dairy,
		"yogurt":   dairy,
		"butter":   dairy,
	}
}
