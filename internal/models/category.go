package models

import "strings"

// TriggerCategory labels a family of foods with a known baseline trigger rate.
type TriggerCategory string

const (
	CategoryDairy                TriggerCategory = "dairy"
	CategoryGluten               TriggerCategory = "gluten"
	CategoryHighFODMAP           TriggerCategory = "high_fodmap"
	CategoryCaffeine             TriggerCategory = "caffeine"
	CategoryAlcohol              TriggerCategory = "alcohol"
	CategorySpicy                TriggerCategory = "spicy"
	CategoryFatty                TriggerCategory = "fatty"
	CategoryArtificialSweeteners TriggerCategory = "artificial_sweeteners"
	CategoryCitrus               TriggerCategory = "citrus"
	CategoryBeansLegumes         TriggerCategory = "beans_legumes"
	CategoryOther                TriggerCategory = "other"
)

var categoryBaselines = map[TriggerCategory]float64{
	CategoryDairy:                0.35,
	CategoryGluten:               0.30,
	CategoryHighFODMAP:           0.40,
	CategoryCaffeine:             0.25,
	CategoryAlcohol:              0.30,
	CategorySpicy:                0.25,
	CategoryFatty:                0.20,
	CategoryArtificialSweeteners: 0.20,
	CategoryCitrus:               0.15,
	CategoryBeansLegumes:         0.30,
	CategoryOther:                0.10,
}

var categoryNames = map[TriggerCategory]string{
	CategoryDairy:                "Dairy",
	CategoryGluten:               "Gluten",
	CategoryHighFODMAP:           "High-FODMAP",
	CategoryCaffeine:             "Caffeine",
	CategoryAlcohol:              "Alcohol",
	CategorySpicy:                "Spicy",
	CategoryFatty:                "Fatty",
	CategoryArtificialSweeteners: "Artificial Sweeteners",
	CategoryCitrus:               "Citrus",
	CategoryBeansLegumes:         "Beans/Legumes",
	CategoryOther:                "Other",
}

// categoryLexicon is matched in order; the first category with a matching keyword wins.
var categoryLexicon = []struct {
	category TriggerCategory
	keywords []string
}{
	{CategoryDairy, []string{"dairy", "milk", "cheese", "yogurt", "yoghurt", "cream", "butter", "ice cream", "whey", "lactose", "latte"}},
	{CategoryGluten, []string{"gluten", "bread", "pasta", "wheat", "barley", "rye", "cereal", "bagel", "pizza", "cracker", "noodle"}},
	{CategoryHighFODMAP, []string{"fodmap", "onion", "garlic", "apple", "pear", "mango", "watermelon", "honey", "cauliflower", "mushroom", "asparagus"}},
	{CategoryCaffeine, []string{"caffeine", "coffee", "espresso", "green tea", "black tea", "iced tea", "chai", "matcha", "energy drink", "cola", "chocolate"}},
	{CategoryAlcohol, []string{"alcohol", "beer", "wine", "vodka", "whiskey", "tequila", "cocktail", "cider"}},
	{CategorySpicy, []string{"spicy", "chili", "chilli", "pepper", "jalapeno", "curry", "hot sauce", "sriracha", "salsa"}},
	{CategoryFatty, []string{"fatty", "fried", "fries", "bacon", "burger", "sausage", "greasy", "donut", "chips"}},
	{CategoryArtificialSweeteners, []string{"sweetener", "aspartame", "sucralose", "sorbitol", "xylitol", "stevia", "diet soda", "sugar-free", "sugar free"}},
	{CategoryCitrus, []string{"citrus", "orange", "lemon", "lime", "grapefruit", "tangerine"}},
	{CategoryBeansLegumes, []string{"bean", "lentil", "chickpea", "hummus", "peas", "soy", "tofu", "legume"}},
}

// Baseline returns the prior trigger probability for the category.
func (c TriggerCategory) Baseline() float64 {
	if v, ok := categoryBaselines[c]; ok {
		return v
	}
	return categoryBaselines[CategoryOther]
}

// DisplayName returns the human-facing label.
func (c TriggerCategory) DisplayName() string {
	if v, ok := categoryNames[c]; ok {
		return v
	}
	return categoryNames[CategoryOther]
}

// Valid reports whether c is a known category.
func (c TriggerCategory) Valid() bool {
	_, ok := categoryBaselines[c]
	return ok
}

// CategorizeFood assigns a category by case-insensitive keyword match against the food name.
func CategorizeFood(name string) TriggerCategory {
	lowered := strings.ToLower(name)
	for _, entry := range categoryLexicon {
		for _, kw := range entry.keywords {
			if strings.Contains(lowered, kw) {
				return entry.category
			}
		}
	}
	return CategoryOther
}

// ParseTriggerCategory maps a label (either the enum value or its display name) to a category.
func ParseTriggerCategory(value string) (TriggerCategory, bool) {
	trimmed := strings.TrimSpace(value)
	for category, display := range categoryNames {
		if strings.EqualFold(string(category), trimmed) || strings.EqualFold(display, trimmed) {
			return category, true
		}
	}
	return "", false
}
