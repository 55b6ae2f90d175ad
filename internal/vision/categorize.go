package vision

import "strings"

type categoryEntry struct {
	keywords []string
	name     string
}

// objectCategories mirror the rule categorizer but are tuned to object nouns.
// Violation categories come before general ones; first hit wins.
var objectCategories = []categoryEntry{
	{[]string{"candle", "incense", "flame", "fire", "burning"}, "Fire Hazard"},
	{[]string{"vape", "e-cigarette", "smoking", "cigarette"}, "Smoking Violation"},
	{[]string{"pet", "dog", "cat", "bird", "hamster", "fish"}, "Pet Violation"},
	{[]string{"alcohol", "beer", "wine", "liquor"}, "Alcohol Violation"},
	{[]string{"weapon", "knife", "gun", "firearm"}, "Weapon Violation"},
	{[]string{"smoke detector", "detector"}, "Safety Violation"},
	{[]string{"microwave", "toaster", "heater", "appliance"}, "Appliance Violation"},
	{[]string{"graffiti", "damage", "hole", "broken"}, "Property Damage"},
	{[]string{"bed", "desk", "chair", "table", "dresser", "bookshelf", "sofa", "couch"}, "Furniture"},
	{[]string{"computer", "laptop", "phone", "television", "tv", "speaker", "headphones"}, "Electronics"},
	{[]string{"plant", "flower", "vase", "picture", "photo", "poster", "painting"}, "Decorations"},
	{[]string{"book", "notebook", "pen", "pencil", "bag", "backpack", "clothing"}, "Personal Items"},
	{[]string{"cup", "glass", "plate", "bowl", "utensil", "fork", "spoon"}, "Kitchen Items"},
	{[]string{"towel", "soap", "toothbrush", "toothpaste", "shampoo", "conditioner"}, "Bathroom Items"},
	{[]string{"box", "bin", "basket", "shelf", "rack", "hook", "hanger"}, "Storage"},
	{[]string{"clock", "calendar", "paper", "document", "folder", "binder"}, "Office Items"},
}

// CategorizeLabel assigns a detected object label to a violation or general
// category.
func CategorizeLabel(label string) string {
	lower := strings.ToLower(label)
	for _, entry := range objectCategories {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				return entry.name
			}
		}
	}
	return "Other"
}
