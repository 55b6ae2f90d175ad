package vision

// violationLabels are objects that directly suggest a policy violation.
var violationLabels = []string{
	// Prohibited items
	"candle", "lit candle", "burning candle", "incense", "incense stick",
	"vape", "vaping device", "e-cigarette", "electronic cigarette",
	"pet", "dog", "cat", "bird", "hamster", "fish tank", "aquarium",
	"alcohol", "beer bottle", "wine bottle", "liquor bottle",
	"drug paraphernalia", "bong", "pipe", "rolling papers",
	"weapon", "knife", "gun", "firearm", "sword",

	// Safety hazards
	"covered smoke detector", "smoke detector with cover",
	"open flame", "fire", "burning", "flame",
	"extension cord", "power strip", "overloaded outlet",
	"blocked exit", "blocked door", "blocked window",
	"damaged furniture", "broken furniture", "hole in wall",

	// Unauthorized appliances
	"microwave", "toaster", "toaster oven", "hot plate",
	"space heater", "heater", "electric heater",
	"air conditioner", "window unit", "portable ac",
	"refrigerator", "mini fridge", "freezer",
	"washing machine", "dryer", "dishwasher",

	// Behavioral violations
	"graffiti", "wall writing", "damaged wall",
	"unauthorized modification", "modified outlet",
	"excessive trash", "messy room", "cluttered room",
	"unauthorized furniture", "loft bed", "bunk bed",
	"unauthorized decoration", "posters covering walls",
}

// generalLabels are ordinary room objects; scoring them alongside the
// violation labels keeps the softmax from inflating violation confidence in
// benign scenes.
var generalLabels = []string{
	// Furniture
	"bed", "desk", "chair", "table", "dresser", "bookshelf", "lamp", "mirror",
	"sofa", "couch", "nightstand", "wardrobe", "closet", "drawer",

	// Electronics
	"computer", "laptop", "phone", "television", "tv", "speaker", "headphones",
	"charger", "cable", "wire", "outlet", "switch", "light bulb",

	// Decorations
	"plant", "flower", "vase", "picture", "photo", "poster", "painting",
	"curtain", "blind", "rug", "carpet", "pillow", "blanket", "sheet",

	// Personal items
	"book", "notebook", "pen", "pencil", "bag", "backpack", "clothing",
	"shoes", "hat", "jewelry", "watch", "wallet", "keys",

	// Kitchen items
	"cup", "glass", "plate", "bowl", "utensil", "fork", "spoon",
	"bottle", "can", "container", "box", "food",

	// Bathroom items
	"towel", "soap", "toothbrush", "toothpaste", "shampoo", "conditioner",
	"sink", "toilet", "shower", "bath",

	// Storage
	"bin", "basket", "shelf", "rack", "hook", "hanger", "cabinet", "case",

	// Miscellaneous
	"clock", "calendar", "paper", "document", "folder", "binder",
	"scissors", "tape", "glue", "marker", "highlighter",
}

// Vocabulary returns the closed label set the scorer ranks against, violation
// labels first.
func Vocabulary() []string {
	out := make([]string, 0, len(violationLabels)+len(generalLabels))
	out = append(out, violationLabels...)
	out = append(out, generalLabels...)
	return out
}
