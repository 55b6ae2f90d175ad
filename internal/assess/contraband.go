package assess

import (
	"fmt"
	"strings"

	"hall-compliance/internal/vision"
)

// contrabandSet names one unconditionally disallowed item class and the
// policy line cited when it triggers. Sets are checked in priority order.
type contrabandSet struct {
	terms  []string
	policy string
}

var contrabandSets = []contrabandSet{
	{
		terms: []string{
			"weapon", "weapons", "knife", "knives", "gun", "guns", "firearm", "firearms",
			"sword", "swords", "dagger", "daggers", "blade", "blades", "machete", "machetes",
			"axe", "axes", "bat", "bats", "club", "clubs", "brass knuckles", "knuckles",
			"taser", "tasers", "pepper spray", "mace", "stun gun", "stungun",
		},
		policy: "Weapon policy - weapons and dangerous items are strictly prohibited",
	},
	{
		terms: []string{
			"candle", "candles", "lighter", "lighters", "matches", "match",
			"incense", "incense stick", "burner", "burners", "torch", "torches",
			"firework", "fireworks", "sparkler", "sparklers",
		},
		policy: "Fire safety policy - open flames and candles are prohibited",
	},
	{
		terms: []string{
			"microwave", "toaster", "toaster oven", "hot plate", "hotplate",
			"electric kettle", "kettle", "coffee maker", "coffeemaker",
			"rice cooker", "slow cooker", "crock pot", "crockpot",
			"air fryer", "airfryer", "grill", "grills", "panini press",
		},
		policy: "Appliance policy - cooking appliances are not allowed in residence halls",
	},
	{
		terms: []string{
			"beer", "wine", "liquor", "alcohol", "bottle", "bottles",
			"can", "cans", "drink", "drinks", "beverage", "beverages",
		},
		policy: "Alcohol policy - alcoholic beverages are not permitted",
	},
	{
		terms: []string{
			"cigarette", "cigarettes", "cigar", "cigars", "pipe", "pipes",
			"vape", "vaping", "e-cigarette", "ecig", "hookah", "hookahs",
		},
		policy: "Smoking policy - tobacco and vaping products are prohibited",
	},
}

// checkContraband runs the deterministic fast path. It is independent of the
// rule index: these items are disallowed regardless of what the uploaded
// policy document says, so an empty or mis-extracted index must not mask
// them. Reports false when no object matches.
func checkContraband(objects []vision.DetectedObject) (Verdict, bool) {
	var violating []string
	var policies []string
	seenPolicies := make(map[string]struct{})

	for _, obj := range objects {
		label := strings.ToLower(strings.TrimSpace(obj.Label))
		if label == "" {
			continue
		}
		for _, set := range contrabandSets {
			if !matchesAny(label, set.terms) {
				continue
			}
			violating = append(violating, obj.Label)
			if _, ok := seenPolicies[set.policy]; !ok {
				seenPolicies[set.policy] = struct{}{}
				policies = append(policies, set.policy)
			}
			break
		}
	}

	if len(violating) == 0 {
		return Verdict{}, false
	}

	return Verdict{
		ViolationFound: true,
		Message: fmt.Sprintf("CRITICAL POLICY VIOLATION DETECTED: %s are strictly prohibited in residence halls.",
			strings.Join(violating, ", ")),
		Confidence:        0.99,
		RecommendedAction: "IMMEDIATE REMOVAL REQUIRED - Contact campus security immediately",
		ViolatingObjects:  violating,
		MatchingRules:     policies,
		Severity:          SeverityCritical,
	}, true
}

// matchesAny reports whether the label equals or contains any term.
func matchesAny(label string, terms []string) bool {
	for _, term := range terms {
		if label == term || strings.Contains(label, term) {
			return true
		}
	}
	return false
}
