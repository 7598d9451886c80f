package extract

// Static phoneme classes used by the phonetic features. Classification is
// per-letter with a small set of digraphs counted separately.
var (
	plosives  = map[rune]bool{'p': true, 'b': true, 't': true, 'd': true, 'k': true, 'g': true}
	sibilants = map[rune]bool{'s': true, 'z': true, 'x': true}
	liquids   = map[rune]bool{'l': true, 'r': true, 'm': true, 'n': true, 'w': true}
	vowels    = map[rune]bool{'a': true, 'e': true, 'i': true, 'o': true, 'u': true, 'y': true}
)

// Digraphs that read as a single sibilant ("sh", "ch") or plosive ("ck").
var (
	sibilantDigraphs = []string{"sh", "ch", "tch"}
	plosiveDigraphs  = []string{"ck"}
)

// semanticFields maps a field name to the keywords counted for it. Matching
// is case-insensitive substring matching against the whole name; a name with
// no hits scores zero for the field.
var semanticFields = map[string][]string{
	"power": {
		"king", "queen", "titan", "max", "ultra", "mega", "supreme",
		"royal", "empire", "victor", "alpha", "prime",
	},
	"fortune": {
		"gold", "rich", "luck", "fortune", "treasure", "gem", "diamond",
		"silver", "crown", "cash", "coin",
	},
	"speed": {
		"swift", "flash", "bolt", "rapid", "quick", "dash", "rocket",
		"jet", "sonic", "blaze",
	},
	"nature": {
		"stone", "river", "wolf", "bear", "hawk", "storm", "sky",
		"oak", "iron", "fire", "frost", "moon", "star",
	},
}

// semanticFieldNames returns field names in stable order.
func semanticFieldNames() []string {
	return []string{"power", "fortune", "speed", "nature"}
}
