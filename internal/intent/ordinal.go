package intent

import "strings"

// French cardinal words, covering the range question references realistically
// use. Tried before the ordinal table so "deux" and "deuxième" both resolve.
var cardinalWords = map[string]int{
	"un": 1, "une": 1, "deux": 2, "trois": 3, "quatre": 4, "cinq": 5,
	"six": 6, "sept": 7, "huit": 8, "neuf": 9, "dix": 10,
	"onze": 11, "douze": 12, "treize": 13, "quatorze": 14, "quinze": 15,
	"seize": 16, "dix-sept": 17, "dix-huit": 18, "dix-neuf": 19, "vingt": 20,
}

// Ordinal forms the cardinal lookup does not cover.
var ordinalWords = map[string]int{
	"premier": 1, "première": 1, "premiere": 1,
	"deuxième": 2, "deuxieme": 2, "second": 2, "seconde": 2,
	"troisième": 3, "troisieme": 3,
	"quatrième": 4, "quatrieme": 4,
	"cinquième": 5, "cinquieme": 5,
	"sixième": 6, "sixieme": 6,
	"septième": 7, "septieme": 7,
	"huitième": 8, "huitieme": 8,
	"neuvième": 9, "neuvieme": 9,
	"dixième": 10, "dixieme": 10,
}

// ParseFrenchNumber converts a French cardinal or ordinal word to an
// integer. It returns false when the word matches neither table. Pure
// lookup, no side effects.
func ParseFrenchNumber(word string) (int, bool) {
	w := strings.ToLower(strings.TrimSpace(word))
	if n, ok := cardinalWords[w]; ok {
		return n, true
	}
	if n, ok := ordinalWords[w]; ok {
		return n, true
	}
	return 0, false
}
