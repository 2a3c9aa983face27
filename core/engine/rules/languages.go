package rules

type suffixRule struct {
	suffix string
	tag    string
}

type language struct {
	closed           map[string]string
	suffixes         []suffixRule
	capitalizedNouns bool
	fallback         string
}

func closedClass(groups map[string][]string) map[string]string {
	m := make(map[string]string)
	for tag, words := range groups {
		for _, w := range words {
			m[w] = tag
		}
	}
	return m
}

var languages = map[string]*language{
	"en": {
		closed: closedClass(map[string][]string{
			"DET":   {"the", "a", "an", "this", "that", "these", "those", "every", "each", "some", "any", "no"},
			"PRON":  {"i", "you", "he", "she", "it", "we", "they", "me", "him", "her", "us", "them", "who", "which", "what"},
			"ADP":   {"in", "on", "at", "of", "to", "for", "with", "by", "from", "about", "into", "over", "under", "between"},
			"CCONJ": {"and", "or", "but", "nor"},
			"SCONJ": {"if", "because", "while", "although", "since", "unless", "whether"},
			"AUX":   {"is", "are", "was", "were", "be", "been", "being", "am", "has", "have", "had", "do", "does", "did", "will", "would", "can", "could", "may", "might", "must", "shall", "should"},
			"PART":  {"not", "n't"},
			"ADV":   {"very", "also", "often", "never", "always", "here", "there", "then", "now"},
		}),
		suffixes: []suffixRule{
			{"ing", "VERB"},
			{"ed", "VERB"},
			{"ly", "ADV"},
			{"ous", "ADJ"},
			{"ful", "ADJ"},
			{"able", "ADJ"},
			{"ible", "ADJ"},
			{"ive", "ADJ"},
			{"al", "ADJ"},
			{"tion", "NOUN"},
			{"ness", "NOUN"},
			{"ment", "NOUN"},
		},
		fallback: "NOUN",
	},
	"de": {
		closed: closedClass(map[string][]string{
			"DET":   {"der", "die", "das", "den", "dem", "des", "ein", "eine", "einen", "einem", "einer", "eines", "kein", "keine"},
			"PRON":  {"ich", "du", "er", "sie", "es", "wir", "ihr", "mich", "dich", "sich", "uns", "euch", "ihm", "ihn", "man"},
			"ADP":   {"in", "im", "an", "am", "auf", "aus", "bei", "mit", "nach", "von", "vom", "zu", "zum", "zur", "über", "unter", "für", "gegen", "ohne", "um"},
			"CCONJ": {"und", "oder", "aber", "sondern", "denn"},
			"SCONJ": {"dass", "weil", "wenn", "ob", "als", "obwohl", "während"},
			"AUX":   {"ist", "sind", "war", "waren", "sein", "bin", "bist", "seid", "hat", "haben", "hatte", "hatten", "wird", "werden", "wurde", "wurden", "kann", "können", "muss", "müssen"},
			"PART":  {"nicht"},
			"ADV":   {"sehr", "auch", "oft", "nie", "immer", "hier", "dort", "dann", "jetzt", "noch", "schon"},
		}),
		suffixes: []suffixRule{
			{"lich", "ADJ"},
			{"ig", "ADJ"},
			{"isch", "ADJ"},
			{"bar", "ADJ"},
			{"los", "ADJ"},
			{"en", "VERB"},
			{"ern", "VERB"},
			{"eln", "VERB"},
		},
		capitalizedNouns: true,
		fallback:         "ADJ",
	},
}
