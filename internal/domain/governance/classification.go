package governance

// Classification is the sensitivity tier assigned to a field's data.
// Tiers are ordered: PUBLIC < INTERNAL < PERSONAL < FINANCIAL < HIGHLY_SENSITIVE.
type Classification string

const (
	ClassificationPublic          Classification = "PUBLIC"
	ClassificationInternal        Classification = "INTERNAL"
	ClassificationPersonal        Classification = "PERSONAL"
	ClassificationFinancial       Classification = "FINANCIAL"
	ClassificationHighlySensitive Classification = "HIGHLY_SENSITIVE"
)

var classificationRank = map[Classification]int{
	ClassificationPublic:          0,
	ClassificationInternal:        1,
	ClassificationPersonal:        2,
	ClassificationFinancial:       3,
	ClassificationHighlySensitive: 4,
}

// Rank returns the ordinal severity of the classification. Unknown
// classifications rank below PUBLIC.
func (c Classification) Rank() int {
	if r, ok := classificationRank[c]; ok {
		return r
	}
	return -1
}

// Valid reports whether c is one of the known classification tiers.
func (c Classification) Valid() bool {
	_, ok := classificationRank[c]
	return ok
}

// IsSensitive reports whether the classification counts as PII for
// density and masking calculations (anything above INTERNAL).
func (c Classification) IsSensitive() bool {
	return c.Rank() > ClassificationInternal.Rank()
}

// RequiresEncryption reports whether fields of this classification must
// be encrypted at rest and in transit.
func (c Classification) RequiresEncryption() bool {
	return c == ClassificationFinancial || c == ClassificationHighlySensitive
}

func (c Classification) String() string {
	return string(c)
}
