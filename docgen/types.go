package docgen

// CodeEntry is a single billing code with its description.
type CodeEntry struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// StructuredCodes holds the suggested billing codes for a visit.
type StructuredCodes struct {
	CPTCodes   []CodeEntry `json:"cpt_codes"`
	ICD10Codes []CodeEntry `json:"icd10_codes"`
}

// IsFallback reports whether the codes are the sentinel value produced
// when the model output could not be parsed or generated.
func (c StructuredCodes) IsFallback() bool {
	return len(c.CPTCodes) == 1 && c.CPTCodes[0].Code == "Error"
}

// ErrorCodes returns the sentinel StructuredCodes carrying detail as each
// entry's description. Callers receive it in place of real codes when
// generation or parsing fails, so the response shape stays well-formed.
func ErrorCodes(detail string) StructuredCodes {
	return StructuredCodes{
		CPTCodes:   []CodeEntry{{Code: "Error", Description: detail}},
		ICD10Codes: []CodeEntry{{Code: "Error", Description: detail}},
	}
}
