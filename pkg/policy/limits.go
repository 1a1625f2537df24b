package policy

// AWS counts policy size on the minified JSON, whitespace excluded.
const (
	ManagedPolicyMaxChars = 6144
	InlinePolicyMaxChars  = 2048
)

// SizeCheck reports the compact serialized size of a document against a
// ceiling. Exceeding the ceiling is advisory: AWS rejects the upload, but
// the caller decides whether to warn or split the document.
type SizeCheck struct {
	Chars    int
	Limit    int
	Exceeded bool
}

func CheckManagedSize(doc *Document) (SizeCheck, error) {
	return checkSize(doc, ManagedPolicyMaxChars)
}

func CheckInlineSize(doc *Document) (SizeCheck, error) {
	return checkSize(doc, InlinePolicyMaxChars)
}

func checkSize(doc *Document, limit int) (SizeCheck, error) {
	data, err := doc.Compact()
	if err != nil {
		return SizeCheck{}, err
	}
	return SizeCheck{
		Chars:    len(data),
		Limit:    limit,
		Exceeded: len(data) > limit,
	}, nil
}
