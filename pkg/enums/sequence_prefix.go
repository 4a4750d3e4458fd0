package enums

// SequencePrefix names the per-year counter used for human-readable record numbers.
type SequencePrefix string

const (
	SequencePrefixIssue   SequencePrefix = "ISS"
	SequencePrefixBursary SequencePrefix = "BUR"
	SequencePrefixLostID  SequencePrefix = "LID"
)

// String implements fmt.Stringer.
func (p SequencePrefix) String() string {
	return string(p)
}
