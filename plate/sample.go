package plate

import (
	"fmt"
	"strings"
)

// DefaultCondition is assigned to groups whose name carries no condition
// token.
const DefaultCondition = "default"

// Sample is the structured form of a sample name: which organism or strain,
// under which condition, and which replicate.
type Sample struct {
	Name      string
	Condition string
	Replicate string
}

// SplitSampleName breaks a Name-Condition-Replicate string into its parts
// using the same rules as GroupOf and ConditionOf. Names with more than three
// tokens keep the extra tokens in the condition.
func SplitSampleName(name string) Sample {
	group := GroupOf(name)

	out := Sample{
		Name:      strings.SplitN(group, "-", 2)[0],
		Condition: ConditionOf(group),
	}

	if group != name {
		out.Replicate = name[len(group)+1:]
	}

	return out
}

// GroupOf strips the trailing replicate token: "StrainX-2x-Rep1" becomes
// "StrainX-2x". A name without a hyphen is its own group.
func GroupOf(name string) string {
	idx := strings.LastIndex(name, "-")
	if idx < 0 {
		return name
	}

	return name[:idx]
}

// ConditionOf strips the leading name token from a group: "blank-2x" becomes
// "2x". A group without a hyphen has DefaultCondition.
func ConditionOf(group string) string {
	parts := strings.SplitN(group, "-", 2)
	if len(parts) < 2 {
		return DefaultCondition
	}

	return parts[1]
}

// IsBlank reports whether a group holds background-only wells.
func IsBlank(group string) bool {
	return strings.HasPrefix(strings.ToLower(group), "blank")
}

// ValidateSampleName is the strict counterpart of SplitSampleName: the name
// must have at least three non-empty hyphen-delimited tokens.
func ValidateSampleName(name string) error {
	tokens := strings.Split(name, "-")
	if len(tokens) < 3 {
		return fmt.Errorf("sample %q: expected Name-Condition-Replicate, found %d token(s)", name, len(tokens))
	}

	for i, tok := range tokens {
		if strings.TrimSpace(tok) == "" {
			return fmt.Errorf("sample %q: token %d is empty", name, i+1)
		}
	}

	return nil
}
