package accounts

import (
	"fmt"
	"strings"
)

// FuzzySource matches an account by its address and description.
type FuzzySource []AccDesc

func (fs FuzzySource) Len() int {
	return len(fs)
}

func (fs FuzzySource) String(i int) string {
	return fmt.Sprintf("%s_%s", fs[i].Address, strings.ReplaceAll(fs[i].Desc, " ", "_"))
}
