package memory

import (
	"testing"

	"gasreport/testutil"
)

func TestImportsAreDomainOrStdlib(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".",
		testutil.Any(
			testutil.ThirdPartyImportExcept("github.com/google/uuid"),
			testutil.ModuleImportExcept("gasreport/pkg/domain"),
		),
		"the memory repository depends on the domain contract and uuid for record ids only")
}
