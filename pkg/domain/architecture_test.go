package domain_test

import (
	"testing"

	"havenlist/testutil"
)

func TestDomainDoesNotImportInternal(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden, "domain contracts must stay independent of implementations")
	testutil.AssertNoTransitiveDependency(t, ".", testutil.InternalImportForbidden, "domain contracts must stay independent of implementations")
}
