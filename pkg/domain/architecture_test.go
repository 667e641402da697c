package domain_test

import (
	"testing"

	"inventoryclient/testutil"
)

func TestDomainDoesNotImportInternalPackages(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden,
		"domain must stay free of store and transport dependencies")
}

func TestDomainDoesNotImportTransport(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.TransportImportForbidden,
		"records never issue HTTP requests themselves")
}
