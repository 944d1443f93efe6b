package auth

import (
	"strings"
	"testing"
)

func TestDemoIdentityFor(t *testing.T) {
	known := DemoIdentityFor(" Admin@Example.com ")
	if known.ID != "demo-user-2" || known.Name != "Demo Admin" || known.OrganizationID != DemoOrganizationID {
		t.Fatalf("unexpected table identity %+v", known)
	}

	a := DemoIdentityFor("visitor@acme.io")
	b := DemoIdentityFor("visitor@acme.io")
	if !IsDemoSubject(a.ID) || !strings.HasPrefix(a.ID, "demo-user-") {
		t.Fatalf("synthetic id must be a demo subject, got %q", a.ID)
	}
	if a.ID == b.ID {
		t.Fatalf("synthetic ids must be fresh per login")
	}
	if a.Name != "visitor" || a.Email != "visitor@acme.io" {
		t.Fatalf("unexpected synthetic identity %+v", a)
	}
}

func TestDemoOrganizationIsSynthetic(t *testing.T) {
	org := DemoOrganization()
	if org.ID != "demo-admin-org" || org.Slug != "demo-org" {
		t.Fatalf("unexpected demo organization %+v", org)
	}
	if !IsDemoSubject(org.ID) {
		t.Fatalf("demo organization id must carry the demo prefix")
	}
}
