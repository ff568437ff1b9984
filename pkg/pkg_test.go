package pkg

import (
	"regexp"
	"testing"
)

func TestName(t *testing.T) {
	if Name != "rpt" {
		t.Errorf("expected Name to be %q, got %q", "rpt", Name)
	}
}

func TestVersion(t *testing.T) {
	semver := regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?$`)
	if !semver.MatchString(Version()) {
		t.Errorf("expected semantic version, got %q", Version())
	}
}

func TestAuthor(t *testing.T) {
	if len(Author) == 0 {
		t.Fatal("expected at least one author")
	}

	for _, a := range Author {
		if a.Name == "" || a.Email == "" {
			t.Errorf("expected complete author info, got %+v", a)
		}
	}
}
