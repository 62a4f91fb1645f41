package parser

import (
	"errors"
	"testing"

	"github.com/areaewhy/JoplinView/internal/apperr"
)

func TestFrontMatterParse_Basic(t *testing.T) {
	raw := []byte("---\ntitle: Hello\ntags: [work, urgent]\n---\nBody text.\n")
	d := &FrontMatterDialect{}
	r, err := d.Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Hello" {
		t.Errorf("title = %q, want Hello", r.Title)
	}
	if len(r.Tags) != 2 || r.Tags[0] != "work" || r.Tags[1] != "urgent" {
		t.Errorf("tags = %v, want [work urgent]", r.Tags)
	}
	if r.Body != "Body text." {
		t.Errorf("body = %q", r.Body)
	}
	if r.HasKind || r.HasParent {
		t.Error("front matter carries no type or parent field")
	}
}

func TestFrontMatterParse_NoBlock(t *testing.T) {
	d := &FrontMatterDialect{}
	r, err := d.Parse([]byte("# Plain note\ntext\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Body != "# Plain note\ntext\n" {
		t.Errorf("body = %q", r.Body)
	}
	if r.Title != "" {
		t.Errorf("title = %q, want empty", r.Title)
	}
}

func TestFrontMatterParse_MalformedYAML(t *testing.T) {
	d := &FrontMatterDialect{}
	_, err := d.Parse([]byte("---\n: bad: yaml: {{{\n---\nbody\n"))
	if !errors.Is(err, apperr.ErrMalformedMetadata) {
		t.Fatalf("err = %v, want ErrMalformedMetadata", err)
	}
}

func TestFrontMatterParse_TagsNotASequence(t *testing.T) {
	d := &FrontMatterDialect{}
	r, err := d.Parse([]byte("---\ntitle: T\ntags: solo\n---\nbody\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Tags) != 0 {
		t.Errorf("tags = %v, want empty for scalar tags", r.Tags)
	}
}

func TestFrontMatterParse_Completed(t *testing.T) {
	d := &FrontMatterDialect{}

	r, err := d.Parse([]byte("---\n\"completed?\": \"yes\"\n---\nbody\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Completed == nil || !*r.Completed {
		t.Error("completed? yes should set completed")
	}

	r, err = d.Parse([]byte("---\ncompleted: true\n---\nbody\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Completed == nil || !*r.Completed {
		t.Error("completed: true should set completed")
	}

	r, err = d.Parse([]byte("---\ncompleted: false\n---\nbody\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Completed != nil {
		t.Error("completed: false should stay unset")
	}
}

func TestFrontMatterParse_DueDate(t *testing.T) {
	d := &FrontMatterDialect{}
	r, err := d.Parse([]byte("---\ndue: \"2024-01-01\"\n---\nbody\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Due == nil {
		t.Fatal("plain date should parse")
	}
	if y, m, day := r.Due.Date(); y != 2024 || m != 1 || day != 1 {
		t.Errorf("due = %v, want 2024-01-01", r.Due)
	}
}

func TestFrontMatterParse_NumericGeoFields(t *testing.T) {
	d := &FrontMatterDialect{}
	r, err := d.Parse([]byte("---\nlatitude: 48.8566\nlongitude: 2.3522\n---\nbody\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Latitude != "48.8566" {
		t.Errorf("latitude = %q, want stringified scalar", r.Latitude)
	}
}

func TestFor_DialectSelection(t *testing.T) {
	if d, err := For(DialectJoplin); err != nil || d.Name() != DialectJoplin {
		t.Errorf("For(joplin) = %v, %v", d, err)
	}
	if d, err := For(DialectFrontMatter); err != nil || d.Name() != DialectFrontMatter {
		t.Errorf("For(frontmatter) = %v, %v", d, err)
	}
	if _, err := For("xml"); err == nil {
		t.Error("unknown dialect should fail")
	}
}
